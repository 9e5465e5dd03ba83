// Package sheet prepares sprite imagery for the oracle: cropping regions out
// of an atlas, upscaling pixel art so detail survives inspection, composing
// batch contact sheets, and rendering sprites as plain-text pixel grids for
// text-only transports.
package sheet

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"
)

// ErrNoImages reports an attempt to compose an empty contact sheet.
var ErrNoImages = errors.New("no images to compose")

// LoadAtlas decodes the atlas PNG at path.
func LoadAtlas(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open atlas %s: %w", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode atlas %s: %w", path, err)
	}
	return img, nil
}

// Region is the tile-grid placement of one sprite inside an atlas.
type Region struct {
	Row    int
	Col    int
	TilesX int
	TilesY int
}

// SpriteImage resolves the pixels for one sprite. A loose file under baseDir
// matching the sprite key wins; otherwise the region is cropped out of the
// atlas image. Returns nil when neither source is available.
func SpriteImage(key string, region Region, atlas image.Image, baseDir string, tileW, tileH int) *image.RGBA {
	if baseDir != "" {
		loose := filepath.Join(baseDir, filepath.FromSlash(key))
		if img, err := loadPNG(loose); err == nil {
			return toRGBA(img)
		}
	}
	if atlas == nil {
		return nil
	}
	tilesX, tilesY := region.TilesX, region.TilesY
	if tilesX < 1 {
		tilesX = 1
	}
	if tilesY < 1 {
		tilesY = 1
	}
	bounds := atlas.Bounds()
	rect := image.Rect(
		bounds.Min.X+region.Col*tileW,
		bounds.Min.Y+region.Row*tileH,
		bounds.Min.X+(region.Col+tilesX)*tileW,
		bounds.Min.Y+(region.Row+tilesY)*tileH,
	)
	rect = rect.Intersect(bounds)
	if rect.Empty() {
		return nil
	}
	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(out, out.Bounds(), atlas, rect.Min, draw.Src)
	return out
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return png.Decode(f)
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

// Upscale enlarges pixel art by an integer factor with nearest-neighbor
// sampling so edges stay crisp.
func Upscale(img *image.RGBA, scale int) *image.RGBA {
	if scale <= 1 {
		return img
	}
	out := image.NewRGBA(image.Rect(0, 0, img.Bounds().Dx()*scale, img.Bounds().Dy()*scale))
	xdraw.NearestNeighbor.Scale(out, out.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return out
}

// ComposeGrid lays the images out left to right, top to bottom, on a dark
// background with a fixed label strip under each cell. Cell dimensions come
// from the largest image so mixed sprite sizes stay aligned.
func ComposeGrid(images []*image.RGBA, cols int) (*image.RGBA, error) {
	if len(images) == 0 {
		return nil, ErrNoImages
	}
	if cols < 1 {
		cols = 1
	}
	const labelHeight = 20
	rows := (len(images) + cols - 1) / cols
	cellW, cellH := 0, 0
	for _, img := range images {
		if w := img.Bounds().Dx(); w > cellW {
			cellW = w
		}
		if h := img.Bounds().Dy(); h > cellH {
			cellH = h
		}
	}
	cellH += labelHeight

	grid := image.NewRGBA(image.Rect(0, 0, cols*cellW, rows*cellH))
	draw.Draw(grid, grid.Bounds(), image.NewUniform(color.RGBA{40, 40, 40, 255}), image.Point{}, draw.Src)

	for i, img := range images {
		r, c := i/cols, i%cols
		x := c*cellW + (cellW-img.Bounds().Dx())/2
		y := r * cellH
		target := image.Rect(x, y, x+img.Bounds().Dx(), y+img.Bounds().Dy())
		draw.Draw(grid, target, img, img.Bounds().Min, draw.Over)
	}
	return grid, nil
}

// SavePNG encodes img to path.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
