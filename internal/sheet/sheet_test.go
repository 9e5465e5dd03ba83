package sheet_test

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"atlastag/internal/sheet"
)

func solidTile(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestSpriteImageCropsRegionFromAtlas(t *testing.T) {
	// 2x2 tile atlas of 4px tiles, each tile a distinct color.
	atlas := image.NewRGBA(image.Rect(0, 0, 8, 8))
	colors := []color.RGBA{
		{255, 0, 0, 255}, {0, 255, 0, 255},
		{0, 0, 255, 255}, {255, 255, 0, 255},
	}
	for ty := 0; ty < 2; ty++ {
		for tx := 0; tx < 2; tx++ {
			c := colors[ty*2+tx]
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					atlas.SetRGBA(tx*4+x, ty*4+y, c)
				}
			}
		}
	}

	got := sheet.SpriteImage("mon/thing.png", sheet.Region{Row: 1, Col: 0, TilesX: 1, TilesY: 1}, atlas, "", 4, 4)
	if got == nil {
		t.Fatal("expected crop, got nil")
	}
	if got.Bounds().Dx() != 4 || got.Bounds().Dy() != 4 {
		t.Fatalf("unexpected crop size: %v", got.Bounds())
	}
	if c := got.RGBAAt(1, 1); c != (color.RGBA{0, 0, 255, 255}) {
		t.Fatalf("expected blue tile pixel, got %v", c)
	}

	wide := sheet.SpriteImage("mon/big.png", sheet.Region{Row: 0, Col: 0, TilesX: 2, TilesY: 1}, atlas, "", 4, 4)
	if wide.Bounds().Dx() != 8 || wide.Bounds().Dy() != 4 {
		t.Fatalf("unexpected multi-tile crop size: %v", wide.Bounds())
	}
}

func TestUpscaleKeepsHardEdges(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{255, 0, 0, 255})
	img.SetRGBA(1, 0, color.RGBA{0, 0, 255, 255})

	scaled := sheet.Upscale(img, 4)
	if scaled.Bounds().Dx() != 8 || scaled.Bounds().Dy() != 4 {
		t.Fatalf("unexpected scaled size: %v", scaled.Bounds())
	}
	if c := scaled.RGBAAt(3, 2); c != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("expected pure red at left half, got %v", c)
	}
	if c := scaled.RGBAAt(4, 2); c != (color.RGBA{0, 0, 255, 255}) {
		t.Fatalf("expected pure blue at right half, got %v", c)
	}
}

func TestComposeGridDimensions(t *testing.T) {
	images := []*image.RGBA{
		solidTile(16, 16, color.RGBA{255, 0, 0, 255}),
		solidTile(16, 16, color.RGBA{0, 255, 0, 255}),
		solidTile(16, 16, color.RGBA{0, 0, 255, 255}),
		solidTile(16, 16, color.RGBA{255, 255, 0, 255}),
		solidTile(16, 16, color.RGBA{255, 0, 255, 255}),
	}
	grid, err := sheet.ComposeGrid(images, 4)
	if err != nil {
		t.Fatalf("ComposeGrid returned error: %v", err)
	}
	// 5 images at 4 columns: 2 rows; cell height is image height plus the
	// 20px label strip.
	if grid.Bounds().Dx() != 4*16 || grid.Bounds().Dy() != 2*(16+20) {
		t.Fatalf("unexpected grid size: %v", grid.Bounds())
	}

	if _, err := sheet.ComposeGrid(nil, 4); err == nil {
		t.Fatal("expected error composing an empty grid")
	}
}

func TestAliasSequence(t *testing.T) {
	aliases := sheet.AliasSequence()
	if len(aliases) != 712 {
		t.Fatalf("expected 712 aliases, got %d", len(aliases))
	}
	if aliases[0] != "A" || aliases[25] != "Z" {
		t.Fatalf("unexpected letter aliases: %q %q", aliases[0], aliases[25])
	}
	if aliases[26] != "0" || aliases[35] != "9" {
		t.Fatalf("unexpected digit aliases: %q %q", aliases[26], aliases[35])
	}
	if aliases[36] != "AA" || aliases[len(aliases)-1] != "ZZ" {
		t.Fatalf("unexpected pair aliases: %q %q", aliases[36], aliases[len(aliases)-1])
	}
}

func TestBatchTextSharesPaletteAcrossSprites(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	a := solidTile(2, 1, red)
	b := image.NewRGBA(image.Rect(0, 0, 2, 1))
	b.SetRGBA(0, 0, red)
	b.SetRGBA(1, 0, color.RGBA{0, 0, 0, 0}) // transparent

	text := sheet.BatchText([]string{"x/a.png", "x/b.png"}, []*image.RGBA{a, b}, sheet.DefaultAlphaThreshold)

	if !strings.HasPrefix(text, "palette.txt:\nA=#FF0000\n") {
		t.Fatalf("unexpected palette header:\n%s", text)
	}
	if strings.Count(text, "=#FF0000") != 1 {
		t.Fatal("expected shared palette entry for red across both sprites")
	}
	if !strings.Contains(text, "--- 1. x/a.png ---\nA. A.") {
		t.Fatalf("unexpected first grid block:\n%s", text)
	}
	if !strings.Contains(text, "--- 2. x/b.png ---\nA. ..") {
		t.Fatalf("unexpected second grid block:\n%s", text)
	}
}

func TestNumberedList(t *testing.T) {
	got := sheet.NumberedList([]string{"a.png", "b.png"})
	if got != "1. a.png\n2. b.png" {
		t.Fatalf("unexpected list: %q", got)
	}
}
