package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"atlastag/internal/catalog"
	"atlastag/internal/fileutil"
	"atlastag/internal/logging"
	"atlastag/internal/sheet"
)

// TilePos is one tile-grid coordinate in the packed atlas.
type TilePos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// UnindexedReport lists non-empty atlas tiles that no index covers —
// candidates for future indexing passes.
type UnindexedReport struct {
	Atlas                string    `json:"atlas"`
	TileSize             [2]int    `json:"tile_size"`
	TotalAtlasTiles      int       `json:"total_atlas_tiles"`
	IndexedTilePositions int       `json:"indexed_tile_positions"`
	SupplementalSprites  int       `json:"supplemental_sprite_names"`
	UnindexedNonEmpty    int       `json:"unindexed_nonempty_tiles"`
	Tiles                []TilePos `json:"tiles"`
}

// Unindexed scans the atlas image against the index (plus the supplemental
// index when present) and writes unindexed_tiles.json next to the atlas.
// Returns the report and the path it was written to.
func (p *Pipeline) Unindexed(supplementalIndex string) (*UnindexedReport, string, error) {
	baseDir := p.profile.BaseDir(p.cfg.Paths.AssetsDir)
	atlasPath := p.profile.AtlasPath(p.cfg.Paths.AssetsDir)

	atlas, err := sheet.LoadAtlas(atlasPath)
	if err != nil {
		return nil, "", err
	}
	cat, err := catalog.Load(p.profile.IndexPath(p.cfg.Paths.AssetsDir))
	if err != nil {
		return nil, "", err
	}

	tw, th := cat.TileSize[0], cat.TileSize[1]
	totalCols := atlas.Bounds().Dx() / tw
	totalRows := atlas.Bounds().Dy() / th

	indexed := map[TilePos]struct{}{}
	for _, key := range cat.Keys() {
		sprite := cat.Get(key)
		tilesX, tilesY := sprite.TilesX, sprite.TilesY
		if tilesX < 1 {
			tilesX = 1
		}
		if tilesY < 1 {
			tilesY = 1
		}
		for dr := 0; dr < tilesY; dr++ {
			for dc := 0; dc < tilesX; dc++ {
				indexed[TilePos{Row: sprite.Row + dr, Col: sprite.Col + dc}] = struct{}{}
			}
		}
	}

	supplementalCount := 0
	if supplementalIndex != "" {
		supp, err := catalog.Load(filepath.Join(baseDir, supplementalIndex))
		if err == nil {
			supplementalCount = supp.Len()
		} else if !errors.Is(err, catalog.ErrNotFound) {
			return nil, "", err
		}
	}

	var tiles []TilePos
	for row := 0; row < totalRows; row++ {
		for col := 0; col < totalCols; col++ {
			pos := TilePos{Row: row, Col: col}
			if _, ok := indexed[pos]; ok {
				continue
			}
			if tileHasPixels(atlas, col*tw, row*th, tw, th) {
				tiles = append(tiles, pos)
			}
		}
	}
	if tiles == nil {
		tiles = []TilePos{}
	}

	report := &UnindexedReport{
		Atlas:                p.profile.AtlasFile,
		TileSize:             cat.TileSize,
		TotalAtlasTiles:      totalRows * totalCols,
		IndexedTilePositions: len(indexed),
		SupplementalSprites:  supplementalCount,
		UnindexedNonEmpty:    len(tiles),
		Tiles:                tiles,
	}

	outPath := filepath.Join(baseDir, "unindexed_tiles.json")
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("encode unindexed report: %w", err)
	}
	if err := fileutil.WriteFileAtomic(outPath, append(data, '\n'), 0o644); err != nil {
		return nil, "", err
	}
	p.logger.Info("unindexed scan complete",
		logging.Int("unindexed", len(tiles)),
		logging.String("report", outPath))
	return report, outPath, nil
}

// tileHasPixels reports whether any pixel in the tile is non-transparent.
func tileHasPixels(atlas image.Image, x0, y0, w, h int) bool {
	bounds := atlas.Bounds()
	for y := y0; y < y0+h && y < bounds.Max.Y; y++ {
		for x := x0; x < x0+w && x < bounds.Max.X; x++ {
			if _, _, _, a := atlas.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA(); a > 0 {
				return true
			}
		}
	}
	return false
}
