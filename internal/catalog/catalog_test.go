package catalog_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"atlastag/internal/catalog"
)

const sampleIndex = `{
  "tile_size": [32, 32],
  "columns": 64,
  "generator": "tagger-2.1",
  "sprites": {
    "dngn/wall/brick_brown_0.png": {
      "row": 0,
      "col": 0,
      "tiles_x": 1,
      "tiles_y": 1,
      "description": "A rough brown brick wall segment.",
      "tags": ["wall", "brick"],
      "tile_type": "wall",
      "artist": "anon"
    },
    "dngn/wall/brick_brown_1.png": {
      "row": 0,
      "col": 1,
      "tiles_x": 1,
      "tiles_y": 1,
      "description": "",
      "tags": [],
      "tile_type": ""
    },
    "mon/demons/pit_fiend.png": {
      "row": 3,
      "col": 7,
      "tiles_x": 2,
      "tiles_y": 2,
      "description": "",
      "tags": [],
      "tile_type": ""
    }
  }
}
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "atlas.index.json")
	if err := os.WriteFile(path, []byte(sampleIndex), 0o644); err != nil {
		t.Fatalf("write sample index: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsNotFound(t *testing.T) {
	_, err := catalog.Load(filepath.Join(t.TempDir(), "absent.json"))
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadMalformedFileReturnsDecodeError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write broken index: %v", err)
	}
	_, err := catalog.Load(path)
	if !errors.Is(err, catalog.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestLoadPreservesOrderAndUnknownFields(t *testing.T) {
	cat, err := catalog.Load(writeSample(t))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	wantOrder := []string{
		"dngn/wall/brick_brown_0.png",
		"dngn/wall/brick_brown_1.png",
		"mon/demons/pit_fiend.png",
	}
	keys := cat.Keys()
	if len(keys) != len(wantOrder) {
		t.Fatalf("expected %d keys, got %d", len(wantOrder), len(keys))
	}
	for i, key := range wantOrder {
		if keys[i] != key {
			t.Fatalf("key %d: expected %q, got %q", i, key, keys[i])
		}
	}
	if _, ok := cat.Extra["generator"]; !ok {
		t.Fatal("expected unknown top-level field to survive decode")
	}
	wall := cat.Get("dngn/wall/brick_brown_0.png")
	if _, ok := wall.Extra["artist"]; !ok {
		t.Fatal("expected unknown sprite field to survive decode")
	}
	fiend := cat.Get("mon/demons/pit_fiend.png")
	if fiend.TilesX != 2 || fiend.TilesY != 2 {
		t.Fatalf("unexpected multi-tile geometry: %dx%d", fiend.TilesX, fiend.TilesY)
	}
}

func TestSaveLoadRoundTripIsStable(t *testing.T) {
	path := writeSample(t)
	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	out := filepath.Join(filepath.Dir(path), "out.json")
	if err := catalog.Save(cat, out); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	first, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read saved catalog: %v", err)
	}

	again, err := catalog.Load(out)
	if err != nil {
		t.Fatalf("reload returned error: %v", err)
	}
	second, err := catalog.Encode(again)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("save/load round trip changed the encoded catalog")
	}
	if again.Keys()[2] != "mon/demons/pit_fiend.png" {
		t.Fatal("sprite order changed across round trip")
	}
}

func TestEnrichedPredicate(t *testing.T) {
	cat, err := catalog.Load(writeSample(t))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := cat.EnrichedKeys(); len(got) != 1 || got[0] != "dngn/wall/brick_brown_0.png" {
		t.Fatalf("unexpected enriched keys: %v", got)
	}
	if got := cat.UnenrichedKeys(); len(got) != 2 {
		t.Fatalf("expected 2 unenriched keys, got %v", got)
	}

	partial := &catalog.Sprite{Description: "desc", Tags: []string{"wall"}}
	if partial.Enriched() {
		t.Fatal("sprite without tile_type must not count as enriched")
	}
	partial.TileType = "wall"
	if !partial.Enriched() {
		t.Fatal("sprite with all three fields must count as enriched")
	}
}

func TestBaseNameStripsVariantCounters(t *testing.T) {
	cases := map[string]string{
		"dngn/wall/brick_brown_0.png": "brick_brown",
		"dngn/wall/brick_brown_12.png": "brick_brown",
		"mon/demons/pit_fiend.png":     "pit_fiend",
		"item/potion_1_2.png":          "potion_1",
		"floor.png":                    "floor",
	}
	for key, want := range cases {
		if got := catalog.BaseName(key); got != want {
			t.Fatalf("BaseName(%q) = %q, want %q", key, got, want)
		}
	}
}
