package merge_test

import (
	"testing"

	"atlastag/internal/catalog"
	"atlastag/internal/merge"
	"atlastag/internal/oracle"
)

func seedCatalog(keys ...string) *catalog.Catalog {
	cat := catalog.New(32, 32, 64)
	for i, key := range keys {
		cat.Put(key, &catalog.Sprite{Row: 0, Col: i, TilesX: 1, TilesY: 1})
	}
	return cat
}

func TestApplyEnrichmentsShortArrayAppliesPrefixOnly(t *testing.T) {
	keys := []string{"a.png", "b.png", "c.png", "d.png", "e.png"}
	cat := seedCatalog(keys...)
	results := []oracle.Enrichment{
		{Description: "one", Tags: []string{"stone", "rough"}, TileType: "wall"},
		{Description: "two", Tags: []string{"wood", "exterior"}, TileType: "door"},
		{Description: "three", Tags: []string{"flagstone"}, TileType: "floor"},
	}

	applied := merge.ApplyEnrichments(cat, keys, results)
	if applied != 3 {
		t.Fatalf("expected 3 applied, got %d", applied)
	}
	if got := cat.EnrichedKeys(); len(got) != 3 {
		t.Fatalf("expected exactly 3 enriched sprites, got %v", got)
	}
	if got := cat.UnenrichedKeys(); len(got) != 2 || got[0] != "d.png" {
		t.Fatalf("expected d.png and e.png to remain, got %v", got)
	}
}

func TestApplyEnrichmentsDiscardsExcessResults(t *testing.T) {
	keys := []string{"a.png"}
	cat := seedCatalog(keys...)
	results := []oracle.Enrichment{
		{Description: "one", Tags: []string{"wall"}, TileType: "wall"},
		{Description: "extra", Tags: []string{"door"}, TileType: "door"},
	}
	if applied := merge.ApplyEnrichments(cat, keys, results); applied != 1 {
		t.Fatalf("expected 1 applied, got %d", applied)
	}
	if cat.Get("a.png").Description != "one" {
		t.Fatalf("unexpected description: %q", cat.Get("a.png").Description)
	}
}

func TestApplyEnrichmentsNeverClearsWithEmptyValues(t *testing.T) {
	keys := []string{"a.png"}
	cat := seedCatalog(keys...)
	sprite := cat.Get("a.png")
	sprite.Description = "existing"
	sprite.Tags = []string{"stone"}
	sprite.TileType = "wall"

	merge.ApplyEnrichments(cat, keys, []oracle.Enrichment{{}})
	if sprite.Description != "existing" || len(sprite.Tags) != 1 || sprite.TileType != "wall" {
		t.Fatalf("empty answer must not clear fields: %+v", sprite)
	}
}

func TestApplyEnrichmentsStripsTileTypeFromTags(t *testing.T) {
	keys := []string{"dngn/door.png"}
	cat := seedCatalog(keys...)

	merge.ApplyEnrichments(cat, keys, []oracle.Enrichment{
		{Description: "A wooden door.", Tags: []string{"door", "wood", "entrance"}, TileType: "door"},
	})
	sprite := cat.Get("dngn/door.png")
	if sprite.HasTag("door") {
		t.Fatalf("tile type must be stripped from tags: %v", sprite.Tags)
	}
	if !sprite.HasTag("wood") || !sprite.HasTag("entrance") {
		t.Fatalf("other tags must survive: %v", sprite.Tags)
	}
}

func TestApplyFixesUsesOneBasedIndexes(t *testing.T) {
	keys := []string{"a.png", "b.png"}
	cat := seedCatalog(keys...)
	b := cat.Get("b.png")
	b.Description = "old"
	b.Tags = []string{"wall"}
	b.TileType = "wall"

	changes := merge.ApplyFixes(cat, keys, []oracle.Fix{
		{Index: 2, Description: "new", Tags: []string{"door", "wood"}},
		{Index: 99, Description: "out of range"},
		{Index: 0, Description: "invalid"},
	})
	if len(changes) != 1 || changes[0].Key != "b.png" {
		t.Fatalf("unexpected changes: %+v", changes)
	}
	if !changes[0].Description || !changes[0].Tags || changes[0].TileType {
		t.Fatalf("unexpected change flags: %+v", changes[0])
	}
	if b.Description != "new" || b.TileType != "wall" {
		t.Fatalf("unexpected sprite state: %+v", b)
	}
}

func TestApplyFixesNoChangeIsNotReported(t *testing.T) {
	keys := []string{"a.png"}
	cat := seedCatalog(keys...)
	a := cat.Get("a.png")
	a.Description = "same"
	a.Tags = []string{"stone"}
	a.TileType = "wall"

	changes := merge.ApplyFixes(cat, keys, []oracle.Fix{
		{Index: 1, Description: "same", Tags: []string{"stone"}},
	})
	if len(changes) != 0 {
		t.Fatalf("identical fix must not be reported: %+v", changes)
	}
}
