// Package merge applies oracle answers back onto catalog sprites. Mapping is
// strictly positional: the i-th answer belongs to the i-th key of the batch.
// Answers never clear existing fields, and a tile type that sneaks into the
// tag list is removed after assignment. Each application touches exactly one
// sprite, so batches can be applied in any order.
package merge

import (
	"atlastag/internal/catalog"
	"atlastag/internal/oracle"
)

// ApplyEnrichments writes results onto the sprites named by keys, in order.
// A result array shorter than the batch applies only as a prefix; the
// remaining sprites stay unenriched and get picked up by the next run.
// Excess results are discarded. Returns the number of sprites updated.
func ApplyEnrichments(cat *catalog.Catalog, keys []string, results []oracle.Enrichment) int {
	applied := 0
	for i, key := range keys {
		if i >= len(results) {
			break
		}
		sprite := cat.Get(key)
		if sprite == nil {
			continue
		}
		applyFields(sprite, results[i].Description, results[i].Tags, results[i].TileType)
		applied++
	}
	return applied
}

// FixChange records which fields a verify fix actually altered on a sprite.
type FixChange struct {
	Key         string
	Description bool
	Tags        bool
	TileType    bool

	OldDescription string
	OldTags        []string
	OldTileType    string
}

// Changed reports whether any field differs from its previous value.
func (c FixChange) Changed() bool {
	return c.Description || c.Tags || c.TileType
}

// ApplyFixes resolves 1-indexed verify fixes against keys and applies them.
// Out-of-range indexes are ignored. Only fixes that change at least one
// field are reported.
func ApplyFixes(cat *catalog.Catalog, keys []string, fixes []oracle.Fix) []FixChange {
	var changes []FixChange
	for _, fix := range fixes {
		idx := fix.Index - 1
		if idx < 0 || idx >= len(keys) {
			continue
		}
		key := keys[idx]
		sprite := cat.Get(key)
		if sprite == nil {
			continue
		}
		change := FixChange{
			Key:            key,
			OldDescription: sprite.Description,
			OldTags:        append([]string(nil), sprite.Tags...),
			OldTileType:    sprite.TileType,
		}
		applyFields(sprite, fix.Description, fix.Tags, fix.TileType)
		change.Description = sprite.Description != change.OldDescription
		change.Tags = !equalTags(sprite.Tags, change.OldTags)
		change.TileType = sprite.TileType != change.OldTileType
		if change.Changed() {
			changes = append(changes, change)
		}
	}
	return changes
}

// applyFields overwrites only where the answer supplies a value, then strips
// the tile type out of the tag list.
func applyFields(sprite *catalog.Sprite, description string, tags []string, tileType string) {
	if description != "" {
		sprite.Description = description
	}
	if len(tags) > 0 {
		sprite.Tags = tags
	}
	if tileType != "" {
		sprite.TileType = tileType
	}
	if sprite.TileType != "" {
		sprite.RemoveTag(sprite.TileType)
	}
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
