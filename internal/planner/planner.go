// Package planner turns the set of sprites still missing enrichment into a
// deterministic sequence of batches. Sprites are grouped by directory prefix
// so each batch shows the oracle thematically related art, then each group is
// sliced to the configured batch size. Two runs over the same catalog always
// produce the same plan.
package planner

import (
	"sort"
	"strings"

	"atlastag/internal/catalog"
)

// Batch is one unit of oracle work: an ordered set of sprite keys that share
// a directory prefix.
type Batch struct {
	Prefix string
	Keys   []string
}

// Plan is the full ordered batch sequence for a run.
type Plan struct {
	Batches []Batch
}

// TotalKeys returns the number of sprite keys across all batches.
func (p Plan) TotalKeys() int {
	n := 0
	for _, b := range p.Batches {
		n += len(b.Keys)
	}
	return n
}

// GroupPrefix derives the grouping prefix for a sprite key: the first two
// path segments when the key has three or more, the first segment when it
// has two, and "_root" for bare filenames.
func GroupPrefix(key string) string {
	parts := strings.Split(catalog.SpellKey(key), "/")
	switch {
	case len(parts) >= 3:
		return parts[0] + "/" + parts[1]
	case len(parts) == 2:
		return parts[0]
	default:
		return "_root"
	}
}

// BuildPlan groups the catalog's unenriched sprites by prefix and slices
// each group into batches of at most batchSize keys. Groups are emitted in
// lexicographic prefix order and keys within a group in lexicographic order,
// so an unchanged catalog always yields the same batch numbering. The last
// batch of a group may be short; groups are never merged to balance sizes.
func BuildPlan(cat *catalog.Catalog, batchSize int) Plan {
	return planKeys(cat.UnenrichedKeys(), batchSize)
}

// BuildVerifyPlan covers already-tagged sprites for re-inspection. Verify
// batches are flat lexicographic slices rather than prefix groups: review
// works fine across themes, and larger uniform batches mean fewer oracle
// calls.
func BuildVerifyPlan(cat *catalog.Catalog, batchSize int) Plan {
	if batchSize < 1 {
		batchSize = 1
	}
	keys := cat.VerifiableKeys()
	sort.Strings(keys)

	var plan Plan
	for start := 0; start < len(keys); start += batchSize {
		end := start + batchSize
		if end > len(keys) {
			end = len(keys)
		}
		batch := Batch{Keys: make([]string, end-start)}
		copy(batch.Keys, keys[start:end])
		plan.Batches = append(plan.Batches, batch)
	}
	return plan
}

func planKeys(keys []string, batchSize int) Plan {
	if batchSize < 1 {
		batchSize = 1
	}
	groups := map[string][]string{}
	for _, key := range keys {
		prefix := GroupPrefix(key)
		groups[prefix] = append(groups[prefix], key)
	}
	prefixes := make([]string, 0, len(groups))
	for prefix := range groups {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	var plan Plan
	for _, prefix := range prefixes {
		group := groups[prefix]
		sort.Strings(group)
		for start := 0; start < len(group); start += batchSize {
			end := start + batchSize
			if end > len(group) {
				end = len(group)
			}
			batch := Batch{Prefix: prefix, Keys: make([]string, end-start)}
			copy(batch.Keys, group[start:end])
			plan.Batches = append(plan.Batches, batch)
		}
	}
	return plan
}

// Limit truncates the plan to at most n batches. Zero or negative n leaves
// the plan untouched.
func (p Plan) Limit(n int) Plan {
	if n <= 0 || n >= len(p.Batches) {
		return p
	}
	return Plan{Batches: p.Batches[:n]}
}
