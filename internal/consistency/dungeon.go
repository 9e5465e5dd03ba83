package consistency

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"atlastag/internal/catalog"
)

// Dungeon-crawl specific rules, applied only to profiles with DungeonChecks.

var (
	creatureStripTags = []string{"armour", "equipment", "weapon", "player"}
	altarStripTags    = []string{"weapon", "sword"}

	holyGods = map[string]struct{}{
		"zin": {}, "shining_one": {}, "elyvilon": {},
	}
	unholyGods = map[string]struct{}{
		"beogh": {}, "jiyva": {}, "kikubaaqudgha": {},
		"lugonu": {}, "makhleb": {}, "yredelemnul": {},
	}

	altarPrefixRe  = regexp.MustCompile(`^altar_?`)
	trailingNumRe  = regexp.MustCompile(`_\d+$`)
	altarKeyPrefix = "dungeon/altars"
)

// dirExpectedTags lists tags implied by a key's directory prefix.
var dirExpectedTags = map[string][]string{
	"dungeon/doors":   {"door"},
	"dungeon/altars":  {"altar"},
	"dungeon/walls":   {"wall"},
	"dungeon/floor":   {"floor"},
	"monster/undead":  {"undead"},
	"monster/demons":  {"demon"},
	"monster/dragons": {"dragon"},
	"monster/insects": {"insect"},
	"item/weapon":     {"weapon"},
	"item/armour":     {"armour"},
	"item/potion":     {"potion"},
	"item/scroll":     {"scroll"},
	"item/wand":       {"wand"},
	"item/ring":       {"ring"},
	"item/amulet":     {"amulet"},
	"item/book":       {"book"},
	"item/food":       {"food"},
	"item/gold":       {"gold"},
	"player/":         {"player"},
}

type creatureEquipRule struct{}

func (creatureEquipRule) Name() string { return CodeCreatureEquipTag }

func (creatureEquipRule) Apply(run *Run) {
	stripCategoryTags(run, "creature", creatureStripTags, CodeCreatureEquipTag, "creature")
}

type altarEquipRule struct{}

func (altarEquipRule) Name() string { return CodeAltarEquipTag }

func (altarEquipRule) Apply(run *Run) {
	stripCategoryTags(run, "altar", altarStripTags, CodeAltarEquipTag, "altar")
}

// stripCategoryTags removes tags that contradict a sprite's tile type, e.g.
// equipment tags on the creature wearing it.
func stripCategoryTags(run *Run, tileType string, strip []string, code, noun string) {
	stripSet := map[string]struct{}{}
	for _, tag := range strip {
		stripSet[tag] = struct{}{}
	}
	for _, key := range run.EnrichedKeys() {
		sprite := run.Catalog.Get(key)
		if sprite.TileType != tileType {
			continue
		}
		var removed []string
		for _, tag := range sprite.Tags {
			if _, ok := stripSet[tag]; ok {
				removed = append(removed, tag)
			}
		}
		if len(removed) == 0 {
			continue
		}
		if run.Fix {
			kept := sprite.Tags[:0]
			for _, tag := range sprite.Tags {
				if _, ok := stripSet[tag]; !ok {
					kept = append(kept, tag)
				}
			}
			sprite.Tags = kept
			run.Fixed(key, fmt.Sprintf("removed %v from %s", removed, noun))
		} else {
			run.Report(code, key, fmt.Sprintf("%s has equipment tags: %v", noun, removed))
		}
	}
}

type altarAlignRule struct{}

func (altarAlignRule) Name() string { return CodeAltarAlign }

// Every altar carries "sacred"; "holy" and "unholy" follow the god named in
// the filename.
func (altarAlignRule) Apply(run *Run) {
	for _, key := range run.EnrichedKeys() {
		norm := catalog.SpellKey(key)
		if !strings.HasPrefix(norm, altarKeyPrefix) {
			continue
		}
		sprite := run.Catalog.Get(key)
		godName, godBase := altarGod(norm)
		shouldHoly := inGodSet(holyGods, godBase, godName)
		shouldUnholy := inGodSet(unholyGods, godBase, godName)

		type tagFix struct {
			add bool
			tag string
		}
		var fixes []tagFix
		if !sprite.HasTag("sacred") {
			fixes = append(fixes, tagFix{true, "sacred"})
		}
		if shouldHoly && !sprite.HasTag("holy") {
			fixes = append(fixes, tagFix{true, "holy"})
		}
		if !shouldHoly && sprite.HasTag("holy") {
			fixes = append(fixes, tagFix{false, "holy"})
		}
		if shouldUnholy && !sprite.HasTag("unholy") {
			fixes = append(fixes, tagFix{true, "unholy"})
		}
		if !shouldUnholy && sprite.HasTag("unholy") {
			fixes = append(fixes, tagFix{false, "unholy"})
		}
		if len(fixes) == 0 {
			continue
		}

		parts := make([]string, len(fixes))
		for i, f := range fixes {
			if f.add {
				parts[i] = "+" + f.tag
			} else {
				parts[i] = "-" + f.tag
			}
		}
		detail := strings.Join(parts, ", ")

		if run.Fix {
			for _, f := range fixes {
				if f.add {
					if !sprite.HasTag(f.tag) {
						sprite.Tags = append(sprite.Tags, f.tag)
					}
				} else {
					sprite.RemoveTag(f.tag)
				}
			}
			run.Fixed(key, detail)
		} else {
			run.Report(CodeAltarAlign, key, detail)
		}
	}
}

// altarGod extracts the god identifier from an altar filename:
// "altar_makhleb_1.png" yields ("makhleb", "makhleb"),
// "altar_shining_one.png" yields ("shining_one", "shining").
func altarGod(normKey string) (name, base string) {
	fname := normKey
	if idx := strings.LastIndex(normKey, "/"); idx >= 0 {
		fname = normKey[idx+1:]
	}
	fname = strings.TrimSuffix(fname, ".png")
	name = altarPrefixRe.ReplaceAllString(fname, "")
	name = trailingNumRe.ReplaceAllString(name, "")
	if name != "" {
		base = strings.SplitN(name, "_", 2)[0]
	}
	return name, base
}

func inGodSet(set map[string]struct{}, base, name string) bool {
	if _, ok := set[base]; ok {
		return true
	}
	_, ok := set[name]
	return ok
}

type dirTagsRule struct{}

func (dirTagsRule) Name() string { return CodeDirMismatch }

func (dirTagsRule) Apply(run *Run) {
	prefixes := make([]string, 0, len(dirExpectedTags))
	for prefix := range dirExpectedTags {
		prefixes = append(prefixes, prefix)
	}
	sort.Strings(prefixes)

	for _, key := range run.EnrichedKeys() {
		norm := catalog.SpellKey(key)
		sprite := run.Catalog.Get(key)
		for _, prefix := range prefixes {
			expected := dirExpectedTags[prefix]
			if !strings.HasPrefix(norm, prefix) {
				continue
			}
			var missing []string
			for _, tag := range expected {
				if tag != sprite.TileType && !sprite.HasTag(tag) {
					missing = append(missing, tag)
				}
			}
			if len(missing) == 0 {
				continue
			}
			if run.Fix {
				for _, tag := range missing {
					sprite.Tags = append(sprite.Tags, tag)
				}
				run.Fixed(key, fmt.Sprintf("added missing dir tags %v", missing))
			} else {
				run.Report(CodeDirMismatch, key, fmt.Sprintf("in %s/ but missing tags: %v", prefix, missing))
			}
		}
	}
}
