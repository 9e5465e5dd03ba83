// Package profiles defines the built-in atlas registry: where each tileset
// lives under the assets tree, which index file describes it, and which
// tileset-specific guidance and consistency checks apply to it.
package profiles

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Profile describes one known atlas and its enrichment behavior.
type Profile struct {
	// Name is the CLI identifier, e.g. "utumno".
	Name string
	// BaseSubdir is the asset subdirectory holding the atlas and index.
	BaseSubdir string
	// AtlasFile is the packed atlas PNG filename.
	AtlasFile string
	// IndexFile is the catalog read at the start of a run.
	IndexFile string
	// OutputFile is the catalog written on checkpoint. Profiles that tag in
	// place use the same name as IndexFile.
	OutputFile string
	// VerifyRules is tileset-specific guidance appended to verify prompts.
	VerifyRules string
	// DungeonChecks enables the dungeon-crawl consistency rules (creature
	// and altar tag stripping, altar alignment, directory-implied tags).
	DungeonChecks bool
}

// BaseDir resolves the profile's asset directory under assetsDir.
func (p Profile) BaseDir(assetsDir string) string {
	return filepath.Join(assetsDir, p.BaseSubdir)
}

// AtlasPath resolves the packed atlas image path.
func (p Profile) AtlasPath(assetsDir string) string {
	return filepath.Join(p.BaseDir(assetsDir), p.AtlasFile)
}

// IndexPath resolves the input catalog path.
func (p Profile) IndexPath(assetsDir string) string {
	return filepath.Join(p.BaseDir(assetsDir), p.IndexFile)
}

// OutputPath resolves the checkpoint catalog path.
func (p Profile) OutputPath(assetsDir string) string {
	return filepath.Join(p.BaseDir(assetsDir), p.OutputFile)
}

const dungeonVerifyRules = `Dungeon-crawl rules:
- Altar alignment: "sacred" on all altars. Add "holy" for Zin/Shining One/Elyvilon, "unholy" for Beogh/Jiyva/Kikubaaqudgha/Lugonu/Makhleb/Yredelemnul. Neutral gods: sacred only.`

const urizenVerifyRules = `Urizen-specific rules:
- This is a 1-bit monochrome tileset. Do not reference colors in descriptions — describe shapes and forms instead.
- Focus on EXPANDING tags rather than correcting.
- Add material tags (wood, stone, metal, fabric, crystal) where the material is implied by the shape.
- Add functional tags: melee/ranged for weapons, humanoid/beast for creatures.
- Add context tags: interior/exterior, building, furniture where appropriate.
- "animated" means the sprite is an animation frame (name contains _walk_, _idle, _attack_, etc.). Do NOT use "animated" just because a sprite depicts a living creature.
- "variant" means the sprite is a visual variant of another (name ends in _2, _3, _alt, etc.). Do NOT use "variant" just because a creature has a color.`

const kenneyVerifyRules = `Kenney-specific rules:
- This is a manually tagged index. Focus on EXPANDING tags rather than correcting.
- Most sprites have too few tags. Add all relevant tags from the vocabulary.
- Add material tags (wood, stone, metal, fabric, crystal) where the material is visible.
- Add functional tags: melee/ranged for weapons, humanoid/beast for creatures.
- Add context tags: interior/exterior, building, furniture where appropriate.
- "animated" means the sprite is an animation frame (name contains _walk_, _idle, _fall_, _attack_, etc.). Do NOT use "animated" just because a sprite depicts a living creature.
- "variant" means the sprite is a visual variant of another (name ends in _2, _3, _alt, etc.). Do NOT use "variant" just because a creature has a color.
- DO NOT question what a sprite represents — many are ambiguous pixel art and the name is authoritative.`

var registry = map[string]Profile{
	"utumno": {
		Name:          "utumno",
		BaseSubdir:    "dcss",
		AtlasFile:     "ProjectUtumno_full.png",
		IndexFile:     "dcss_utumno_index.json",
		OutputFile:    "dcss_utumno_index_tagged.json",
		VerifyRules:   dungeonVerifyRules,
		DungeonChecks: true,
	},
	"supplemental": {
		Name:          "supplemental",
		BaseSubdir:    "dcss",
		AtlasFile:     "supplemental_atlas.png",
		IndexFile:     "dcss_supplemental_index.json",
		OutputFile:    "dcss_supplemental_index_tagged.json",
		VerifyRules:   dungeonVerifyRules,
		DungeonChecks: true,
	},
	"combined": {
		Name:          "combined",
		BaseSubdir:    "dcss",
		AtlasFile:     "dcss_combined_atlas.png",
		IndexFile:     "dcss_combined_index.json",
		OutputFile:    "dcss_combined_index.json",
		VerifyRules:   dungeonVerifyRules,
		DungeonChecks: true,
	},
	"urizen": {
		Name:        "urizen",
		BaseSubdir:  "urizen",
		AtlasFile:   "urizen_onebit_tileset__v2d0_32x32.png",
		IndexFile:   "urizen_onebit_tileset__v2d0_32x32_index.json",
		OutputFile:  "urizen_onebit_tileset__v2d0_32x32_index.json",
		VerifyRules: urizenVerifyRules,
	},
	"kenney": {
		Name:        "kenney",
		BaseSubdir:  "kenney",
		AtlasFile:   "colored-transparent_packed_2x.png",
		IndexFile:   "kenney_atlas_index.json",
		OutputFile:  "kenney_atlas_index.json",
		VerifyRules: kenneyVerifyRules,
	},
}

// Get returns the profile registered under name.
func Get(name string) (Profile, error) {
	profile, ok := registry[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown atlas %q (known: %v)", name, Names())
	}
	return profile, nil
}

// Names returns all registered profile names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
