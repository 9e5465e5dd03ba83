package consistency

// Issue codes. The first group is mechanically fixable; the second group is
// report-only because the right fix needs human or oracle judgment.
const (
	CodeTileTypeInTags   = "TILE_TYPE_IN_TAGS"
	CodeSpelling         = "SPELLING"
	CodeSpellingDesc     = "SPELLING_DESC"
	CodeCreatureEquipTag = "CREATURE_EQUIP_TAG"
	CodeAltarEquipTag    = "ALTAR_EQUIP_TAG"
	CodeAltarAlign       = "ALTAR_ALIGN"
	CodeDirMismatch      = "DIR_MISMATCH"

	CodeFewTags   = "FEW_TAGS"
	CodeManyTags  = "MANY_TAGS"
	CodeShortDesc = "SHORT_DESC"
	CodeLongDesc  = "LONG_DESC"
	CodeDupeDesc  = "DUPE_DESC"
)

// Issue is one finding from a report pass: the rule that fired, the sprite
// key (or key list for cross-sprite findings), and a human-readable detail.
type Issue struct {
	Code   string
	Key    string
	Detail string
}

// CodeLabels maps issue codes to report headings.
var CodeLabels = map[string]string{
	CodeFewTags:          "Too few tags (< 3)",
	CodeManyTags:         "Too many tags (> 10)",
	CodeTileTypeInTags:   "tile_type redundantly in tags",
	CodeCreatureEquipTag: "Equipment tags on creatures",
	CodeAltarEquipTag:    "Equipment tags on altars",
	CodeAltarAlign:       "Altar sacred/holy/unholy alignment",
	CodeDirMismatch:      "Directory/tag mismatch",
	CodeSpelling:         "American spelling in tags",
	CodeSpellingDesc:     "American spelling in descriptions",
	CodeShortDesc:        "Short description (< 30 chars)",
	CodeLongDesc:         "Long description (> 300 chars)",
	CodeDupeDesc:         "Duplicate descriptions (possible misalignment)",
}

// CodeOrder is the display order for grouped reports: likely misalignments
// first, mechanical issues next, advisory issues last.
var CodeOrder = []string{
	CodeDupeDesc, CodeTileTypeInTags,
	CodeCreatureEquipTag, CodeAltarEquipTag, CodeAltarAlign, CodeDirMismatch,
	CodeSpelling, CodeSpellingDesc,
	CodeFewTags, CodeManyTags, CodeShortDesc, CodeLongDesc,
}
