package oracle

import (
	"fmt"
	"strings"
)

// File names the oracle is told to read from its working directory. The
// prompt references both representations because the model may only reliably
// read one of them.
const (
	GridImageName  = "batch_grid.png"
	VerifyGridName = "verify_grid.png"
	GridTextName   = "batch_text.txt"
)

// EnrichPrompt builds the tagging prompt for one batch: the numbered key
// list is the positional contract, the vocabulary bounds the tag space, and
// rules carries tileset-specific guidance.
func EnrichPrompt(numberedKeys string, vocabulary []string, rules string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tag pixel art sprites. Read %s for the visual grid, then read %s for the pixel-level grid.txt/palette.txt representation of each sprite (exact colors per pixel).\n\n", GridImageName, GridTextName)
	b.WriteString(numberedKeys)
	b.WriteString(`

For EACH sprite return:
- "description": One sentence with specific visual details (colors, pose, style). Filenames are ground truth for what the sprite depicts; use the image for visual details.
- "tags": 3-6 tags from vocabulary below. You may add 1-2 custom tags if useful for search. Do NOT include tile_type in tags.
- "tile_type": Single category (e.g. "creature", "wall", "door", "altar", "equipment").

Tags/descriptions are for AI agents searching for tiles — use terms they would naturally search for.
`)
	if rules != "" {
		b.WriteString(rules)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Vocabulary: [%s]\n\n", strings.Join(vocabulary, ", "))
	b.WriteString(`Respond ONLY with a JSON array, one object per sprite in order:
[{"description": "...", "tags": [...], "tile_type": "..."}]`)
	return b.String()
}

// VerifyEntry is one already-enriched sprite presented for review.
type VerifyEntry struct {
	Key         string
	TileType    string
	Tags        []string
	Description string
}

// VerifyPrompt builds the review prompt: current fields are shown inline and
// the oracle answers with an indexed fix list, empty when everything passes.
func VerifyPrompt(entries []VerifyEntry, vocabulary []string, rules string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Review sprite tags. Read %s for the visual grid, then read %s for the pixel-level grid.txt/palette.txt representation of each sprite (exact colors per pixel). Check sprites below.\n\n", VerifyGridName, GridTextName)
	for i, entry := range entries {
		fmt.Fprintf(&b, "%d. %s\n   type: %s\n   tags: [%s]\n   desc: %s\n",
			i+1, entry.Key, entry.TileType, strings.Join(entry.Tags, ", "), entry.Description)
	}
	fmt.Fprintf(&b, `
Rules:
- Filenames/names are ground truth. Never contradict them.
- Only fix CLEARLY WRONG descriptions. Do not reword acceptable descriptions.
- Do not change tile_type unless clearly wrong.
- Preserve custom tags (tags not in the vocabulary). Only remove a custom tag if it is factually wrong.
- Do not include tile_type in tags — they are separate fields.
- Expand sparse tags: if a sprite has fewer than 3 tags, add relevant ones from the vocabulary.
- Vocabulary: [%s]

`, strings.Join(vocabulary, ", "))
	if rules != "" {
		b.WriteString(rules)
		b.WriteString("\n\n")
	}
	b.WriteString(`CRITICAL: Output ONLY a raw JSON array — no explanation, no reasoning, no markdown fences.
Include ONLY sprites needing fixes. Use 1-indexed "index". If all OK return [].
Example: [{"index": 3, "description": "...", "tags": [...], "tile_type": "..."}]`)
	return b.String()
}
