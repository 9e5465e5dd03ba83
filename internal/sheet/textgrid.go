package sheet

import (
	"fmt"
	"image"
	"sort"
	"strings"
)

// DefaultAlphaThreshold is the cutoff below which a pixel counts as
// transparent in text grids.
const DefaultAlphaThreshold = 128

// AliasSequence returns the full color alias sequence: A-Z, 0-9, then AA-ZZ,
// 712 aliases in all.
func AliasSequence() []string {
	aliases := make([]string, 0, 26+10+26*26)
	for c := 'A'; c <= 'Z'; c++ {
		aliases = append(aliases, string(c))
	}
	for d := '0'; d <= '9'; d++ {
		aliases = append(aliases, string(d))
	}
	for c1 := 'A'; c1 <= 'Z'; c1++ {
		for c2 := 'A'; c2 <= 'Z'; c2++ {
			aliases = append(aliases, string(c1)+string(c2))
		}
	}
	return aliases
}

// Palette maps color aliases to #RRGGBB values, shared across the sprites of
// one batch so repeated colors keep the same alias.
type Palette struct {
	aliases    []string
	next       int
	colorAlias map[string]string
}

// NewPalette returns an empty palette with a fresh alias sequence.
func NewPalette() *Palette {
	return &Palette{aliases: AliasSequence(), colorAlias: map[string]string{}}
}

// Alias returns the alias for hexColor, assigning the next free one on first
// sight. Hex colors are upper-case #RRGGBB.
func (p *Palette) Alias(hexColor string) string {
	if alias, ok := p.colorAlias[hexColor]; ok {
		return alias
	}
	if p.next >= len(p.aliases) {
		// Exhausted palette: deep-color art past 712 distinct opaque colors.
		// Reuse the final alias rather than fail the whole batch.
		alias := p.aliases[len(p.aliases)-1]
		p.colorAlias[hexColor] = alias
		return alias
	}
	alias := p.aliases[p.next]
	p.next++
	p.colorAlias[hexColor] = alias
	return alias
}

// Lines renders "alias=#RRGGBB" entries sorted by alias.
func (p *Palette) Lines() []string {
	type entry struct{ alias, hex string }
	entries := make([]entry, 0, len(p.colorAlias))
	for hex, alias := range p.colorAlias {
		entries = append(entries, entry{alias, hex})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].alias < entries[j].alias })
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = e.alias + "=" + e.hex
	}
	return lines
}

// Len returns the number of distinct colors recorded.
func (p *Palette) Len() int {
	return len(p.colorAlias)
}

// ImageToGrid converts img to a row-major grid of palette aliases, with "."
// for pixels under the alpha threshold. New colors are added to palette.
func ImageToGrid(img *image.RGBA, alphaThreshold int, palette *Palette) [][]string {
	bounds := img.Bounds()
	grid := make([][]string, 0, bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := make([]string, 0, bounds.Dx())
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if int(c.A) < alphaThreshold {
				row = append(row, ".")
				continue
			}
			hex := fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
			row = append(row, palette.Alias(hex))
		}
		grid = append(grid, row)
	}
	return grid
}

// BatchText renders a batch of sprites as a shared palette header followed by
// one numbered grid block per sprite. Cells are padded to two characters so
// columns line up regardless of alias width.
func BatchText(keys []string, images []*image.RGBA, alphaThreshold int) string {
	palette := NewPalette()
	grids := make([][][]string, len(images))
	for i, img := range images {
		grids[i] = ImageToGrid(img, alphaThreshold, palette)
	}

	var b strings.Builder
	b.WriteString("palette.txt:\n")
	for _, line := range palette.Lines() {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	for i, key := range keys {
		fmt.Fprintf(&b, "--- %d. %s ---\n", i+1, key)
		for _, row := range grids[i] {
			cells := make([]string, len(row))
			for j, cell := range row {
				cells[j] = padCell(cell)
			}
			b.WriteString(strings.Join(cells, " "))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func padCell(value string) string {
	for len(value) < 2 {
		value += "."
	}
	return value
}

// NumberedList renders sprite keys as a 1-based numbered list, the order the
// oracle must answer in.
func NumberedList(keys []string) string {
	lines := make([]string, len(keys))
	for i, key := range keys {
		lines[i] = fmt.Sprintf("%d. %s", i+1, key)
	}
	return strings.Join(lines, "\n")
}
