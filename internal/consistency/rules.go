package consistency

import (
	"fmt"
	"regexp"
	"strings"

	"atlastag/internal/catalog"
)

// tagSpelling maps American tag spellings to the vocabulary's British forms.
var tagSpelling = map[string]string{
	"gray":  "grey",
	"armor": "armour",
}

// descSpelling rewrites whole-word American spellings in descriptions,
// case-insensitively.
var descSpelling = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`(?i)\bgray\b`), "grey"},
	{regexp.MustCompile(`(?i)\barmor\b`), "armour"},
}

type tileTypeInTagsRule struct{}

func (tileTypeInTagsRule) Name() string { return CodeTileTypeInTags }

func (tileTypeInTagsRule) Apply(run *Run) {
	for _, key := range run.EnrichedKeys() {
		sprite := run.Catalog.Get(key)
		if sprite.TileType == "" || !sprite.HasTag(sprite.TileType) {
			continue
		}
		if run.Fix {
			sprite.RemoveTag(sprite.TileType)
			run.Fixed(key, fmt.Sprintf("removed tile_type %q from tags", sprite.TileType))
		} else {
			run.Report(CodeTileTypeInTags, key, fmt.Sprintf("tile_type %q redundantly in tags", sprite.TileType))
		}
	}
}

type tagSpellingRule struct{}

func (tagSpellingRule) Name() string { return CodeSpelling }

func (tagSpellingRule) Apply(run *Run) {
	for _, key := range run.EnrichedKeys() {
		sprite := run.Catalog.Get(key)
		var wrong []string
		for _, tag := range sprite.Tags {
			if _, ok := tagSpelling[tag]; ok {
				wrong = append(wrong, tag)
			}
		}
		if len(wrong) == 0 {
			continue
		}
		if run.Fix {
			var changed []string
			for i, tag := range sprite.Tags {
				if fixed, ok := tagSpelling[tag]; ok {
					sprite.Tags[i] = fixed
					changed = append(changed, tag+"->"+fixed)
				}
			}
			run.Fixed(key, "tag spelling "+strings.Join(changed, ", "))
		} else {
			run.Report(CodeSpelling, key, fmt.Sprintf("American spelling in tags: %v", wrong))
		}
	}
}

type descSpellingRule struct{}

func (descSpellingRule) Name() string { return CodeSpellingDesc }

func (descSpellingRule) Apply(run *Run) {
	for _, key := range run.EnrichedKeys() {
		sprite := run.Catalog.Get(key)
		fixed := sprite.Description
		for _, rule := range descSpelling {
			fixed = rule.pattern.ReplaceAllString(fixed, rule.repl)
		}
		if fixed == sprite.Description {
			continue
		}
		if run.Fix {
			sprite.Description = fixed
			run.Fixed(key, "description spelling (grey/armour)")
		} else {
			run.Report(CodeSpellingDesc, key, "American spelling in description")
		}
	}
}

type tagCountRule struct{}

func (tagCountRule) Name() string { return CodeFewTags }

func (tagCountRule) Apply(run *Run) {
	for _, key := range run.EnrichedKeys() {
		sprite := run.Catalog.Get(key)
		switch n := len(sprite.Tags); {
		case n < 3:
			run.Report(CodeFewTags, key, fmt.Sprintf("only %d tags: %v", n, sprite.Tags))
		case n > 10:
			run.Report(CodeManyTags, key, fmt.Sprintf("%d tags: %v", n, sprite.Tags))
		}
	}
}

type descLengthRule struct{}

func (descLengthRule) Name() string { return CodeShortDesc }

func (descLengthRule) Apply(run *Run) {
	for _, key := range run.EnrichedKeys() {
		sprite := run.Catalog.Get(key)
		switch n := len(sprite.Description); {
		case n < 30:
			run.Report(CodeShortDesc, key, fmt.Sprintf("(%d chars) %q", n, sprite.Description))
		case n > 300:
			run.Report(CodeLongDesc, key, fmt.Sprintf("(%d chars) %s...", n, descSnippet(sprite.Description)))
		}
	}
}

// descSnippet truncates a description to at most 80 runes, never splitting
// a multi-byte character.
func descSnippet(desc string) string {
	runes := []rune(desc)
	if len(runes) <= 80 {
		return desc
	}
	return string(runes[:80])
}

type dupeDescRule struct{}

func (dupeDescRule) Name() string { return CodeDupeDesc }

// Identical descriptions are fine between variants of the same sprite
// (brick_brown_0 and brick_brown_1); between unrelated sprites they usually
// mean a positional merge went wrong.
func (dupeDescRule) Apply(run *Run) {
	byDesc := map[string][]string{}
	order := []string{}
	for _, key := range run.EnrichedKeys() {
		desc := run.Catalog.Get(key).Description
		if _, seen := byDesc[desc]; !seen {
			order = append(order, desc)
		}
		byDesc[desc] = append(byDesc[desc], key)
	}
	for _, desc := range order {
		keys := byDesc[desc]
		if len(keys) < 2 {
			continue
		}
		bases := map[string]struct{}{}
		for _, key := range keys {
			bases[catalog.BaseName(key)] = struct{}{}
		}
		if len(bases) < 2 {
			continue
		}
		run.Report(CodeDupeDesc, strings.Join(keys, ", "), "identical description: "+descSnippet(desc)+"...")
	}
}
