// Package consistency runs local, oracle-free checks over an enriched
// catalog. Rules come in two kinds: mechanical rules that a fix pass applies
// directly (redundant tile types in tags, spelling, alignment tags), and
// report-only rules whose findings need judgment (tag counts, description
// length, duplicate descriptions). Report mode never mutates the catalog.
package consistency

import (
	"log/slog"

	"atlastag/internal/catalog"
	"atlastag/internal/logging"
	"atlastag/internal/profiles"
)

// Rule inspects (and in fix mode, repairs) enriched sprites.
type Rule interface {
	Name() string
	Apply(run *Run)
}

// Run carries the state of one engine pass.
type Run struct {
	Catalog *catalog.Catalog
	Fix     bool
	Issues  []Issue
	Fixes   int

	keys   []string
	logger *slog.Logger
}

// EnrichedKeys returns the keys under inspection, in catalog order.
func (r *Run) EnrichedKeys() []string {
	return r.keys
}

// Report records a finding in report mode.
func (r *Run) Report(code, key, detail string) {
	r.Issues = append(r.Issues, Issue{Code: code, Key: key, Detail: detail})
}

// Fixed records an applied repair.
func (r *Run) Fixed(key, detail string) {
	r.Fixes++
	r.logger.Info("fix applied", logging.String("sprite", key), logging.String("change", detail))
}

// Engine is an ordered rule list bound to one atlas profile.
type Engine struct {
	rules  []Rule
	logger *slog.Logger
}

// NewEngine assembles the rule set for profile. Dungeon-crawl profiles get
// the creature/altar/directory rules in addition to the base set.
func NewEngine(profile profiles.Profile, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	rules := []Rule{
		tileTypeInTagsRule{},
		tagSpellingRule{},
		descSpellingRule{},
	}
	if profile.DungeonChecks {
		rules = append(rules,
			creatureEquipRule{},
			altarEquipRule{},
			altarAlignRule{},
			dirTagsRule{},
		)
	}
	rules = append(rules,
		tagCountRule{},
		descLengthRule{},
		dupeDescRule{},
	)
	return &Engine{
		rules:  rules,
		logger: logger.With(logging.String(logging.FieldComponent, "check")),
	}
}

// Check runs every rule over the catalog's enriched sprites. With fix set,
// mechanical rules mutate the catalog in place and report-only rules still
// produce issues; the caller is responsible for backup and save.
func (e *Engine) Check(cat *catalog.Catalog, fix bool) *Run {
	run := &Run{
		Catalog: cat,
		Fix:     fix,
		keys:    cat.EnrichedKeys(),
		logger:  e.logger,
	}
	for _, rule := range e.rules {
		rule.Apply(run)
	}
	return run
}

// GroupIssues buckets issues by code for display.
func GroupIssues(issues []Issue) map[string][]Issue {
	grouped := map[string][]Issue{}
	for _, issue := range issues {
		grouped[issue.Code] = append(grouped[issue.Code], issue)
	}
	return grouped
}
