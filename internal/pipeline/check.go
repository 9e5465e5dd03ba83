package pipeline

import (
	"atlastag/internal/catalog"
	"atlastag/internal/consistency"
	"atlastag/internal/logging"
)

// CheckSummary reports one consistency pass.
type CheckSummary struct {
	Enriched   int
	Total      int
	Issues     []consistency.Issue
	Fixes      int
	BackupPath string
	OutputPath string
}

// Check runs the consistency engine over the tagged catalog. No oracle
// calls. With fix set, the run lock is taken and the catalog is backed up
// before any mutation, then saved once at the end if anything changed;
// report mode never writes and needs no lock.
func (p *Pipeline) Check(fix bool) (*CheckSummary, error) {
	if fix {
		lock, err := p.acquireLock()
		if err != nil {
			return nil, err
		}
		defer lock.Unlock()
	}

	outputPath := p.profile.OutputPath(p.cfg.Paths.AssetsDir)
	cat, err := p.LoadOutput()
	if err != nil {
		return nil, err
	}

	summary := &CheckSummary{
		Enriched:   len(cat.EnrichedKeys()),
		Total:      cat.Len(),
		OutputPath: outputPath,
	}
	if summary.Enriched == 0 {
		p.logger.Info("nothing to check")
		return summary, nil
	}

	if fix {
		backup, err := catalog.Backup(outputPath)
		if err != nil {
			return nil, err
		}
		summary.BackupPath = backup
		p.logger.Info("catalog backed up", logging.String("backup", backup))
	}

	engine := consistency.NewEngine(p.profile, p.logger)
	run := engine.Check(cat, fix)
	summary.Issues = run.Issues
	summary.Fixes = run.Fixes

	if fix && run.Fixes > 0 {
		if err := catalog.Save(cat, outputPath); err != nil {
			return summary, err
		}
		p.logger.Info("fixes saved",
			logging.Int("fixes", run.Fixes),
			logging.String("output", outputPath))
	}
	return summary, nil
}
