package pipeline

import (
	"context"
	"fmt"
	"os"

	"atlastag/internal/catalog"
	"atlastag/internal/logging"
	"atlastag/internal/merge"
	"atlastag/internal/oracle"
	"atlastag/internal/planner"
	"atlastag/internal/profiles"
	"atlastag/internal/sheet"
)

// EnrichOptions tune one enrich run.
type EnrichOptions struct {
	BatchSize int
	// Limit caps the number of batches; zero means no cap.
	Limit int
}

// EnrichSummary reports what an enrich run did.
type EnrichSummary struct {
	Total           int
	AlreadyEnriched int
	Planned         int
	Applied         int
	SkippedBatches  int
	OutputPath      string
}

// PlanEnrich loads the catalog and computes the batch plan without touching
// the oracle. Dry runs print this and stop.
func (p *Pipeline) PlanEnrich(opts EnrichOptions) (*catalog.Catalog, planner.Plan, error) {
	cat, err := p.LoadForEnrich()
	if err != nil {
		return nil, planner.Plan{}, err
	}
	plan := planner.BuildPlan(cat, opts.BatchSize).Limit(opts.Limit)
	return cat, plan, nil
}

// Enrich runs the full loop: verify the oracle is reachable, take the run
// lock, then for each planned batch render artifacts, query, merge, and
// checkpoint. Batch failures are isolated; catalog save failures are fatal.
func (p *Pipeline) Enrich(ctx context.Context, opts EnrichOptions) (*EnrichSummary, error) {
	if err := p.oracle.Available(); err != nil {
		return nil, err
	}
	lock, err := p.acquireLock()
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	cat, plan, err := p.PlanEnrich(opts)
	if err != nil {
		return nil, err
	}
	outputPath := p.profile.OutputPath(p.cfg.Paths.AssetsDir)
	summary := &EnrichSummary{
		Total:           cat.Len(),
		AlreadyEnriched: len(cat.EnrichedKeys()),
		Planned:         plan.TotalKeys(),
		OutputPath:      outputPath,
	}
	p.logger.Info("enrich run starting",
		logging.Int("total", summary.Total),
		logging.Int("already_enriched", summary.AlreadyEnriched),
		logging.Int("remaining", summary.Planned),
		logging.Int("batches", len(plan.Batches)))
	if plan.TotalKeys() == 0 {
		p.logger.Info("all sprites already enriched")
		return summary, nil
	}

	scratch, err := scratchDir("atlastag-enrich-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	loader := p.newSpriteLoader(cat)
	for i, batch := range plan.Batches {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		batchLog := p.logger.With(
			logging.Int("batch", i+1),
			logging.Int("batches", len(plan.Batches)),
			logging.String("prefix", batch.Prefix))

		keys, raw, scaled := loader.collect(batch.Keys, p.cfg.Enrich.TileScale)
		if len(keys) == 0 {
			batchLog.Warn("no loadable images in batch, skipping")
			summary.SkippedBatches++
			continue
		}
		if err := writeBatchArtifacts(scratch, oracle.GridImageName, keys, raw, scaled, p.cfg.Enrich.GridColumns); err != nil {
			batchLog.Warn("batch artifact rendering failed, skipping", logging.Error(err))
			summary.SkippedBatches++
			continue
		}

		prompt := oracle.EnrichPrompt(sheet.NumberedList(keys), profiles.TagVocabulary, p.profile.VerifyRules)
		batchLog.Info("querying oracle",
			logging.Int("sprites", len(keys)),
			logging.String("preview", previewKeys(keys)))

		results, err := p.oracle.EnrichBatch(ctx, prompt, scratch)
		if err != nil {
			batchLog.Warn("batch failed, sprites stay unenriched",
				logging.Error(err),
				logging.Any("sprites", keys))
			summary.SkippedBatches++
			continue
		}
		if len(results) != len(keys) {
			batchLog.Warn("answer count mismatch, applying positional prefix only",
				logging.Int("answers", len(results)),
				logging.Int("sprites", len(keys)))
		}

		applied := merge.ApplyEnrichments(cat, keys, results)
		if err := catalog.Save(cat, outputPath); err != nil {
			return summary, fmt.Errorf("checkpoint after batch %d: %w", i+1, err)
		}
		summary.Applied += applied
		batchLog.Info("batch checkpointed",
			logging.Int("applied", applied),
			logging.Int("enriched_total", len(cat.EnrichedKeys())))
	}

	p.logger.Info("enrich run complete",
		logging.Int("applied", summary.Applied),
		logging.Int("skipped_batches", summary.SkippedBatches),
		logging.String("output", outputPath))
	return summary, nil
}
