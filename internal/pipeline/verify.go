package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"

	"atlastag/internal/catalog"
	"atlastag/internal/logging"
	"atlastag/internal/merge"
	"atlastag/internal/oracle"
	"atlastag/internal/planner"
	"atlastag/internal/profiles"
)

// VerifyOptions tune one verify run.
type VerifyOptions struct {
	BatchSize int
	Limit     int
	// LogPath is the fix audit log location; empty means
	// verify_<atlas>.log in the working directory.
	LogPath string
}

// VerifySummary reports what a verify run did.
type VerifySummary struct {
	Inspected      int
	Fixed          int
	SkippedBatches int
	BackupPath     string
	LogPath        string
	OutputPath     string
}

// PlanVerify loads the tagged catalog and computes the flat verify plan.
func (p *Pipeline) PlanVerify(opts VerifyOptions) (*catalog.Catalog, planner.Plan, error) {
	cat, err := p.LoadOutput()
	if err != nil {
		return nil, planner.Plan{}, err
	}
	plan := planner.BuildVerifyPlan(cat, opts.BatchSize).Limit(opts.Limit)
	return cat, plan, nil
}

// Verify re-inspects already tagged sprites in large batches and applies the
// oracle's indexed fixes. The catalog is backed up once before the first
// write, and every applied change lands in the audit log with before/after
// values.
func (p *Pipeline) Verify(ctx context.Context, opts VerifyOptions) (*VerifySummary, error) {
	if err := p.oracle.Available(); err != nil {
		return nil, err
	}
	lock, err := p.acquireLock()
	if err != nil {
		return nil, err
	}
	defer lock.Unlock()

	cat, plan, err := p.PlanVerify(opts)
	if err != nil {
		return nil, err
	}
	outputPath := p.profile.OutputPath(p.cfg.Paths.AssetsDir)
	summary := &VerifySummary{
		Inspected:  plan.TotalKeys(),
		OutputPath: outputPath,
	}
	p.logger.Info("verify run starting",
		logging.Int("sprites", summary.Inspected),
		logging.Int("batches", len(plan.Batches)))
	if plan.TotalKeys() == 0 {
		p.logger.Info("nothing to verify")
		return summary, nil
	}

	backup, err := catalog.Backup(outputPath)
	if err != nil {
		return nil, err
	}
	summary.BackupPath = backup
	p.logger.Info("catalog backed up", logging.String("backup", backup))

	logPath := opts.LogPath
	if logPath == "" {
		logPath = fmt.Sprintf("verify_%s.log", p.profile.Name)
	}
	audit, err := openFixLog(logPath, p.profile.Name)
	if err != nil {
		return nil, err
	}
	summary.LogPath = logPath
	defer func() { _ = audit.Close(summary.Fixed) }()

	scratch, err := scratchDir("atlastag-verify-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(scratch)

	loader := p.newSpriteLoader(cat)
	for i, batch := range plan.Batches {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		batchLog := p.logger.With(logging.Int("batch", i+1), logging.Int("batches", len(plan.Batches)))

		keys, raw, scaled := loader.collect(batch.Keys, p.cfg.Enrich.TileScale)
		if len(keys) == 0 {
			batchLog.Warn("no loadable images in batch, skipping")
			summary.SkippedBatches++
			continue
		}
		// Verify sheets are wider than enrich sheets: reviewed sprites only
		// need recognizing, not close study.
		if err := writeBatchArtifacts(scratch, oracle.VerifyGridName, keys, raw, scaled, 6); err != nil {
			batchLog.Warn("batch artifact rendering failed, skipping", logging.Error(err))
			summary.SkippedBatches++
			continue
		}

		entries := make([]oracle.VerifyEntry, len(keys))
		for j, key := range keys {
			sprite := cat.Get(key)
			entries[j] = oracle.VerifyEntry{
				Key:         key,
				TileType:    sprite.TileType,
				Tags:        sprite.Tags,
				Description: sprite.Description,
			}
		}
		prompt := oracle.VerifyPrompt(entries, profiles.TagVocabulary, p.profile.VerifyRules)
		batchLog.Info("querying oracle",
			logging.Int("sprites", len(keys)),
			logging.String("preview", previewKeys(keys)))

		fixes, err := p.oracle.VerifyBatch(ctx, prompt, scratch)
		if err != nil {
			batchLog.Warn("verify batch failed", logging.Error(err), logging.Any("sprites", keys))
			audit.ParseFailure(i+1, keys, err.Error())
			summary.SkippedBatches++
			continue
		}
		if len(fixes) == 0 {
			batchLog.Info("all sprites passed review")
			continue
		}

		changes := merge.ApplyFixes(cat, keys, fixes)
		for _, change := range changes {
			sprite := cat.Get(change.Key)
			audit.Fix(change.Key, func(record func(name, before, after string)) {
				if change.Description {
					record("description", change.OldDescription, sprite.Description)
				}
				if change.Tags {
					record("tags", strings.Join(change.OldTags, ", "), strings.Join(sprite.Tags, ", "))
				}
				if change.TileType {
					record("tile_type", change.OldTileType, sprite.TileType)
				}
			})
			batchLog.Info("fix applied", logging.String("sprite", change.Key))
		}
		summary.Fixed += len(changes)

		if err := catalog.Save(cat, outputPath); err != nil {
			return summary, fmt.Errorf("checkpoint after verify batch %d: %w", i+1, err)
		}
	}

	p.logger.Info("verify run complete",
		logging.Int("fixed", summary.Fixed),
		logging.Int("skipped_batches", summary.SkippedBatches),
		logging.String("log", logPath))
	return summary, nil
}
