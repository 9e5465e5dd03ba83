package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"atlastag/internal/pipeline"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var (
		atlasFlag string
		batchSize int
		limit     int
		model     string
		logPath   string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-inspect tagged sprites and apply the oracle's corrections",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.configValue()
			if err != nil {
				return err
			}
			if batchSize <= 0 {
				batchSize = cfg.Enrich.VerifyBatchSize
			}
			targets, err := atlasTargets(atlasFlag)
			if err != nil {
				return err
			}

			opts := pipeline.VerifyOptions{BatchSize: batchSize, Limit: limit, LogPath: logPath}
			for _, atlas := range targets {
				p, err := ctx.newPipeline(atlas, model)
				if err != nil {
					return err
				}
				if dryRun {
					cat, plan, err := p.PlanVerify(opts)
					if err != nil {
						if skipBadCatalog(cmd, atlas, err) {
							continue
						}
						return fmt.Errorf("plan %s: %w", atlas, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d of %d sprites would be re-inspected in %d batches\n",
						atlas, plan.TotalKeys(), cat.Len(), len(plan.Batches))
					printBatchPlan(cmd, plan)
					continue
				}

				summary, err := p.Verify(cmd.Context(), opts)
				if err != nil {
					if skipBadCatalog(cmd, atlas, err) {
						continue
					}
					return fmt.Errorf("verify %s: %w", atlas, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: inspected %s, fixed %d, %d batches skipped\n",
					atlas, pluralSprites(summary.Inspected), summary.Fixed, summary.SkippedBatches)
				if summary.BackupPath != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "  backup: %s\n", summary.BackupPath)
				}
				if summary.LogPath != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "  audit log: %s\n", summary.LogPath)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&atlasFlag, "atlas", "both", "atlas to verify (both runs utumno and supplemental)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "sprites per oracle call (0 uses the configured default)")
	cmd.Flags().IntVar(&limit, "limit", 0, "cap the number of batches; 0 means no cap")
	cmd.Flags().StringVar(&model, "model", "", "override the configured oracle model")
	cmd.Flags().StringVar(&logPath, "log", "", "fix audit log path (default verify_<atlas>.log)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the batch plan without calling the oracle")
	return cmd
}
