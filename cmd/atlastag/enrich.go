package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"atlastag/internal/pipeline"
	"atlastag/internal/planner"
)

func newEnrichCommand(ctx *commandContext) *cobra.Command {
	var (
		atlasFlag string
		batchSize int
		limit     int
		model     string
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Describe and tag unenriched sprites via the vision oracle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.configValue()
			if err != nil {
				return err
			}
			if batchSize <= 0 {
				batchSize = cfg.Enrich.BatchSize
			}
			targets, err := atlasTargets(atlasFlag)
			if err != nil {
				return err
			}

			opts := pipeline.EnrichOptions{BatchSize: batchSize, Limit: limit}
			for _, atlas := range targets {
				p, err := ctx.newPipeline(atlas, model)
				if err != nil {
					return err
				}
				if dryRun {
					cat, plan, err := p.PlanEnrich(opts)
					if err != nil {
						if skipBadCatalog(cmd, atlas, err) {
							continue
						}
						return fmt.Errorf("plan %s: %w", atlas, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %d of %d sprites need enrichment, %d batches\n",
						atlas, plan.TotalKeys(), cat.Len(), len(plan.Batches))
					printBatchPlan(cmd, plan)
					continue
				}

				summary, err := p.Enrich(cmd.Context(), opts)
				if err != nil {
					if skipBadCatalog(cmd, atlas, err) {
						continue
					}
					return fmt.Errorf("enrich %s: %w", atlas, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: applied %s, %d already enriched, %d batches skipped -> %s\n",
					atlas, pluralSprites(summary.Applied), summary.AlreadyEnriched,
					summary.SkippedBatches, summary.OutputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&atlasFlag, "atlas", "both", "atlas to enrich (both runs utumno and supplemental)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "sprites per oracle call (0 uses the configured default)")
	cmd.Flags().IntVar(&limit, "limit", 0, "cap the number of batches; 0 means no cap")
	cmd.Flags().StringVar(&model, "model", "", "override the configured oracle model")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the batch plan without calling the oracle")
	return cmd
}

func printBatchPlan(cmd *cobra.Command, plan planner.Plan) {
	if len(plan.Batches) == 0 {
		return
	}
	rows := make([][]string, 0, len(plan.Batches))
	for i, batch := range plan.Batches {
		first, last := batch.Keys[0], batch.Keys[len(batch.Keys)-1]
		span := first
		if last != first {
			span = first + " .. " + last
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			batch.Prefix,
			strconv.Itoa(len(batch.Keys)),
			span,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Batch", "Group", "Sprites", "Range"},
		rows,
		columnAlignment{column: 1, align: alignRight},
		columnAlignment{column: 3, align: alignRight},
	))
}
