package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTextCommand(ctx *commandContext) *cobra.Command {
	var (
		atlasFlag string
		batchSize int
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "text",
		Short: "Print the pixel-grid text encoding the oracle receives",
		Long: "text renders sprites into the palette-plus-grid text form that accompanies\n" +
			"every oracle call, without calling the oracle. Useful for checking what the\n" +
			"model actually sees for small or low-contrast sprites.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.configValue()
			if err != nil {
				return err
			}
			if batchSize <= 0 {
				batchSize = cfg.Enrich.BatchSize
			}
			p, err := ctx.newPipeline(atlasFlag, "")
			if err != nil {
				return err
			}
			texts, err := p.ShowText(batchSize, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, text := range texts {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "=== batch %d ===\n%s\n", i+1, text)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&atlasFlag, "atlas", "utumno", "atlas to render")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "sprites per rendered batch (0 uses the configured default)")
	cmd.Flags().IntVar(&limit, "limit", 1, "number of batches to render")
	return cmd
}
