package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newUnindexedCommand(ctx *commandContext) *cobra.Command {
	var (
		atlasFlag         string
		supplementalIndex string
	)

	cmd := &cobra.Command{
		Use:   "unindexed",
		Short: "Find non-empty atlas tiles no index covers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := ctx.newPipeline(atlasFlag, "")
			if err != nil {
				return err
			}
			supplemental := supplementalIndex
			if supplemental == "" && atlasFlag == "utumno" {
				supplemental = "dcss_supplemental_index.json"
			}
			report, path, err := p.Unindexed(supplemental)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Atlas: %s (%d tiles of %dx%d px)\n",
				report.Atlas, report.TotalAtlasTiles,
				report.TileSize[0], report.TileSize[1])
			fmt.Fprintf(out, "  indexed tile positions:   %d\n", report.IndexedTilePositions)
			if report.SupplementalSprites > 0 {
				fmt.Fprintf(out, "  supplemental sprites:     %d\n", report.SupplementalSprites)
			}
			fmt.Fprintf(out, "  unindexed non-empty tiles: %d\n", report.UnindexedNonEmpty)
			fmt.Fprintf(out, "Report written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&atlasFlag, "atlas", "utumno", "atlas to scan")
	cmd.Flags().StringVar(&supplementalIndex, "supplemental-index", "", "extra index filename counted in the report")
	return cmd
}
