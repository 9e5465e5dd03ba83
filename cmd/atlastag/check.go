package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"atlastag/internal/consistency"
)

// issuesPerGroup caps how many findings one heading prints before eliding.
const issuesPerGroup = 20

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var (
		atlasFlag string
		fix       bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run local consistency checks over a tagged catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			targets, err := atlasTargets(atlasFlag)
			if err != nil {
				return err
			}
			for _, atlas := range targets {
				p, err := ctx.newPipeline(atlas, "")
				if err != nil {
					return err
				}
				summary, err := p.Check(fix)
				if err != nil {
					if skipBadCatalog(cmd, atlas, err) {
						continue
					}
					return fmt.Errorf("check %s: %w", atlas, err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s: %d of %d sprites enriched\n", atlas, summary.Enriched, summary.Total)
				printIssues(cmd, summary.Issues)
				if fix {
					fmt.Fprintf(out, "%s: %d fixes applied\n", atlas, summary.Fixes)
					if summary.BackupPath != "" {
						fmt.Fprintf(out, "  backup: %s\n", summary.BackupPath)
					}
				} else if len(summary.Issues) > 0 {
					fmt.Fprintf(out, "%s: %d issues found (rerun with --fix to apply mechanical fixes)\n",
						atlas, len(summary.Issues))
				} else {
					fmt.Fprintf(out, "%s: no issues found\n", atlas)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&atlasFlag, "atlas", "both", "atlas to check (both runs utumno and supplemental)")
	cmd.Flags().BoolVar(&fix, "fix", false, "apply mechanical fixes instead of only reporting")
	return cmd
}

func printIssues(cmd *cobra.Command, issues []consistency.Issue) {
	if len(issues) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	grouped := consistency.GroupIssues(issues)
	for _, code := range consistency.CodeOrder {
		group := grouped[code]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n%s [%s]: %d\n", consistency.CodeLabels[code], code, len(group))
		for i, issue := range group {
			if i >= issuesPerGroup {
				fmt.Fprintf(out, "  ... and %d more\n", len(group)-issuesPerGroup)
				break
			}
			if issue.Detail != "" {
				fmt.Fprintf(out, "  %s: %s\n", issue.Key, issue.Detail)
			} else {
				fmt.Fprintf(out, "  %s\n", issue.Key)
			}
		}
	}
	fmt.Fprintln(out)
}
