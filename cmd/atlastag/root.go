package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Execute runs the CLI, cancelling in-flight oracle calls on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx := &commandContext{}
	root := newRootCommand(cmdCtx)
	return root.ExecuteContext(ctx)
}

func newRootCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "atlastag",
		Short: "AI-assisted tileset catalog tagging",
		Long: "atlastag enriches sprite atlas catalogs with descriptions, tags, and tile\n" +
			"types using an external vision oracle CLI, verifies existing annotations,\n" +
			"runs local consistency checks, and maintains a searchable sprite database.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			return ctx.ensureConfig()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&ctx.configFlag, "config", "c", "", "path to configuration file")

	cmd.AddCommand(
		newEnrichCommand(ctx),
		newVerifyCommand(ctx),
		newCheckCommand(ctx),
		newTextCommand(ctx),
		newUnindexedCommand(ctx),
		newDBCommand(ctx),
		newDepsCommand(ctx),
		newConfigCommand(ctx),
	)
	return cmd
}
