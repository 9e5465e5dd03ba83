package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"atlastag/internal/catalog"
	"atlastag/internal/logging"
	"atlastag/internal/profiles"
	"atlastag/internal/spritedb"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Maintain and query the sprite search database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(
		newDBRebuildCommand(ctx),
		newDBStatsCommand(ctx),
		newDBFindCommand(ctx),
	)
	return cmd
}

func (c *commandContext) openDB() (*spritedb.DB, error) {
	cfg, err := c.configValue()
	if err != nil {
		return nil, err
	}
	return spritedb.Open(cfg.Paths.DBPath)
}

func newDBRebuildCommand(ctx *commandContext) *cobra.Command {
	var atlases []string

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the database from tagged catalogs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.configValue()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			names := atlases
			if len(names) == 0 {
				names = profiles.Names()
			}

			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Clear(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			imported := 0
			for _, name := range names {
				profile, err := profiles.Get(name)
				if err != nil {
					return err
				}
				indexPath := profile.OutputPath(cfg.Paths.AssetsDir)
				cat, err := catalog.Load(indexPath)
				if errors.Is(err, catalog.ErrNotFound) {
					logger.Info("skipping atlas without tagged catalog",
						logging.String("atlas", name),
						logging.String("path", indexPath))
					continue
				}
				if err != nil {
					return fmt.Errorf("load %s: %w", name, err)
				}
				count, err := db.ImportCatalog(name, indexPath, profile.AtlasFile, cat)
				if err != nil {
					return fmt.Errorf("import %s: %w", name, err)
				}
				fmt.Fprintf(out, "%s: imported %s\n", name, pluralSprites(count))
				imported += count
			}
			fmt.Fprintf(out, "Database rebuilt with %s at %s\n", pluralSprites(imported), cfg.Paths.DBPath)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&atlases, "atlas", nil, "atlases to import (default: every atlas with a tagged catalog)")
	return cmd
}

func newDBStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show per-atlas database counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := db.Stats()
			if err != nil {
				return err
			}
			if len(stats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Database is empty. Run 'atlastag db rebuild' first.")
				return nil
			}

			rows := make([][]string, 0, len(stats))
			for _, stat := range stats {
				rows = append(rows, []string{
					stat.Atlas,
					strconv.Itoa(stat.Sprites),
					strconv.Itoa(stat.TileTypes),
					strconv.Itoa(stat.Tags),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Atlas", "Sprites", "Tile Types", "Tags"},
				rows,
				columnAlignment{column: 2, align: alignRight},
				columnAlignment{column: 3, align: alignRight},
				columnAlignment{column: 4, align: alignRight},
			))
			return nil
		},
	}
}

func newDBFindCommand(ctx *commandContext) *cobra.Command {
	var (
		tags     []string
		tileType string
		atlas    string
		limit    int
	)

	cmd := &cobra.Command{
		Use:   "find [query...]",
		Short: "Search sprites by full text and structured filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" && len(tags) == 0 && tileType == "" && atlas == "" {
				return fmt.Errorf("provide a query or at least one of --tag, --type, --atlas")
			}

			db, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			results, err := db.Find(query, spritedb.FindOptions{
				Tags:     tags,
				TileType: tileType,
				Atlas:    atlas,
				Limit:    limit,
			})
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No sprites matched.")
				return nil
			}

			rows := make([][]string, 0, len(results))
			for _, result := range results {
				rows = append(rows, []string{
					result.Atlas,
					result.Key,
					result.TileType,
					truncate(strings.Join(result.Tags, ", "), 40),
					truncate(result.Description, 60),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Atlas", "Sprite", "Type", "Tags", "Description"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tag", nil, "require a tag (repeatable; all must match)")
	cmd.Flags().StringVar(&tileType, "type", "", "filter by tile type")
	cmd.Flags().StringVar(&atlas, "atlas", "", "filter by atlas")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (0 uses the default)")
	return cmd
}
