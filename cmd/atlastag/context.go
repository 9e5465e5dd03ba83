package main

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"atlastag/internal/catalog"
	"atlastag/internal/config"
	"atlastag/internal/logging"
	"atlastag/internal/oracle"
	"atlastag/internal/pipeline"
	"atlastag/internal/profiles"
)

// commandContext carries lazily-initialized state shared by all commands.
// Configuration and the logger are built once, on first use.
type commandContext struct {
	configFlag string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func (c *commandContext) ensureConfig() error {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(c.configFlag)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.configErr
}

func (c *commandContext) configValue() (*config.Config, error) {
	if err := c.ensureConfig(); err != nil {
		return nil, err
	}
	return c.config, nil
}

// ensureLogger builds the shared logger: human-readable output on stderr so
// stdout stays clean for tables and reports, plus a file under the log
// directory when one is configured.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	cfg, err := c.configValue()
	if err != nil {
		return nil, err
	}
	c.loggerOnce.Do(func() {
		paths := []string{"stderr"}
		if cfg.Paths.LogDir != "" {
			paths = append(paths, filepath.Join(cfg.Paths.LogDir, "atlastag.log"))
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: paths,
		})
	})
	return c.logger, c.loggerErr
}

// newPipeline wires a pipeline for one atlas. A non-empty model overrides the
// configured oracle model for this invocation only.
func (c *commandContext) newPipeline(atlas, model string) (*pipeline.Pipeline, error) {
	cfg, err := c.configValue()
	if err != nil {
		return nil, err
	}
	profile, err := profiles.Get(atlas)
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}

	oracleCfg := oracle.Config{
		Binary:        cfg.Oracle.Binary,
		Model:         cfg.Oracle.Model,
		Timeout:       time.Duration(cfg.Oracle.TimeoutSeconds) * time.Second,
		VerifyTimeout: time.Duration(cfg.Oracle.VerifyTimeoutSeconds) * time.Second,
		MaxAttempts:   cfg.Oracle.MaxAttempts,
	}
	if model != "" {
		oracleCfg.Model = model
	}
	client := oracle.NewClient(oracleCfg, nil, logger)
	return pipeline.New(cfg, profile, client, logger), nil
}

// atlasTargets expands the --atlas flag value. "both" covers the two atlases
// that ship unenriched and are normally processed together.
func atlasTargets(value string) ([]string, error) {
	if value == "both" {
		return []string{"utumno", "supplemental"}, nil
	}
	if _, err := profiles.Get(value); err != nil {
		return nil, err
	}
	return []string{value}, nil
}

// skipBadCatalog reports whether err is a per-catalog load failure that a
// multi-atlas loop should warn about and step past instead of aborting.
func skipBadCatalog(cmd *cobra.Command, atlas string, err error) bool {
	if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrDecode) {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: skipping %s: %v\n", atlas, err)
		return true
	}
	return false
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for current := cmd; current != nil; current = current.Parent() {
		if current.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func pluralSprites(n int) string {
	if n == 1 {
		return "1 sprite"
	}
	return fmt.Sprintf("%d sprites", n)
}
