// Package pipeline orchestrates enrichment runs: load catalog, plan batches,
// call the oracle, merge answers, checkpoint after every batch. Batches are
// the unit of crash-safety — a failed batch is skipped and logged, never
// fatal, and its sprites stay unenriched so the next run retries exactly
// them.
package pipeline

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"atlastag/internal/catalog"
	"atlastag/internal/config"
	"atlastag/internal/logging"
	"atlastag/internal/oracle"
	"atlastag/internal/profiles"
	"atlastag/internal/sheet"
)

// ErrLocked means another run already holds the per-atlas lock. Concurrent
// writers would race on the checkpoint file, so the second run fails fast
// instead of queueing.
var ErrLocked = errors.New("another run holds the atlas lock")

// Pipeline binds one atlas profile to the oracle client and configuration.
type Pipeline struct {
	cfg     *config.Config
	profile profiles.Profile
	oracle  *oracle.Client
	logger  *slog.Logger
}

// New constructs a pipeline. A nil logger is silenced.
func New(cfg *config.Config, profile profiles.Profile, client *oracle.Client, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		cfg:     cfg,
		profile: profile,
		oracle:  client,
		logger:  logger.With(logging.String(logging.FieldComponent, "pipeline"), logging.String("atlas", profile.Name)),
	}
}

// LoadForEnrich loads the catalog an enrich run starts from: the checkpoint
// output if a previous run left one (resume), otherwise the pristine index.
func (p *Pipeline) LoadForEnrich() (*catalog.Catalog, error) {
	outputPath := p.profile.OutputPath(p.cfg.Paths.AssetsDir)
	if cat, err := catalog.Load(outputPath); err == nil {
		p.logger.Info("resuming from existing output", logging.String("path", outputPath))
		return cat, nil
	} else if !errors.Is(err, catalog.ErrNotFound) {
		return nil, err
	}
	return catalog.Load(p.profile.IndexPath(p.cfg.Paths.AssetsDir))
}

// LoadOutput loads the tagged checkpoint catalog; verify and check refuse to
// run without one.
func (p *Pipeline) LoadOutput() (*catalog.Catalog, error) {
	return catalog.Load(p.profile.OutputPath(p.cfg.Paths.AssetsDir))
}

// acquireLock takes the per-atlas run lock, failing fast when it is held.
func (p *Pipeline) acquireLock() (*flock.Flock, error) {
	path := filepath.Join(p.profile.BaseDir(p.cfg.Paths.AssetsDir), ".atlastag."+p.profile.Name+".lock")
	lock := flock.New(path)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrLocked, path)
	}
	return lock, nil
}

// scratchDir creates the per-run working directory the oracle reads its
// batch artifacts from.
func scratchDir(prefix string) (string, error) {
	dir := filepath.Join(os.TempDir(), prefix+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create scratch dir: %w", err)
	}
	return dir, nil
}

// spriteLoader resolves sprite pixels, loading the packed atlas lazily the
// first time a loose file is missing.
type spriteLoader struct {
	cat       *catalog.Catalog
	baseDir   string
	atlasPath string
	tileW     int
	tileH     int
	atlas     image.Image
	attempted bool
	logger    *slog.Logger
}

func (p *Pipeline) newSpriteLoader(cat *catalog.Catalog) *spriteLoader {
	return &spriteLoader{
		cat:       cat,
		baseDir:   p.profile.BaseDir(p.cfg.Paths.AssetsDir),
		atlasPath: p.profile.AtlasPath(p.cfg.Paths.AssetsDir),
		tileW:     cat.TileSize[0],
		tileH:     cat.TileSize[1],
		logger:    p.logger,
	}
}

func (l *spriteLoader) image(key string) *image.RGBA {
	sprite := l.cat.Get(key)
	if sprite == nil {
		return nil
	}
	region := sheet.Region{Row: sprite.Row, Col: sprite.Col, TilesX: sprite.TilesX, TilesY: sprite.TilesY}
	img := sheet.SpriteImage(key, region, l.atlas, l.baseDir, l.tileW, l.tileH)
	if img != nil || l.attempted {
		return img
	}
	l.attempted = true
	atlas, err := sheet.LoadAtlas(l.atlasPath)
	if err != nil {
		l.logger.Warn("atlas image unavailable", logging.String("path", l.atlasPath), logging.Error(err))
		return nil
	}
	l.logger.Info("loaded atlas image", logging.String("path", l.atlasPath))
	l.atlas = atlas
	return sheet.SpriteImage(key, region, l.atlas, l.baseDir, l.tileW, l.tileH)
}

// collect resolves images for a batch, dropping keys whose pixels cannot be
// found. Returned slices are parallel: keys[i] describes raw[i]/scaled[i].
func (l *spriteLoader) collect(keys []string, scale int) (valid []string, raw, scaled []*image.RGBA) {
	for _, key := range keys {
		img := l.image(key)
		if img == nil {
			l.logger.Warn("could not load sprite image", logging.String("sprite", key))
			continue
		}
		valid = append(valid, key)
		raw = append(raw, img)
		scaled = append(scaled, sheet.Upscale(img, scale))
	}
	return valid, raw, scaled
}

// writeBatchArtifacts renders the contact sheet and the text grid into the
// scratch directory under the names the prompt references.
func writeBatchArtifacts(dir, gridName string, keys []string, raw, scaled []*image.RGBA, cols int) error {
	if cols > len(scaled) {
		cols = len(scaled)
	}
	grid, err := sheet.ComposeGrid(scaled, cols)
	if err != nil {
		return err
	}
	if err := sheet.SavePNG(grid, filepath.Join(dir, gridName)); err != nil {
		return err
	}
	text := sheet.BatchText(keys, raw, sheet.DefaultAlphaThreshold)
	if err := os.WriteFile(filepath.Join(dir, oracle.GridTextName), []byte(text), 0o644); err != nil {
		return fmt.Errorf("write batch text: %w", err)
	}
	return nil
}

func previewKeys(keys []string) string {
	const show = 3
	preview := ""
	for i, key := range keys {
		if i >= show {
			preview += fmt.Sprintf(", ... +%d more", len(keys)-show)
			break
		}
		if i > 0 {
			preview += ", "
		}
		preview += filepath.Base(catalog.SpellKey(key))
	}
	return preview
}
