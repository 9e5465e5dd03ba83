// Package oracle invokes the external vision CLI that supplies sprite
// descriptions, tags, and tile types. Calls are isolated subprocesses with a
// hard deadline, retried a fixed number of times with no backoff between
// attempts; a batch whose retries are exhausted is the caller's problem to
// skip, never the run's to abort.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"atlastag/internal/logging"
)

// Config captures the runtime settings for the oracle CLI.
type Config struct {
	Binary        string
	Model         string
	Timeout       time.Duration
	VerifyTimeout time.Duration
	MaxAttempts   int
}

// Enrichment is one positional answer in an enrich response array.
type Enrichment struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	TileType    string   `json:"tile_type"`
}

// Fix is one entry in a verify response: a 1-indexed reference into the
// batch plus replacement fields. Sprites the oracle judged correct are
// simply absent.
type Fix struct {
	Index       int      `json:"index"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	TileType    string   `json:"tile_type"`
}

// Client drives the oracle binary.
type Client struct {
	cfg    Config
	exec   Executor
	logger *slog.Logger
}

// NewClient constructs a client. A nil executor gets the production
// subprocess executor; a nil logger is silenced.
func NewClient(cfg Config, exec Executor, logger *slog.Logger) *Client {
	if exec == nil {
		exec = NewCommandExecutor()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Client{cfg: cfg, exec: exec, logger: logger.With(logging.String(logging.FieldComponent, "oracle"))}
}

// Available verifies the oracle binary resolves on PATH. Called once before
// the first batch so a missing binary fails the run up front.
func (c *Client) Available() error {
	if err := c.exec.LookPath(c.cfg.Binary); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrUnavailable, c.cfg.Binary, err)
	}
	return nil
}

// EnrichBatch sends an enrichment prompt and returns the positional answer
// array. A malformed element becomes an empty entry so the positions of the
// elements after it stay aligned with the batch.
func (c *Client) EnrichBatch(ctx context.Context, prompt, dir string) ([]Enrichment, error) {
	items, err := c.run(ctx, prompt, dir, c.cfg.Timeout)
	if err != nil {
		return nil, err
	}
	results := make([]Enrichment, 0, len(items))
	for _, item := range items {
		var e Enrichment
		if err := json.Unmarshal(item, &e); err != nil {
			c.logger.Warn("dropping malformed answer element", logging.String("snippet", Snippet(string(item))))
			results = append(results, Enrichment{})
			continue
		}
		results = append(results, e)
	}
	return results, nil
}

// VerifyBatch sends a review prompt and returns the indexed fix list. An
// empty slice means the oracle judged the whole batch correct.
func (c *Client) VerifyBatch(ctx context.Context, prompt, dir string) ([]Fix, error) {
	timeout := c.cfg.VerifyTimeout
	if timeout <= 0 {
		timeout = c.cfg.Timeout
	}
	items, err := c.run(ctx, prompt, dir, timeout)
	if err != nil {
		return nil, err
	}
	fixes := make([]Fix, 0, len(items))
	for _, item := range items {
		var f Fix
		if err := json.Unmarshal(item, &f); err != nil || f.Index < 1 {
			continue
		}
		fixes = append(fixes, f)
	}
	return fixes, nil
}

// run performs the retry loop: each attempt is a fresh subprocess under its
// own deadline, and parse failures retry the same as transport failures.
func (c *Client) run(ctx context.Context, prompt, dir string, timeout time.Duration) ([]json.RawMessage, error) {
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if attempt > 1 {
			c.logger.Warn("retrying oracle call",
				logging.Int("attempt", attempt),
				logging.Int("max_attempts", c.cfg.MaxAttempts),
				logging.Error(lastErr))
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		items, err := c.runOnce(ctx, prompt, dir, timeout)
		if err == nil {
			return items, nil
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("oracle call failed after %d attempts: %w", c.cfg.MaxAttempts, lastErr)
}

func (c *Client) runOnce(ctx context.Context, prompt, dir string, timeout time.Duration) ([]json.RawMessage, error) {
	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	stdout, stderr, err := c.exec.Run(callCtx, dir, c.cfg.Binary,
		"-p", prompt,
		"--model", c.cfg.Model,
		"--output-format", "json",
		"--allowedTools", "Read",
	)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
			return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
		}
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return nil, context.Canceled
		}
		return nil, fmt.Errorf("%w: %v (stderr: %s)", ErrTransport, err, Snippet(string(stderr)))
	}

	text, err := EnvelopeText(stdout)
	if err != nil {
		return nil, err
	}
	return DecodeArray(text)
}
