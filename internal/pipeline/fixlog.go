package pipeline

import (
	"fmt"
	"os"
	"strings"
)

// fixLog is the append-only audit file for verify runs. Every applied fix is
// written with its before/after values so a bad oracle pass can be reviewed
// and reverted by hand.
type fixLog struct {
	f *os.File
}

func openFixLog(path, atlasName string) (*fixLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open fix log %s: %w", path, err)
	}
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(f, "\n%s\nVerify run: %s\n%s\n\n", rule, atlasName, rule)
	return &fixLog{f: f}, nil
}

func (l *fixLog) field(name, before, after string) {
	fmt.Fprintf(l.f, "  %s:\n    BEFORE: %s\n    AFTER:  %s\n", name, before, after)
}

// Fix records one sprite's changes.
func (l *fixLog) Fix(key string, fields func(record func(name, before, after string))) {
	fmt.Fprintf(l.f, "FIX: %s\n", key)
	fields(l.field)
	fmt.Fprintln(l.f)
	l.f.Sync()
}

// ParseFailure dumps the raw response head for a batch whose retries were
// exhausted, keeping enough context to diagnose offline.
func (l *fixLog) ParseFailure(batchNum int, keys []string, detail string) {
	rule := strings.Repeat("!", 60)
	fmt.Fprintf(l.f, "\n%s\nPARSE_FAILURE batch %d (%d sprites)\nSprites: %s\n%s\n%s\n%s\n\n",
		rule, batchNum, len(keys), strings.Join(keys, ", "), rule, detail, rule)
	l.f.Sync()
}

func (l *fixLog) Close(totalFixes int) error {
	fmt.Fprintf(l.f, "Total fixes: %d\n", totalFixes)
	return l.f.Close()
}
