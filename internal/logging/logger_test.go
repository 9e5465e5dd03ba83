package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestConsoleHandlerFoldsComponentIntoPrefix(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl)).With(String(FieldComponent, "enrich"))

	logger.Info("batch applied", Int("batch", 3), String("atlas", "urizen"))

	line := buf.String()
	if !strings.Contains(line, " enrich: batch applied") {
		t.Fatalf("expected component prefix, got %q", line)
	}
	if !strings.Contains(line, "batch=3") || !strings.Contains(line, "atlas=urizen") {
		t.Fatalf("expected attrs in output, got %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should not render as key=value: %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	handler := newConsoleHandler(&buf, lvl)

	record := slog.NewRecord(time.Now(), slog.LevelWarn, "skip", 0)
	record.AddAttrs(String("detail", "no valid images"))
	if err := handler.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if !strings.Contains(buf.String(), `detail="no valid images"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := parseLevel("nonsense"); got != slog.LevelInfo {
		t.Fatalf("unexpected level: %v", got)
	}
	if got := parseLevel("debug"); got != slog.LevelDebug {
		t.Fatalf("unexpected level: %v", got)
	}
}
