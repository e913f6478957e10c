package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/satishgoda/watchtower/internal/logging"
)

func TestRecorderFiltersByLevel(t *testing.T) {
	recorder := logging.NewRecorder(slog.LevelWarn, 0)
	logger := slog.New(recorder)

	logger.Info("ignored")
	logger.Warn("kept")
	logger.Error("also kept")

	entries := recorder.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Level != "WARN" || entries[1].Level != "ERROR" {
		t.Fatalf("unexpected levels: %s %s", entries[0].Level, entries[1].Level)
	}
}

func TestRecorderSharesStorageAcrossDerivedHandlers(t *testing.T) {
	recorder := logging.NewRecorder(slog.LevelInfo, 0)
	logger := slog.New(recorder).With(logging.String(logging.FieldStage, "casting"))
	logger.WithGroup("fetch").Info("done", logging.Int("count", 3))

	entries := recorder.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].Stage != "casting" {
		t.Fatalf("expected stage from With attrs, got %q", entries[0].Stage)
	}
	if entries[0].Fields["fetch.count"] != "3" {
		t.Fatalf("expected grouped field, got %#v", entries[0].Fields)
	}
}

func TestRecorderDropsOldestBeyondLimit(t *testing.T) {
	recorder := logging.NewRecorder(slog.LevelInfo, 2)
	logger := slog.New(recorder)
	logger.Info("one")
	logger.Info("two")
	logger.Info("three")

	entries := recorder.Entries()
	if len(entries) != 2 || entries[0].Message != "two" || entries[1].Message != "three" {
		t.Fatalf("unexpected entries: %#v", entries)
	}
}

func TestTeeLoggerWritesToAllHandlers(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, nil))
	recorder := logging.NewRecorder(slog.LevelWarn, 0)

	logger := logging.TeeLogger(base, recorder, nil)
	logger.Info("info only to base")
	logger.Warn("warn to both")

	if !strings.Contains(buf.String(), "info only to base") || !strings.Contains(buf.String(), "warn to both") {
		t.Fatalf("base handler missing output: %q", buf.String())
	}
	entries := recorder.Entries()
	if len(entries) != 1 || entries[0].Message != "warn to both" {
		t.Fatalf("unexpected recorder entries: %#v", entries)
	}
}

func TestTeeLoggerWithoutHandlersIsNoop(t *testing.T) {
	logger := logging.TeeLogger(nil)
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("expected noop logger")
	}
}
