package logging_test

import (
	"context"
	"log/slog"
	"testing"

	"mimic/internal/logging"
	"mimic/internal/services"
)

func TestContextFields(t *testing.T) {
	ctx := context.Background()
	if fields := logging.ContextFields(ctx); len(fields) != 0 {
		t.Fatalf("bare context should yield no fields, got %v", fields)
	}

	ctx = services.WithJobID(ctx, "job-9")
	ctx = services.WithStage(ctx, "reenactment")

	fields := logging.ContextFields(ctx)
	if len(fields) != 2 {
		t.Fatalf("expected 2 fields, got %v", fields)
	}
	byKey := make(map[string]slog.Attr, len(fields))
	for _, attr := range fields {
		byKey[attr.Key] = attr
	}
	if got := byKey[logging.FieldJobID].Value.String(); got != "job-9" {
		t.Fatalf("job id field = %q", got)
	}
	if got := byKey[logging.FieldStage].Value.String(); got != "reenactment" {
		t.Fatalf("stage field = %q", got)
	}
}

func TestWithContextHandlesNilLogger(t *testing.T) {
	ctx := services.WithStage(context.Background(), "voice conversion")
	if logger := logging.WithContext(ctx, nil); logger == nil {
		t.Fatal("expected a usable logger")
	}
	if logger := logging.WithContext(context.Background(), nil); logger == nil {
		t.Fatal("expected a usable logger for a bare context")
	}
}
