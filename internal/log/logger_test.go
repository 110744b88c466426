package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentReceipt, Format: "json", Output: &buf})

	logger.Info("Receipt generated", NewFields().WithFee("Physics", 2024, 5, "120.00").ToSlice()...)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry[FieldComponent] != ComponentReceipt {
		t.Fatalf("component = %v, want %q", entry[FieldComponent], ComponentReceipt)
	}
	if entry[FieldDepartment] != "Physics" {
		t.Fatalf("department = %v", entry[FieldDepartment])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: ParseLevel("warn"), Component: ComponentApp, Output: &buf})
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentApp, Format: "json", Output: &buf})
	ctx := WithContext(context.Background(), logger.With(FieldSession, "may"))

	FromContext(ctx).WithComponent(ComponentWorker).InfoContext(ctx, "Session exported")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("decode log line %q: %v", buf.String(), err)
	}
	if entry[FieldComponent] != ComponentWorker {
		t.Fatalf("component = %v, want %q", entry[FieldComponent], ComponentWorker)
	}
	if entry[FieldSession] != "may" {
		t.Fatalf("session = %v, want may", entry[FieldSession])
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext returned nil without a stored logger")
	}
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentStorage).
		WithOperation(OpSave).
		WithSession("may").
		WithRows(3, 0).
		WithError(errors.New("boom")).
		WithError(nil)

	if f[FieldError] != "boom" || f[FieldSession] != "may" || f[FieldRows] != 3 {
		t.Fatalf("unexpected fields: %v", f)
	}
	if _, ok := f[FieldSkipped]; ok {
		t.Fatalf("zero skipped count should be omitted")
	}
	if len(f.ToSlice()) != 2*len(f) {
		t.Fatalf("ToSlice length mismatch")
	}
}
