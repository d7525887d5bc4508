package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finviz/internal/core"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{"debug": slog.LevelDebug, "INFO": slog.LevelInfo, "": slog.LevelInfo, "warn": slog.LevelWarn, "error": slog.LevelError}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("%q: expected %v, got %v (%v)", in, want, got, err)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestLoggerTagsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Format: "json", Component: ComponentEngine, Output: &buf})
	l.WithComponent(ComponentView).Info("hello", "k", 1)

	line := strings.TrimSpace(buf.String())
	if strings.Count(line, `"component"`) != 1 {
		t.Fatalf("component must appear once: %s", line)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("json handler output: %v", err)
	}
	if m["component"] != ComponentView || m["k"] != float64(1) {
		t.Fatalf("unexpected record %v", m)
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentHTTP).
		WithDataset("id-1", "a.csv", 3).
		WithFilter(core.FilterState{TimeRange: core.RangeWeek, Category: "Food"}).
		WithError(errors.New("boom"))

	if c, ok := f.Component(); !ok || c != ComponentHTTP {
		t.Fatalf("component not stored")
	}
	s := f.ToSlice()
	if len(s) != 2*6 {
		t.Fatalf("expected 6 pairs without component, got %v", s)
	}
	if s[0] != FieldCategory {
		t.Fatalf("fields must be sorted by key, got %v", s[0])
	}
}

func TestMiddlewareAndFromContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Format: "text", Output: &buf})

	h := Middleware(base)(RequestIDMiddleware(func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Fatalf("request id missing: %s", buf.String())
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatal("fallback logger expected")
	}
}
