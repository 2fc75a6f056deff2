package observe

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderKeepsOrder(t *testing.T) {
	rec := &Recorder{}
	ctx := context.Background()
	for _, stage := range []string{"decode", "upscale", "denoise"} {
		Start(ctx, rec, stage)(stage + " done")
	}

	got := rec.Stages()
	want := []string{"decode", "upscale", "denoise"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected stage %s at %d, got %s", want[i], i, got[i])
		}
	}
}

func TestNilSinkIsSafe(t *testing.T) {
	Emit(context.Background(), nil, Event{Stage: "decode"})
	var m *Metrics
	m.Emit(context.Background(), Event{Stage: "decode"})
	m.Verdict("pass")
	m.Issue("check_digit_mismatch", "error")
}

func TestMultiAndLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rec := &Recorder{}

	sink := Multi(NewLogSink(logger), nil, rec)
	sink.Emit(context.Background(), Event{
		Stage:   "threshold",
		Summary: "Binarised variants",
		Elapsed: 3 * time.Millisecond,
		Attrs:   []slog.Attr{slog.Int("variants", 5)},
	})

	if len(rec.Events()) != 1 {
		t.Fatalf("Expected recorder to receive the event")
	}
	out := buf.String()
	for _, want := range []string{"Binarised variants", "stage=threshold", "variants=5"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected log output to contain %q, got %s", want, out)
		}
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.Verdict("pass")
	m.Verdict("pass")
	m.Verdict("fail")
	m.Issue("check_digit_mismatch", "error")
	m.Emit(context.Background(), Event{Stage: "ocr", Elapsed: time.Second})

	if got := testutil.ToFloat64(m.documents.WithLabelValues("pass")); got != 2 {
		t.Errorf("Expected 2 passes, got %v", got)
	}
	if got := testutil.ToFloat64(m.issues.WithLabelValues("check_digit_mismatch", "error")); got != 1 {
		t.Errorf("Expected 1 issue, got %v", got)
	}
	if n := testutil.CollectAndCount(m.stageDuration); n != 1 {
		t.Errorf("Expected one stage series, got %d", n)
	}
}
