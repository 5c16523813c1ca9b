package metric

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"google.golang.org/protobuf/proto"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func gatherHistograms(t *testing.T, observations ...float64) []*dto.MetricFamily {
	t.Helper()
	reg := prometheus.NewRegistry()
	h := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "wait_seconds",
		Help:      "test histogram",
		Buckets:   []float64{0.1, 1},
	}, []string{"role"})
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "events_total",
		Help:      "test counter",
	})
	reg.MustRegister(h, c)
	for _, v := range observations {
		h.WithLabelValues("worker_to_worker").Observe(v)
	}
	c.Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	return families
}

func TestHistogramRelay_ExportEmpty(t *testing.T) {
	r := NewHistogramRelay(discardLogger())

	_, err := r.Export()
	if !errors.Is(err, ErrRelayEmpty) {
		t.Fatalf("Export() error = %v, want ErrRelayEmpty", err)
	}
}

func TestHistogramRelay_ExportHistogramsOnly(t *testing.T) {
	r := NewHistogramRelay(discardLogger())
	r.Submit(gatherHistograms(t, 0.05, 0.5))

	out, err := r.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	wants := []string{
		"# TYPE validator_wait_seconds histogram",
		`validator_wait_seconds_bucket{role="worker_to_worker",le="0.1"} 1`,
		`validator_wait_seconds_bucket{role="worker_to_worker",le="1"} 2`,
		`validator_wait_seconds_count{role="worker_to_worker"} 2`,
	}
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Errorf("Export() missing %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "validator_events_total") {
		t.Errorf("Export() should drop counters, got:\n%s", out)
	}
}

func TestHistogramRelay_FIFO(t *testing.T) {
	r := NewHistogramRelay(discardLogger())
	r.Submit(gatherHistograms(t, 0.05))
	r.Submit(gatherHistograms(t, 0.05, 0.05, 0.05))

	if r.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", r.Len())
	}

	first, err := r.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(first, `validator_wait_seconds_count{role="worker_to_worker"} 1`) {
		t.Errorf("first export should be the oldest batch, got:\n%s", first)
	}

	second, err := r.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.Contains(second, `validator_wait_seconds_count{role="worker_to_worker"} 3`) {
		t.Errorf("second export should be the newer batch, got:\n%s", second)
	}

	if _, err := r.Export(); !errors.Is(err, ErrRelayEmpty) {
		t.Errorf("third Export() error = %v, want ErrRelayEmpty", err)
	}
}

func TestHistogramRelay_ExportDoesNotAliasInput(t *testing.T) {
	families := gatherHistograms(t, 0.5)
	before := proto.Clone(families[len(families)-1]).(*dto.MetricFamily)

	extracted := extractHistograms(families)
	extracted[0].Metric[0].Histogram.SampleCount = proto.Uint64(99)

	after := families[len(families)-1]
	if !proto.Equal(before, after) {
		t.Error("extractHistograms modified its input")
	}
}

func TestHistogramRelay_ConcurrentSubmitExport(t *testing.T) {
	r := NewHistogramRelay(discardLogger())
	batch := gatherHistograms(t, 0.5)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Submit(batch)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, _ = r.Export()
			}
		}()
	}
	wg.Wait()

	if r.Len() < 0 || r.Len() > 400 {
		t.Errorf("Len() = %d out of range", r.Len())
	}
}
