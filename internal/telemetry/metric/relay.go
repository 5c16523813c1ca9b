package metric

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// ErrRelayEmpty is returned by Export when no batch is buffered.
var ErrRelayEmpty = errors.New("no data in HistogramRelay to scrape")

// HistogramRelay buffers gathered metric batches until they are scraped.
type HistogramRelay struct {
	mu      sync.RWMutex
	batches [][]*dto.MetricFamily
	logger  *slog.Logger
}

// NewHistogramRelay creates an empty relay.
func NewHistogramRelay(logger *slog.Logger) *HistogramRelay {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistogramRelay{logger: logger.With("component", "histogram_relay")}
}

// Submit appends a batch. Empty batches are still queued so that a scrape
// observes the pump interval.
func (r *HistogramRelay) Submit(families []*dto.MetricFamily) {
	r.mu.Lock()
	r.batches = append(r.batches, families)
	r.mu.Unlock()
}

// Len reports the number of buffered batches.
func (r *HistogramRelay) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.batches)
}

// Export pops the oldest batch and renders its histograms in the text
// exposition format.
func (r *HistogramRelay) Export() (string, error) {
	r.mu.Lock()
	if len(r.batches) == 0 {
		r.mu.Unlock()
		r.logger.Warn("no data in HistogramRelay buffer, this may be ok")
		return "", ErrRelayEmpty
	}
	data := r.batches[0]
	r.batches[0] = nil
	r.batches = r.batches[1:]
	r.mu.Unlock()

	var sb strings.Builder
	for _, mf := range extractHistograms(data) {
		if _, err := expfmt.MetricFamilyToText(&sb, mf); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// extractHistograms keeps labels, histogram and timestamp of every metric.
// Families of other types are dropped.
func extractHistograms(data []*dto.MetricFamily) []*dto.MetricFamily {
	out := make([]*dto.MetricFamily, 0, len(data))
	for _, mf := range data {
		if mf.GetType() != dto.MetricType_HISTOGRAM {
			continue
		}
		metrics := make([]*dto.Metric, 0, len(mf.GetMetric()))
		for _, m := range mf.GetMetric() {
			if m.GetHistogram() == nil {
				continue
			}
			v := &dto.Metric{
				Histogram: proto.Clone(m.GetHistogram()).(*dto.Histogram),
			}
			for _, lp := range m.GetLabel() {
				v.Label = append(v.Label, proto.Clone(lp).(*dto.LabelPair))
			}
			if m.TimestampMs != nil {
				v.TimestampMs = proto.Int64(m.GetTimestampMs())
			}
			metrics = append(metrics, v)
		}
		out = append(out, &dto.MetricFamily{
			Name:   proto.String(mf.GetName()),
			Help:   proto.String(mf.GetHelp()),
			Type:   dto.MetricType_HISTOGRAM.Enum(),
			Metric: metrics,
		})
	}
	return out
}
