package metric

import (
	"context"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// DefaultRelayInterval is how often the pump gathers the node registry.
const DefaultRelayInterval = 15 * time.Second

// Pump moves histogram families from a gatherer into a HistogramRelay.
type Pump struct {
	gatherer prometheus.Gatherer
	relay    *HistogramRelay
	interval time.Duration
	clock    clock.Clock
	logger   *slog.Logger
}

// NewPump creates a pump. A non-positive interval selects
// DefaultRelayInterval; a nil clock selects the wall clock.
func NewPump(g prometheus.Gatherer, relay *HistogramRelay, interval time.Duration, clk clock.Clock, logger *slog.Logger) *Pump {
	if interval <= 0 {
		interval = DefaultRelayInterval
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pump{
		gatherer: g,
		relay:    relay,
		interval: interval,
		clock:    clk,
		logger:   logger.With("component", "relay_pump"),
	}
}

// Run gathers once immediately, then on every tick until ctx is done.
func (p *Pump) Run(ctx context.Context) error {
	p.Tick()

	ticker := p.clock.Ticker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Tick()
		}
	}
}

// Tick performs a single gather and submit.
func (p *Pump) Tick() {
	families, err := p.gatherer.Gather()
	if err != nil {
		// Gather returns whatever it could collect alongside the error.
		p.logger.Warn("gather failed", "error", err)
	}

	histograms := make([]*dto.MetricFamily, 0, len(families))
	for _, mf := range families {
		if mf.GetType() == dto.MetricType_HISTOGRAM {
			histograms = append(histograms, mf)
		}
	}
	p.relay.Submit(histograms)
	p.logger.Debug("submitted histogram batch", "families", len(histograms))
}
