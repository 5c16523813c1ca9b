package network

import (
	"context"
	"time"

	"github.com/yndnr/validator-node/internal/core/domain"
)

// GetWorkerToPrimaryHandler resolves the primary's handler, waiting for it
// to be registered if necessary.
func (c *NetworkClient) GetWorkerToPrimaryHandler(ctx context.Context) (WorkerToPrimary, error) {
	var h WorkerToPrimary
	err := c.discover(ctx, roleWorkerToPrimary, c.primary, func(r *registry) bool {
		h = r.workerToPrimary
		return h != nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// GetPrimaryToWorkerHandler resolves the handler the given worker serves to
// its primary, waiting for it to be registered if necessary.
func (c *NetworkClient) GetPrimaryToWorkerHandler(ctx context.Context, worker domain.Identity) (PrimaryToWorker, error) {
	var h PrimaryToWorker
	err := c.discover(ctx, rolePrimaryToWorker, worker, func(r *registry) bool {
		var ok bool
		h, ok = r.primaryToWorker[worker]
		return ok
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// GetWorkerToWorkerHandler resolves the handler the given worker serves to
// its sibling workers, waiting for it to be registered if necessary.
func (c *NetworkClient) GetWorkerToWorkerHandler(ctx context.Context, worker domain.Identity) (WorkerToWorker, error) {
	var h WorkerToWorker
	err := c.discover(ctx, roleWorkerToWorker, worker, func(r *registry) bool {
		var ok bool
		h, ok = r.workerToWorker[worker]
		return ok
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// probeResult is the outcome of one locked registry check.
type probeResult int

const (
	probeMissing probeResult = iota
	probeFound
	probeShutdown
)

// probe runs one point-in-time check under the read lock. It also returns
// the change channel current at the time of the check.
func (c *NetworkClient) probe(lookup func(*registry) bool) (probeResult, <-chan struct{}) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.reg.shutdown {
		return probeShutdown, nil
	}
	if lookup(&c.reg) {
		return probeFound, nil
	}
	return probeMissing, c.reg.changed
}

// discover runs the bounded discovery protocol: up to MaxAttempts checks,
// each followed by a RetryInterval wait when it misses, so a lookup that
// never succeeds returns after MaxAttempts*RetryInterval. A registration or shutdown while waiting triggers an
// extra check that does not count as an attempt. The lock is never held
// while waiting.
func (c *NetworkClient) discover(ctx context.Context, r role, id domain.Identity, lookup func(*registry) bool) error {
	clk := c.cfg.Clock
	start := clk.Now()

	// settle turns a terminal probe result into the lookup's return value.
	settle := func(res probeResult) (bool, error) {
		switch res {
		case probeShutdown:
			c.cfg.Metrics.observeLookup(r, outcomeShuttingDown, clk.Since(start))
			return true, domain.ErrShuttingDown
		case probeFound:
			c.cfg.Metrics.observeLookup(r, outcomeFound, clk.Since(start))
			return true, nil
		default:
			return false, nil
		}
	}

	for attempt := 1; ; attempt++ {
		res, changed := c.probe(lookup)
		if done, err := settle(res); done {
			return err
		}

		c.waitLog.Do(func() {
			c.logger.Debug("local handler not registered yet, waiting",
				"role", r.String(),
				"identity", id.ShortString(),
				"attempt", attempt,
				"max_attempts", c.cfg.MaxAttempts)
		})

		timer := clk.Timer(c.cfg.RetryInterval)
	wait:
		for {
			select {
			case <-ctx.Done():
				timer.Stop()
				c.cfg.Metrics.observeLookup(r, outcomeCanceled, clk.Since(start))
				return ctx.Err()
			case <-timer.C:
				break wait
			case <-changed:
				res, changed = c.probe(lookup)
				if done, err := settle(res); done {
					timer.Stop()
					return err
				}
			}
		}
		if attempt >= c.cfg.MaxAttempts {
			break
		}
	}

	c.cfg.Metrics.observeLookup(r, outcomeNotStarted, clk.Since(start))
	c.logger.Warn("local handler not registered within discovery budget",
		"role", r.String(),
		"identity", id.ShortString(),
		"attempts", c.cfg.MaxAttempts,
		"waited", clk.Since(start).Round(time.Millisecond))

	if r == roleWorkerToPrimary {
		return domain.NewPrimaryNotStarted(id)
	}
	return domain.NewWorkerNotStarted(id)
}
