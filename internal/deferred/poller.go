// Package deferred turns the service's deferred-response protocol into a
// blocking wait. A solution attempt returns a message id immediately; the
// evaluation result is only available by polling a status route until it
// reports success.
package deferred

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/thruflo/nodewars/internal/api"
	"github.com/thruflo/nodewars/internal/logging"
)

// DefaultInterval is the pause between status requests. The service throttles
// aggressive clients, so keep it well above a few hundred milliseconds.
const DefaultInterval = 700 * time.Millisecond

// Poller waits for deferred results.
type Poller struct {
	transport api.Transport
	interval  time.Duration
	maxWait   time.Duration
	log       *logging.Logger
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the pause between polls. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithMaxWait bounds the total wait. Zero, the default, waits until the
// result arrives, the context ends, or the transport fails.
func WithMaxWait(d time.Duration) Option {
	return func(p *Poller) {
		p.maxWait = d
	}
}

// WithLogger sets the logger used to trace polls.
func WithLogger(l *logging.Logger) Option {
	return func(p *Poller) {
		p.log = l
	}
}

// New creates a Poller issuing status requests through transport.
func New(transport api.Transport, opts ...Option) *Poller {
	p := &Poller{
		transport: transport,
		interval:  DefaultInterval,
		log:       logging.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With("component", "poller")
	return p
}

// Interval returns the configured poll interval.
func (p *Poller) Interval() time.Duration {
	return p.interval
}

// Await polls the status route for dmid until a response reports success and
// returns that response. The first request is sent immediately. Responses
// with success=false are discarded. A transport or decode error aborts the
// wait at once. The ticker is stopped before Await returns.
func (p *Poller) Await(ctx context.Context, dmid string) (*api.EvaluationResult, error) {
	if p.maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.maxWait)
		defer cancel()
	}

	route := api.DeferredRoute(dmid)
	log := p.log.With("dmid", dmid)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		data, err := p.transport.Do(ctx, http.MethodGet, route)
		if err != nil {
			return nil, err
		}

		result, err := api.DecodeEvaluationResult(data)
		if err != nil {
			return nil, err
		}
		if result.Success {
			log.Debug("deferred result ready", "attempts", attempt, "valid", result.Valid)
			return result, nil
		}
		log.Debug("deferred result pending", "attempt", attempt)

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("waiting for deferred result %s: %w", dmid, ctx.Err())
		case <-ticker.C:
		}
	}
}
