package resilience

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/LavishGent/tiercache/internal/config"
)

// Executor is what the remote tier runs its calls through.
type Executor interface {
	Execute(ctx context.Context, fn func(context.Context) error) error
	CircuitState() State
	SetOnCircuitStateChange(fn func(from, to State))
	Stats() PolicyStats
}

// PolicyStats reports the state of both guards.
type PolicyStats struct {
	Bulkhead       BulkheadStats       `json:"bulkhead"`
	CircuitBreaker CircuitBreakerStats `json:"circuitBreaker"`
	CircuitState   string              `json:"circuitState"`
}

// Policy runs remote calls through a bulkhead and then a circuit breaker.
// Either guard may be nil when disabled in configuration.
type Policy struct {
	circuitBreaker *CircuitBreaker
	bulkhead       *Bulkhead
}

// PolicyOption customizes a Policy.
type PolicyOption func(*policyOptions)

type policyOptions struct {
	clock clockwork.Clock
	name  string
}

// WithClock sets the clock the circuit breaker measures OpenDuration with.
func WithClock(clock clockwork.Clock) PolicyOption {
	return func(o *policyOptions) { o.clock = clock }
}

// WithName names the guarded dependency.
func WithName(name string) PolicyOption {
	return func(o *policyOptions) { o.name = name }
}

// NewPolicy builds the guards enabled in cfg. With neither enabled it
// returns a DisabledPolicy.
func NewPolicy(cfg *config.Config, opts ...PolicyOption) Executor {
	o := policyOptions{name: "redis"}
	for _, opt := range opts {
		opt(&o)
	}

	if !cfg.CircuitBreaker.Enabled && !cfg.Bulkhead.Enabled {
		return NewDisabledPolicy()
	}

	p := &Policy{}
	if cfg.CircuitBreaker.Enabled {
		p.circuitBreaker = NewCircuitBreaker(o.name, cfg.CircuitBreaker, o.clock)
	}
	if cfg.Bulkhead.Enabled {
		p.bulkhead = NewBulkhead(cfg.Bulkhead)
	}
	return p
}

// Execute runs fn inside the bulkhead, then through the circuit breaker, so
// a caller waiting for a slot never consumes a half-open probe.
func (p *Policy) Execute(ctx context.Context, fn func(context.Context) error) error {
	guarded := func(ctx context.Context) error {
		if p.circuitBreaker == nil {
			return fn(ctx)
		}
		return p.circuitBreaker.Execute(func() error { return fn(ctx) })
	}

	if p.bulkhead == nil {
		return guarded(ctx)
	}
	return p.bulkhead.Execute(ctx, guarded)
}

// CircuitBreaker returns the breaker, or nil if disabled.
func (p *Policy) CircuitBreaker() *CircuitBreaker {
	return p.circuitBreaker
}

// CircuitState returns the breaker state; closed when disabled.
func (p *Policy) CircuitState() State {
	if p.circuitBreaker == nil {
		return StateClosed
	}
	return p.circuitBreaker.State()
}

// SetOnCircuitStateChange sets a callback for circuit state changes.
func (p *Policy) SetOnCircuitStateChange(fn func(from, to State)) {
	if p.circuitBreaker != nil {
		p.circuitBreaker.SetOnStateChange(fn)
	}
}

// Stats returns a snapshot of both guards.
func (p *Policy) Stats() PolicyStats {
	s := PolicyStats{CircuitState: p.CircuitState().String()}
	if p.circuitBreaker != nil {
		s.CircuitBreaker = p.circuitBreaker.Stats()
	}
	if p.bulkhead != nil {
		s.Bulkhead = p.bulkhead.Stats()
	}
	return s
}

// DisabledPolicy runs every call directly.
type DisabledPolicy struct{}

// NewDisabledPolicy creates a disabled policy.
func NewDisabledPolicy() *DisabledPolicy {
	return &DisabledPolicy{}
}

func (p *DisabledPolicy) Execute(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

func (p *DisabledPolicy) CircuitState() State { return StateClosed }

func (p *DisabledPolicy) SetOnCircuitStateChange(func(from, to State)) {}

func (p *DisabledPolicy) Stats() PolicyStats {
	return PolicyStats{CircuitState: StateClosed.String()}
}
