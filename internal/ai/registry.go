package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

type ProviderFactory func(ctx context.Context, model string) (Provider, error)

// BreakerConfig controls the per-provider circuit breaker. A zero
// FailureThreshold disables it.
type BreakerConfig struct {
	FailureThreshold uint32
	OpenTimeout      time.Duration
	OnStateChange    func(provider, from, to string)
}

type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
	breakers  map[string]*gobreaker.CircuitBreaker[string]
	breaker   BreakerConfig
}

func NewRegistry() *Registry {
	return NewRegistryWithBreaker(BreakerConfig{})
}

func NewRegistryWithBreaker(cfg BreakerConfig) *Registry {
	return &Registry{
		factories: make(map[string]ProviderFactory),
		breakers:  make(map[string]*gobreaker.CircuitBreaker[string]),
		breaker:   cfg,
	}
}

func (r *Registry) Register(name string, f ProviderFactory) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
	if r.breaker.FailureThreshold > 0 {
		r.breakers[name] = r.newBreaker(name)
	}
}

func (r *Registry) Get(ctx context.Context, name string, model string) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	f, ok := r.factories[name]
	cb := r.breakers[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown ai provider: %s", name)
	}
	p, err := f(ctx, model)
	if err != nil {
		return nil, err
	}
	if cb == nil {
		return p, nil
	}
	return &guardedProvider{inner: p, cb: cb}, nil
}

// BreakerState reports "closed", "half-open" or "open"; "" when no breaker exists.
func (r *Registry) BreakerState(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cb := r.breakers[strings.ToLower(strings.TrimSpace(name))]
	if cb == nil {
		return ""
	}
	return cb.State().String()
}

func (r *Registry) newBreaker(name string) *gobreaker.CircuitBreaker[string] {
	cfg := r.breaker
	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// A caller hanging up says nothing about the provider's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, from.String(), to.String())
			}
		},
	})
}

// guardedProvider short-circuits calls while the provider's breaker is open,
// so a dead upstream fails fast instead of waiting out its timeout.
type guardedProvider struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker[string]
}

func (g *guardedProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	return g.cb.Execute(func() (string, error) {
		return g.inner.Chat(ctx, messages)
	})
}
