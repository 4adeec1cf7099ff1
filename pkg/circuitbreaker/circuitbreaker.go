// Package circuitbreaker guards calls to flaky downstreams. After a
// run of consecutive failures the breaker opens and rejects calls
// outright; once the cooldown passes a single probe call is let
// through, closing the breaker on success.
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpen is returned when the breaker rejects a call without
// attempting it.
var ErrOpen = errors.New("circuit breaker is open")

type state int

const (
	stateClosed state = iota
	stateOpen
	stateHalfOpen
)

type Settings struct {
	Name string
	// FailureThreshold is the consecutive failure count that opens
	// the breaker.
	FailureThreshold int
	// Interval resets the failure count when no failure occurs for
	// this long. Zero disables the reset.
	Interval time.Duration
	// Cooldown is how long the breaker stays open before allowing a
	// probe call.
	Cooldown time.Duration
}

type CircuitBreaker struct {
	name      string
	threshold int
	interval  time.Duration
	cooldown  time.Duration

	mu          sync.Mutex
	state       state
	failures    int
	lastFailure time.Time
}

func NewCircuitBreaker(settings Settings) *CircuitBreaker {
	return &CircuitBreaker{
		name:      settings.Name,
		threshold: settings.FailureThreshold,
		interval:  settings.Interval,
		cooldown:  settings.Cooldown,
		state:     stateClosed,
	}
}

// Execute runs fn unless the breaker is open. The error from fn is
// passed through; a rejected call returns ErrOpen.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}

	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case stateOpen:
		if time.Since(cb.lastFailure) < cb.cooldown {
			return ErrOpen
		}
		cb.state = stateHalfOpen
	case stateClosed:
		if cb.interval > 0 && cb.failures > 0 && time.Since(cb.lastFailure) > cb.interval {
			cb.failures = 0
		}
	}
	return nil
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.lastFailure = time.Now()
		if cb.state == stateHalfOpen || cb.failures >= cb.threshold {
			cb.state = stateOpen
		}
		return
	}

	cb.state = stateClosed
	cb.failures = 0
}
