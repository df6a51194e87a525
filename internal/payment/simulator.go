package payment

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"
)

// Status is the charge guard state. While a charge is processing,
// further attempts are rejected.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

var (
	// ErrChargeInFlight rejects re-entrant charges while one is
	// outstanding.
	ErrChargeInFlight = errors.New("a charge is already being processed")

	// ErrChargeDeclined is the recoverable simulated failure; the caller
	// may retry, cart and discount stay intact.
	ErrChargeDeclined = errors.New("payment declined")
)

// OutcomeSource decides whether an attempt succeeds. Swappable so tests
// can force outcomes.
type OutcomeSource interface {
	Succeeds() bool
}

// RandomOutcome approves roughly 80% of attempts. A UX simulation, not
// anything cryptographic.
type RandomOutcome struct{}

func (RandomOutcome) Succeeds() bool {
	return rand.Float64() < 0.8
}

const defaultDelay = 2 * time.Second

// Simulator models the external payment collaborator: a fixed delay
// then success or failure. A single attempt may be in flight at a time.
type Simulator struct {
	delay   time.Duration
	outcome OutcomeSource

	mu     sync.Mutex
	status Status
}

func NewSimulator(outcome OutcomeSource) *Simulator {
	return &Simulator{
		delay:   defaultDelay,
		outcome: outcome,
		status:  StatusIdle,
	}
}

// NewSimulatorWithDelay exists for tests and local runs that cannot
// afford the production delay.
func NewSimulatorWithDelay(outcome OutcomeSource, delay time.Duration) *Simulator {
	s := NewSimulator(outcome)
	s.delay = delay
	return s
}

// Charge runs one payment attempt: waits the fixed delay, then resolves
// to success or ErrChargeDeclined. A second call while one is
// processing returns ErrChargeInFlight. The delay itself is not
// cancellable by the wizard; ctx is honored for process shutdown only.
func (s *Simulator) Charge(ctx context.Context) error {
	s.mu.Lock()
	if s.status == StatusProcessing {
		s.mu.Unlock()
		return ErrChargeInFlight
	}
	s.status = StatusProcessing
	s.mu.Unlock()

	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		s.setStatus(StatusError)
		return ctx.Err()
	}

	if !s.outcome.Succeeds() {
		s.setStatus(StatusError)
		return ErrChargeDeclined
	}

	s.setStatus(StatusSuccess)
	return nil
}

func (s *Simulator) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Simulator) setStatus(status Status) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}
