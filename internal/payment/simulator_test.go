package payment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedOutcome struct {
	success bool
}

func (f fixedOutcome) Succeeds() bool { return f.success }

// blockingOutcome lets a test hold a charge in the processing state.
type blockingOutcome struct {
	release chan struct{}
	once    sync.Once
}

func newBlockingOutcome() *blockingOutcome {
	return &blockingOutcome{release: make(chan struct{})}
}

func (b *blockingOutcome) Succeeds() bool {
	<-b.release
	return true
}

func (b *blockingOutcome) unblock() {
	b.once.Do(func() { close(b.release) })
}

func TestCharge_Success(t *testing.T) {
	sut := NewSimulatorWithDelay(fixedOutcome{success: true}, time.Millisecond)

	err := sut.Charge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, sut.Status())
}

func TestCharge_Declined(t *testing.T) {
	sut := NewSimulatorWithDelay(fixedOutcome{success: false}, time.Millisecond)

	err := sut.Charge(context.Background())
	require.ErrorIs(t, err, ErrChargeDeclined)
	assert.Equal(t, StatusError, sut.Status())
}

func TestCharge_RetryAllowedAfterDecline(t *testing.T) {
	outcome := &switchableOutcome{success: false}
	sut := NewSimulatorWithDelay(outcome, time.Millisecond)

	require.ErrorIs(t, sut.Charge(context.Background()), ErrChargeDeclined)

	outcome.set(true)
	require.NoError(t, sut.Charge(context.Background()))
	assert.Equal(t, StatusSuccess, sut.Status())
}

func TestCharge_ReentrantAttemptRejected(t *testing.T) {
	outcome := newBlockingOutcome()
	sut := NewSimulatorWithDelay(outcome, time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- sut.Charge(context.Background())
	}()

	require.Eventually(t, func() bool {
		return sut.Status() == StatusProcessing
	}, time.Second, time.Millisecond, "charge did not enter processing")

	err := sut.Charge(context.Background())
	require.ErrorIs(t, err, ErrChargeInFlight)

	outcome.unblock()
	require.NoError(t, <-done)
	assert.Equal(t, StatusSuccess, sut.Status())
}

func TestCharge_ContextCancelledDuringDelay(t *testing.T) {
	sut := NewSimulatorWithDelay(fixedOutcome{success: true}, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	err := sut.Charge(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusError, sut.Status())
}

type switchableOutcome struct {
	mu      sync.Mutex
	success bool
}

func (s *switchableOutcome) Succeeds() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.success
}

func (s *switchableOutcome) set(success bool) {
	s.mu.Lock()
	s.success = success
	s.mu.Unlock()
}
