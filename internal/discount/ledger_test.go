package discount

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-atelier/storefront/internal/kv"
)

func newTestLedger(t *testing.T) (*Ledger, *kv.MemoryStore) {
	t.Helper()
	mem := kv.NewMemoryStore()
	sut, err := NewLedger(context.Background(), mem)
	require.NoError(t, err)
	return sut, mem
}

func TestApply_KnownCode(t *testing.T) {
	sut, _ := newTestLedger(t)

	ok, err := sut.Apply(context.Background(), "AURA20")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Discount{Code: "AURA20", Percentage: 0.20}, sut.Current())
}

func TestApply_UnknownCodeLeavesLedgerUnchanged(t *testing.T) {
	sut, _ := newTestLedger(t)

	ok, err := sut.Apply(context.Background(), "BOGUS")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Discount{}, sut.Current())
}

func TestApply_IsCaseSensitive(t *testing.T) {
	sut, _ := newTestLedger(t)

	ok, err := sut.Apply(context.Background(), "aura20")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApply_SecondCodeRejectedWhileActive(t *testing.T) {
	sut, _ := newTestLedger(t)

	ok, err := sut.Apply(context.Background(), "AURA20")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = sut.Apply(context.Background(), "AURA20")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "AURA20", sut.Current().Code)
}

func TestReset(t *testing.T) {
	sut, _ := newTestLedger(t)

	ok, err := sut.Apply(context.Background(), "AURA20")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, sut.Reset(context.Background()))
	assert.Equal(t, Discount{}, sut.Current())
	assert.False(t, sut.Current().Active())
}

func TestLedger_ReloadsPersistedState(t *testing.T) {
	mem := kv.NewMemoryStore()
	first, err := NewLedger(context.Background(), mem)
	require.NoError(t, err)

	ok, err := first.Apply(context.Background(), "AURA20")
	require.NoError(t, err)
	require.True(t, ok)

	second, err := NewLedger(context.Background(), mem)
	require.NoError(t, err)
	assert.Equal(t, first.Current(), second.Current())
}
