package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-atelier/storefront/internal/kv"
)

func newTestStore(t *testing.T) (*Store, *kv.MemoryStore) {
	t.Helper()
	mem := kv.NewMemoryStore()
	sut, err := NewStore(context.Background(), mem)
	require.NoError(t, err)
	return sut, mem
}

func TestAdd_NewLine(t *testing.T) {
	sut, _ := newTestStore(t)

	err := sut.Add(context.Background(), "p1", "v1", 2, "7")
	require.NoError(t, err)

	lines := sut.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, Line{ProductID: "p1", VariantID: "v1", Size: "7", Quantity: 2}, lines[0])
}

func TestAdd_SameKeyIsAdditive(t *testing.T) {
	sut, _ := newTestStore(t)

	require.NoError(t, sut.Add(context.Background(), "p1", "v1", 1, ""))
	require.NoError(t, sut.Add(context.Background(), "p1", "v1", 2, ""))

	lines := sut.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestAdd_DifferentSizeIsSeparateLine(t *testing.T) {
	sut, _ := newTestStore(t)

	require.NoError(t, sut.Add(context.Background(), "p1", "v1", 1, "6"))
	require.NoError(t, sut.Add(context.Background(), "p1", "v1", 1, "7"))

	assert.Len(t, sut.Lines(), 2)
}

func TestAdd_NonPositiveQuantityRejected(t *testing.T) {
	sut, _ := newTestStore(t)

	err := sut.Add(context.Background(), "p1", "v1", 0, "")
	require.ErrorIs(t, err, ErrInvalidQuantity)

	err = sut.Add(context.Background(), "p1", "v1", -3, "")
	require.ErrorIs(t, err, ErrInvalidQuantity)

	assert.Empty(t, sut.Lines())
}

func TestRemove(t *testing.T) {
	sut, _ := newTestStore(t)

	require.NoError(t, sut.Add(context.Background(), "p1", "v1", 1, ""))
	require.NoError(t, sut.Add(context.Background(), "p2", "v1", 1, ""))

	require.NoError(t, sut.Remove(context.Background(), "p1", "v1", ""))

	lines := sut.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "p2", lines[0].ProductID)
}

func TestRemove_AbsentLineIsNoOp(t *testing.T) {
	sut, _ := newTestStore(t)

	require.NoError(t, sut.Add(context.Background(), "p1", "v1", 1, ""))
	require.NoError(t, sut.Remove(context.Background(), "p9", "v9", ""))

	assert.Len(t, sut.Lines(), 1)
}

func TestSetQuantity_Overwrites(t *testing.T) {
	sut, _ := newTestStore(t)

	require.NoError(t, sut.Add(context.Background(), "p1", "v1", 2, ""))
	require.NoError(t, sut.SetQuantity(context.Background(), "p1", "v1", 7, ""))

	lines := sut.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 7, lines[0].Quantity)
}

func TestSetQuantity_ZeroBehavesAsRemove(t *testing.T) {
	sut, _ := newTestStore(t)

	require.NoError(t, sut.Add(context.Background(), "p1", "v1", 2, ""))
	require.NoError(t, sut.SetQuantity(context.Background(), "p1", "v1", 0, ""))

	assert.Empty(t, sut.Lines())
}

func TestSetQuantity_NegativeBehavesAsRemove(t *testing.T) {
	sut, _ := newTestStore(t)

	require.NoError(t, sut.Add(context.Background(), "p1", "v1", 2, ""))
	require.NoError(t, sut.SetQuantity(context.Background(), "p1", "v1", -1, ""))

	assert.Empty(t, sut.Lines())
}

func TestClear(t *testing.T) {
	sut, _ := newTestStore(t)

	require.NoError(t, sut.Add(context.Background(), "p1", "v1", 2, ""))
	require.NoError(t, sut.Add(context.Background(), "p2", "v1", 1, ""))
	require.NoError(t, sut.Clear(context.Background()))

	assert.True(t, sut.IsEmpty())
}

func TestStore_ReloadsPersistedState(t *testing.T) {
	mem := kv.NewMemoryStore()
	first, err := NewStore(context.Background(), mem)
	require.NoError(t, err)

	require.NoError(t, first.Add(context.Background(), "p1", "v1", 2, "7"))
	require.NoError(t, first.Add(context.Background(), "p2", "v2", 1, ""))

	// A second store over the same kv reconstructs identical state.
	second, err := NewStore(context.Background(), mem)
	require.NoError(t, err)
	assert.Equal(t, first.Lines(), second.Lines())
}

func TestLines_ReturnsCopy(t *testing.T) {
	sut, _ := newTestStore(t)

	require.NoError(t, sut.Add(context.Background(), "p1", "v1", 2, ""))

	snapshot := sut.Lines()
	snapshot[0].Quantity = 99

	assert.Equal(t, 2, sut.Lines()[0].Quantity)
}
