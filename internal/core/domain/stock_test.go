package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStock_Reserve(t *testing.T) {
	s := Stock{Total: 3, Available: 2}

	got, err := s.Reserve()

	require.NoError(t, err)
	assert.Equal(t, 1, got.Available)
	assert.Equal(t, 3, got.Total)
	assert.True(t, got.Valid())
}

func TestStock_ReserveLastCopy(t *testing.T) {
	s := Stock{Total: 1, Available: 1}

	got, err := s.Reserve()

	require.NoError(t, err)
	assert.Equal(t, 0, got.Available)
}

func TestStock_ReserveEmpty(t *testing.T) {
	s := Stock{Total: 3, Available: 0}

	got, err := s.Reserve()

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, 0, got.Available) // untouched
}

func TestStock_Release(t *testing.T) {
	s := Stock{Total: 3, Available: 1}

	got, clamped := s.Release()

	assert.False(t, clamped)
	assert.Equal(t, 2, got.Available)
}

func TestStock_ReleaseClampsAtTotal(t *testing.T) {
	s := Stock{Total: 3, Available: 3}

	got, clamped := s.Release()

	assert.True(t, clamped)
	assert.Equal(t, 3, got.Available)
	assert.True(t, got.Valid())
}

func TestStock_ResizeGrow(t *testing.T) {
	// 5 total, 2 available, 3 out on loan
	s := Stock{Total: 5, Available: 2}

	got := s.Resize(8)

	assert.Equal(t, 8, got.Total)
	assert.Equal(t, 5, got.Available) // same 3 still out
	assert.True(t, got.Valid())
}

func TestStock_ResizeShrink(t *testing.T) {
	s := Stock{Total: 5, Available: 2}

	got := s.Resize(4)

	assert.Equal(t, 4, got.Total)
	assert.Equal(t, 1, got.Available)
}

func TestStock_ResizeShrinkBelowLoaned(t *testing.T) {
	// 3 copies out on loan, admin shrinks total to 2. Available clamps to
	// zero rather than going negative.
	s := Stock{Total: 5, Available: 2}

	got := s.Resize(2)

	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 0, got.Available)
	assert.True(t, got.Valid())
}

func TestStock_ResizeNegativeTotal(t *testing.T) {
	s := Stock{Total: 5, Available: 2}

	got := s.Resize(-1)

	assert.Equal(t, 0, got.Total)
	assert.Equal(t, 0, got.Available)
	assert.True(t, got.Valid())
}

func TestStock_Valid(t *testing.T) {
	assert.True(t, Stock{Total: 3, Available: 0}.Valid())
	assert.True(t, Stock{Total: 3, Available: 3}.Valid())
	assert.False(t, Stock{Total: 3, Available: 4}.Valid())
	assert.False(t, Stock{Total: 3, Available: -1}.Valid())
}
