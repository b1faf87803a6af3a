package buf

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddOverflowSafe(t *testing.T) {
	sum, ok := AddOverflowSafe(10, 5)
	require.True(t, ok)
	require.Equal(t, 15, sum)

	_, ok = AddOverflowSafe(math.MaxInt, 1)
	require.False(t, ok, "expected overflow when adding to MaxInt")

	_, ok = AddOverflowSafe(math.MinInt, -1)
	require.False(t, ok, "expected underflow when subtracting from MinInt")
}

func TestMulOverflowSafe(t *testing.T) {
	p, ok := MulOverflowSafe(16, 4)
	require.True(t, ok)
	require.Equal(t, 64, p)

	_, ok = MulOverflowSafe(math.MaxInt, 2)
	require.False(t, ok)

	_, ok = MulOverflowSafe(-1, 4)
	require.False(t, ok)
}

func TestCheckListBounds(t *testing.T) {
	end, err := CheckListBounds(64, 8, 4, 4)
	require.NoError(t, err)
	require.Equal(t, 24, end)

	_, err = CheckListBounds(16, 8, 4, 4)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrOutOfBounds))

	_, err = CheckListBounds(16, -1, 1, 1)
	require.ErrorIs(t, err, ErrOutOfBounds)

	_, err = CheckListBounds(16, 0, math.MaxInt, 4)
	require.ErrorIs(t, err, ErrOutOfBounds)
}

func TestSliceAndHas(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}

	got, ok := Slice(data, 1, 3)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, got)

	_, ok = Slice(data, 4, 2)
	require.False(t, ok, "Slice should fail when extending beyond len")
	require.False(t, Has(data, 2, 4))
	require.True(t, Has(data, 2, 1))

	_, ok = Slice(data, -1, 1)
	require.False(t, ok, "Slice should reject negative offset")
	_, ok = Slice(data, 1, -1)
	require.False(t, ok, "Slice should reject negative length")
}
