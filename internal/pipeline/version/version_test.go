package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDenormalizeRoundTrip(t *testing.T) {
	cases := [][]int{{3}, {3, 1}, {3, 1, 2}, {0}}
	for _, c := range cases {
		tr := Normalize(c...)
		got := Denormalize(tr)
		assert.Equal(t, c, got, "round trip of %v", c)
	}
}

func TestDenormalizeScalars(t *testing.T) {
	assert.Equal(t, []int{3}, Denormalize(Triple{3, Sentinel, Sentinel}))
	assert.Equal(t, []int{3, 1}, Denormalize(Triple{3, 1, Sentinel}))
	assert.Equal(t, []int{3, 1, 2}, Denormalize(Triple{3, 1, 2}))
}

func TestOrderingSentinelSortsFirst(t *testing.T) {
	require.True(t, (Triple{0, Sentinel, Sentinel}).Less(Triple{0, 0, 0}))
	require.True(t, (Triple{0, 0, Sentinel}).Less(Triple{0, 0, 0}))
}

func TestNextAfterFreshAsset(t *testing.T) {
	first := NextAfter(Zero)
	assert.Equal(t, Triple{1, Sentinel, Sentinel}, first)

	second := NextAfter(first)
	assert.Equal(t, Triple{2, Sentinel, Sentinel}, second)
}

func TestNextAfterFullPrecision(t *testing.T) {
	max := Triple{3, 1, 2}
	assert.Equal(t, Triple{3, 1, 3}, NextAfter(max))
}

func TestNextAfterPartialPrecision(t *testing.T) {
	max := Triple{3, 1, Sentinel}
	assert.Equal(t, Triple{3, 2, Sentinel}, NextAfter(max))
}

func TestStringFormatting(t *testing.T) {
	assert.Equal(t, "3", Triple{3, Sentinel, Sentinel}.String())
	assert.Equal(t, "3.1", Triple{3, 1, Sentinel}.String())
	assert.Equal(t, "3.1.2", Triple{3, 1, 2}.String())
}
