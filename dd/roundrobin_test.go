package dd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundRobinMapScenario1(t *testing.T) {
	// Scenario 1: N=10, P=4: sizes [3,3,2,2], starts [0,3,6,8].
	const n, p = 10, 4
	wantSizes := []int{3, 3, 2, 2}
	wantStarts := []int{0, 3, 6, 8}
	for r := 0; r < p; r++ {
		m := NewRoundRobinMap(n, p, r)
		assert.Equal(t, wantSizes[r], m.Size(r), "size(%d)", r)
		assert.Equal(t, wantStarts[r], m.Start(r), "start(%d)", r)
	}
	m0 := NewRoundRobinMap(n, p, 0)
	assert.Equal(t, 2, m0.Pid(7))
	assert.Equal(t, 3, m0.Pid(8))
	assert.Equal(t, 0, m0.Pid(0))
}

func TestRoundRobinMapCoverage(t *testing.T) {
	// Property 1: for all N in a spread and P in [1,64], sizes sum to N
	// and pid(start(r)+k) == r for k < size(r).
	sizes := []int{0, 1, 2, 7, 63, 64, 65, 1000, 1001}
	for _, n := range sizes {
		for p := 1; p <= 64; p++ {
			m := NewRoundRobinMap(n, p, 0)
			total := 0
			for r := 0; r < p; r++ {
				sz := m.Size(r)
				total += sz
				for k := 0; k < sz; k++ {
					require.Equalf(t, r, m.Pid(m.Start(r)+k), "n=%d p=%d r=%d k=%d", n, p, r, k)
				}
			}
			require.Equalf(t, n, total, "n=%d p=%d", n, p)
		}
	}
}

func TestRoundRobinMapBoundaries(t *testing.T) {
	t.Run("N=0", func(t *testing.T) {
		m := NewRoundRobinMap(0, 4, 0)
		for r := 0; r < 4; r++ {
			assert.Equal(t, 0, m.Size(r))
		}
	})
	t.Run("N=1", func(t *testing.T) {
		m := NewRoundRobinMap(1, 4, 0)
		assert.Equal(t, 1, m.Size(0))
		assert.Equal(t, 0, m.Size(1))
		assert.Equal(t, 0, m.Pid(0))
	})
	t.Run("N=P", func(t *testing.T) {
		m := NewRoundRobinMap(4, 4, 0)
		for r := 0; r < 4; r++ {
			assert.Equal(t, 1, m.Size(r))
			assert.Equal(t, r, m.Pid(r))
		}
	})
	t.Run("N<P", func(t *testing.T) {
		m := NewRoundRobinMap(2, 4, 0)
		assert.Equal(t, 1, m.Size(0))
		assert.Equal(t, 1, m.Size(1))
		assert.Equal(t, 0, m.Size(2))
		assert.Equal(t, 0, m.Size(3))
	})
	t.Run("N=P*q exact", func(t *testing.T) {
		m := NewRoundRobinMap(12, 4, 0)
		for r := 0; r < 4; r++ {
			assert.Equal(t, 3, m.Size(r))
		}
	})
	t.Run("N=P*q+R", func(t *testing.T) {
		m := NewRoundRobinMap(14, 4, 0)
		assert.Equal(t, []int{4, 4, 3, 3}, []int{m.Size(0), m.Size(1), m.Size(2), m.Size(3)})
	})
}

func TestRoundRobinMapInDistAndGID(t *testing.T) {
	m := NewRoundRobinMap(10, 4, 2)
	assert.True(t, m.InDist(6))
	assert.True(t, m.InDist(7))
	assert.False(t, m.InDist(5))
	assert.False(t, m.InDist(8))
	assert.Equal(t, 6, m.StartGID(7))
	assert.Equal(t, 8, m.EndGID(7))
	assert.Equal(t, 1, m.LocalIndex(7))
}
