package workerpool

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapCoversEveryIndexExactlyOnce(t *testing.T) {
	const n = 997 // prime, so no worker count divides it evenly
	for _, workers := range []int{1, 2, 3, 8, 64} {
		hits := make([]int32, n)
		Map(n, workers, func(lo, hi int) {
			for i := lo; i < hi; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			assert.Equalf(t, int32(1), h, "index %d covered %d times with workers=%d", i, h, workers)
		}
	}
}

func TestMapZeroLength(t *testing.T) {
	called := false
	Map(0, 4, func(lo, hi int) { called = true })
	assert.False(t, called)
}

func TestMapWorkersExceedingN(t *testing.T) {
	hits := make([]int, 3)
	Map(3, 100, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			hits[i]++
		}
	})
	assert.Equal(t, []int{1, 1, 1}, hits)
}
