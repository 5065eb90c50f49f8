package uiloop

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestQueue_DrainInOrder(t *testing.T) {
	var wakes int
	q := New(func() { wakes++ })

	var got []int
	for i := 0; i < 3; i++ {
		q.Post(func() { got = append(got, i) })
	}
	assert.Equal(t, 3, wakes)
	assert.Equal(t, 3, q.Len())

	assert.Equal(t, 3, q.Drain())
	assert.Equal(t, []int{0, 1, 2}, got)
	assert.Zero(t, q.Drain())
}

func TestQueue_PostDuringDrain(t *testing.T) {
	q := New(nil)

	var ran int
	q.Post(func() {
		ran++
		q.Post(func() { ran++ })
	})
	assert.Equal(t, 1, q.Drain())
	assert.Equal(t, 1, ran)
	assert.Equal(t, 1, q.Drain())
	assert.Equal(t, 2, ran)
}

func TestQueue_ConcurrentPost(t *testing.T) {
	defer goleak.VerifyNone(t)

	var wakes atomic.Int32
	q := New(func() { wakes.Add(1) })

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Post(func() {})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, q.Drain())
	assert.EqualValues(t, 800, wakes.Load())
}
