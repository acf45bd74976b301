package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockSerializesSameKey(t *testing.T) {
	l := New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("g1")
			defer unlock()
			v := counter
			counter = v + 1
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
	assert.Empty(t, l.locks, "released keys are dropped")
}

func TestLockDistinctKeysIndependent(t *testing.T) {
	l := New()
	unlockA := l.Lock("a")
	unlockB := l.Lock("b") // must not block
	unlockB()
	unlockA()
}
