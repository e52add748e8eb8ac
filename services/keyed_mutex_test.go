package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SerializesPerKey(t *testing.T) {
	km := newKeyedMutex()
	keys := []string{"user1/1", "user1/2", "user2/1"}
	counters := make([]int, len(keys))
	var wg sync.WaitGroup

	// Unsynchronized increments under the same key would race; the keyed mutex
	// must make them safe while still allowing distinct keys to interleave.
	for i, key := range keys {
		for n := 0; n < 50; n++ {
			wg.Add(1)
			go func(idx int, k string) {
				defer wg.Done()
				unlock := km.Lock(k)
				defer unlock()
				counters[idx]++
			}(i, key)
		}
	}
	wg.Wait()

	for i := range keys {
		assert.Equal(t, 50, counters[i])
	}
}

func TestKeyedMutex_UnlockAllowsReacquisition(t *testing.T) {
	km := newKeyedMutex()
	unlock := km.Lock("k")
	unlock()

	done := make(chan struct{})
	go func() {
		unlock := km.Lock("k")
		unlock()
		close(done)
	}()
	<-done
}
