package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex(t *testing.T) {
	k := newKeyedMutex()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  = map[int]int{}
		maxSeen int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(key int) {
			defer wg.Done()
			unlock := k.Lock(key)
			defer unlock()

			mu.Lock()
			inside[key]++
			if inside[key] > maxSeen {
				maxSeen = inside[key]
			}
			mu.Unlock()

			mu.Lock()
			inside[key]--
			mu.Unlock()
		}(i % 3)
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, k.locks, "released keys are forgotten")
}
