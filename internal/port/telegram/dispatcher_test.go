package telegram

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatcher_SerializesPerUser(t *testing.T) {
	d := newDispatcher()

	var mu sync.Mutex
	seen := make(map[int64][]int)

	var wg sync.WaitGroup
	for user := int64(1); user <= 3; user++ {
		for i := 0; i < 10; i++ {
			user, i := user, i
			wg.Add(1)
			d.Do(user, func() {
				defer wg.Done()
				mu.Lock()
				seen[user] = append(seen[user], i)
				mu.Unlock()
			})
		}
	}
	wg.Wait()
	d.Close()

	for user := int64(1); user <= 3; user++ {
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, seen[user], "user %d", user)
	}
}

func TestDispatcher_DoAfterCloseIsNoOp(t *testing.T) {
	d := newDispatcher()
	d.Close()

	ran := false
	d.Do(1, func() { ran = true })
	assert.False(t, ran)
}
