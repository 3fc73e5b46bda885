package telegram

import "sync"

// dispatcher serialises event handling per user: one queue and one worker
// goroutine per user id, so a user's events are handled strictly in order
// while different users proceed concurrently. The lifecycle core relies on
// this ordering.
type dispatcher struct {
	mu     sync.Mutex
	closed bool
	queues map[int64]chan func()
	wg     sync.WaitGroup
}

func newDispatcher() *dispatcher {
	return &dispatcher{queues: make(map[int64]chan func())}
}

func (d *dispatcher) Do(userID int64, fn func()) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	q, ok := d.queues[userID]
	if !ok {
		q = make(chan func(), 16)
		d.queues[userID] = q
		d.wg.Add(1)
		go d.drain(q)
	}
	d.mu.Unlock()

	q <- fn
}

func (d *dispatcher) drain(q chan func()) {
	defer d.wg.Done()
	for fn := range q {
		fn()
	}
}

// Close stops accepting work and waits for queued handlers to finish.
func (d *dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()

	d.wg.Wait()
}
