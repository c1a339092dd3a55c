package storage

import "sync"

// hub fans changes out to the watchers of every context except the writer.
type hub struct {
	mu       sync.RWMutex
	next     int
	watchers map[int]*watcher
}

type watcher struct {
	origin string
	d      *dispatcher
}

func newHub() *hub {
	return &hub{watchers: make(map[int]*watcher)}
}

func (h *hub) watch(origin string, fn func(Change)) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	w := &watcher{origin: origin, d: newDispatcher(fn)}
	h.watchers[id] = w
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.watchers, id)
		h.mu.Unlock()
		w.d.stop()
	}
}

func (h *hub) publish(c Change) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, w := range h.watchers {
		if w.origin == c.Origin {
			continue
		}
		w.d.push(c)
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, w := range h.watchers {
		w.d.stop()
		delete(h.watchers, id)
	}
}

// dispatcher delivers queued changes to fn on its own goroutine, in push order.
//
// The queue is unbounded so a slow watcher never blocks a writer.
type dispatcher struct {
	fn    func(Change)
	mu    sync.Mutex
	queue []Change
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once
}

func newDispatcher(fn func(Change)) *dispatcher {
	d := &dispatcher{
		fn:   fn,
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *dispatcher) push(c Change) {
	d.mu.Lock()
	d.queue = append(d.queue, c)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *dispatcher) run() {
	for {
		select {
		case <-d.done:
			return
		case <-d.wake:
		}

		for {
			d.mu.Lock()
			if len(d.queue) == 0 {
				d.mu.Unlock()
				break
			}
			c := d.queue[0]
			d.queue = d.queue[1:]
			d.mu.Unlock()

			select {
			case <-d.done:
				return
			default:
			}
			d.fn(c)
		}
	}
}

func (d *dispatcher) stop() {
	d.once.Do(func() { close(d.done) })
}
