package touch

import "sync"

// #region event-ring

// eventRing is a fixed-capacity ring of touch events for continuous
// sampling.
type eventRing struct {
	mu    sync.Mutex
	data  []Event
	head  int
	count int
}

func newEventRing(capacity int) *eventRing {
	if capacity < 1 {
		capacity = 1
	}
	return &eventRing{data: make([]Event, capacity)}
}

func (r *eventRing) push(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[r.head] = ev
	r.head = (r.head + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
}

func (r *eventRing) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, r.count)
	start := (r.head - r.count + len(r.data)) % len(r.data)
	for i := 0; i < r.count; i++ {
		out[i] = r.data[(start+i)%len(r.data)]
	}
	return out
}

func (r *eventRing) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *eventRing) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = 0
	r.count = 0
}

// #endregion event-ring

// #region feed

// Feed appends one event to the rolling buffer. Safe for concurrent use
// with BufferedVector.
func (e *Engine) Feed(ev Event) {
	e.buf.push(ev)
}

// BufferedVector extracts features from the buffered events, or returns nil
// until at least MinEvents are present.
func (e *Engine) BufferedVector() []float64 {
	if e.buf.len() < MinEvents {
		return nil
	}
	return e.ExtractFeatures(e.buf.snapshot())
}

// ResetBuffer discards all buffered events.
func (e *Engine) ResetBuffer() {
	e.buf.reset()
}

// #endregion feed
