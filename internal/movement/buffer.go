package movement

import "sync"

// #region ring-buffer

// Sample is one accelerometer reading.
type Sample struct {
	X, Y, Z float64
}

// ringBuffer is a fixed-capacity ring of samples. It is an explicit owned
// ring, not a resized slice, so continuous feeding never reallocates.
type ringBuffer struct {
	mu    sync.Mutex
	data  []Sample
	head  int
	count int
}

func newRingBuffer(capacity int) *ringBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &ringBuffer{data: make([]Sample, capacity)}
}

func (r *ringBuffer) push(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[r.head] = s
	r.head = (r.head + 1) % len(r.data)
	if r.count < len(r.data) {
		r.count++
	}
}

// snapshot returns the buffered samples oldest-first.
func (r *ringBuffer) snapshot() []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Sample, r.count)
	start := (r.head - r.count + len(r.data)) % len(r.data)
	for i := 0; i < r.count; i++ {
		out[i] = r.data[(start+i)%len(r.data)]
	}
	return out
}

func (r *ringBuffer) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *ringBuffer) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.head = 0
	r.count = 0
}

// #endregion ring-buffer

// #region feed

// Feed appends one sample to the rolling buffer. Safe for concurrent use
// with BufferedVector.
func (e *Engine) Feed(s Sample) {
	e.buf.push(s)
}

// BufferedVector extracts features from the current rolling buffer, or
// returns nil until at least MinSeconds of samples are present.
func (e *Engine) BufferedVector() []float64 {
	if float64(e.buf.len()) < e.cfg.MinSeconds*e.cfg.SampleRate {
		return nil
	}
	samples := e.buf.snapshot()
	x := make([]float64, len(samples))
	y := make([]float64, len(samples))
	z := make([]float64, len(samples))
	for i, s := range samples {
		x[i], y[i], z[i] = s.X, s.Y, s.Z
	}
	features, err := e.ExtractFeatures(x, y, z)
	if err != nil {
		return nil
	}
	return features
}

// ResetBuffer discards all buffered samples.
func (e *Engine) ResetBuffer() {
	e.buf.reset()
}

// #endregion feed
