package dtmf

import (
	"strings"
	"sync/atomic"
)

// ToneEvent reports the onset of a new tone.
type ToneEvent struct {
	// Symbol is the button that started sounding
	Symbol Symbol
	// Batch is the zero-based index of the batch it was first seen in
	Batch uint64
	// Offset is the sample offset of that batch from the start of the session
	Offset uint64
}

// ToneCallback is called once per new tone, from inside Detect.
// Must be fast - it runs on the sample processing path.
type ToneCallback func(event ToneEvent)

// Detector is a streaming DTMF detection session. It accepts audio in chunks of
// any size, decodes each complete batch and collapses runs of the same symbol into
// a single event.
//
// A Detector is owned by one goroutine; Detect must not be called concurrently.
type Detector struct {
	buf   [BatchSize]int16
	count int // samples held in buf

	prev    Symbol // raw result of the previous batch
	batches uint64
	result  strings.Builder

	// Callback for tone events (atomic so it can be swapped from another goroutine)
	callbackPtr atomic.Pointer[ToneCallback]
}

// NewDetector creates a detection session with an empty buffer.
func NewDetector() *Detector {
	return &Detector{prev: Silence}
}

// SetCallback sets the callback for tone events. Nil removes it.
func (d *Detector) SetCallback(cb ToneCallback) {
	if cb == nil {
		d.callbackPtr.Store(nil)
	} else {
		d.callbackPtr.Store(&cb)
	}
}

// Detect feeds samples into the session. Complete batches are decoded
// immediately; a trailing partial batch is kept for the next call.
func (d *Detector) Detect(samples []int16) {
	if d.count > 0 {
		n := copy(d.buf[d.count:], samples)
		d.count += n
		samples = samples[n:]
		if d.count < BatchSize {
			return
		}
		d.processBatch(d.buf[:])
		d.count = 0
	}

	// Full batches straight from the caller's slice, no copy
	for len(samples) >= BatchSize {
		d.processBatch(samples[:BatchSize])
		samples = samples[BatchSize:]
	}

	d.count = copy(d.buf[:], samples)
}

func (d *Detector) processBatch(batch []int16) {
	sym := DetectBatch(batch)
	index := d.batches
	d.batches++

	if sym != d.prev && sym != Silence {
		d.result.WriteByte(byte(sym))
		d.emitEvent(ToneEvent{
			Symbol: sym,
			Batch:  index,
			Offset: index * BatchSize,
		})
	}
	d.prev = sym
}

// emitEvent calls the registered callback if set
func (d *Detector) emitEvent(event ToneEvent) {
	if cbPtr := d.callbackPtr.Load(); cbPtr != nil {
		(*cbPtr)(event)
	}
}

// Result returns every symbol detected since the last ClearResult, in order.
func (d *Detector) Result() string {
	return d.result.String()
}

// ClearResult discards the accumulated symbols. Buffered samples and the
// debounce state are kept, so a tone still sounding is not reported again.
func (d *Detector) ClearResult() {
	d.result.Reset()
}

// Buffered returns the number of samples waiting for a complete batch.
func (d *Detector) Buffered() int {
	return d.count
}

// Batches returns the number of batches decoded so far.
func (d *Detector) Batches() uint64 {
	return d.batches
}

// Reset returns the session to its initial state.
func (d *Detector) Reset() {
	d.count = 0
	d.prev = Silence
	d.batches = 0
	d.result.Reset()
}
