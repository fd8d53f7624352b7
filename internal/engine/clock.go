package engine

import "sync/atomic"

// Sequence numbers invocations in the order the engine accepted them.
//
// Frames run on their callers' goroutines, so the sequence gives traces a
// total order that wall-clock stamps can't.
//
// Thread-safety: Sequence is safe for concurrent use (atomic operations).
type Sequence struct {
	seq atomic.Int64
}

// NewSequence creates a sequence whose first Next returns 1.
func NewSequence() *Sequence {
	return &Sequence{}
}

// NewSequenceAt creates a sequence that continues after start.
func NewSequenceAt(start int64) *Sequence {
	s := &Sequence{}
	s.seq.Store(start)
	return s
}

// Next returns the next sequence number.
func (s *Sequence) Next() int64 {
	return s.seq.Add(1)
}

// Current returns the last number handed out without advancing.
func (s *Sequence) Current() int64 {
	return s.seq.Load()
}
