// Package runner executes one-shot subprocesses with capped output
// capture and optional PTY allocation. It backs the cli LLM provider
// and the test runner, where a command can produce unbounded output.
package runner

import "sync"

// DefaultMaxBytes is the default output cap (1 MiB).
const DefaultMaxBytes = 1 << 20

// HeadTailBuffer retains a stable prefix and suffix of everything
// written to it, dropping the middle once retained bytes exceed the
// cap. Half the budget goes to the head, half to the tail, so both the
// start of a test run and its final summary survive truncation.
type HeadTailBuffer struct {
	mu         sync.Mutex
	headBudget int
	tailBudget int
	head       []byte
	tail       []byte
	omitted    int
}

// NewHeadTailBuffer creates a buffer retaining at most maxBytes.
func NewHeadTailBuffer(maxBytes int) *HeadTailBuffer {
	head := maxBytes / 2
	return &HeadTailBuffer{
		headBudget: head,
		tailBudget: maxBytes - head,
	}
}

// Write appends a chunk, filling the head budget first and rolling the
// tail window afterwards. It never fails; it implements io.Writer so a
// subprocess can write straight into it.
func (b *HeadTailBuffer) Write(chunk []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(chunk)
	if n == 0 {
		return 0, nil
	}
	if b.headBudget+b.tailBudget == 0 {
		b.omitted += n
		return n, nil
	}

	if len(b.head) < b.headBudget {
		remaining := b.headBudget - len(b.head)
		if n <= remaining {
			b.head = append(b.head, chunk...)
			return n, nil
		}
		b.head = append(b.head, chunk[:remaining]...)
		chunk = chunk[remaining:]
	}

	b.appendTail(chunk)
	return n, nil
}

func (b *HeadTailBuffer) appendTail(chunk []byte) {
	if b.tailBudget == 0 {
		b.omitted += len(chunk)
		return
	}
	if len(chunk) >= b.tailBudget {
		// The chunk alone fills the tail window.
		b.omitted += len(b.tail) + len(chunk) - b.tailBudget
		b.tail = append(b.tail[:0], chunk[len(chunk)-b.tailBudget:]...)
		return
	}
	b.tail = append(b.tail, chunk...)
	if excess := len(b.tail) - b.tailBudget; excess > 0 {
		b.omitted += excess
		b.tail = append(b.tail[:0], b.tail[excess:]...)
	}
}

// Bytes returns the retained output (head followed by tail).
func (b *HeadTailBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, 0, len(b.head)+len(b.tail))
	out = append(out, b.head...)
	out = append(out, b.tail...)
	return out
}

// Omitted returns how many bytes were dropped from the middle.
func (b *HeadTailBuffer) Omitted() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.omitted
}
