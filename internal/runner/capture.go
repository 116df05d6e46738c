package runner

import (
	"sync"
)

// headBuffer keeps only the first maxBytes written to it and discards the
// rest, while still accepting every write so the producer never stalls.
type headBuffer struct {
	maxBytes int

	mu       sync.Mutex
	total    int64
	contents []byte
}

func newHeadBuffer(maxBytes int) *headBuffer {
	if maxBytes <= 0 {
		maxBytes = CaptureLimit
	}
	return &headBuffer{
		maxBytes: maxBytes,
		contents: make([]byte, 0, maxBytes),
	}
}

func (b *headBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total += int64(len(p))
	if room := b.maxBytes - len(b.contents); room > 0 {
		b.contents = append(b.contents, p[:min(room, len(p))]...)
	}
	return len(p), nil
}

func (b *headBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	cp := make([]byte, len(b.contents))
	copy(cp, b.contents)
	return cp
}

func (b *headBuffer) TotalBytes() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.total
}

func (b *headBuffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int64(len(b.contents)) < b.total
}
