package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadBuffer(t *testing.T) {
	b := newHeadBuffer(8)

	n, err := b.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.False(t, b.Truncated())

	n, err = b.Write([]byte(" world"))
	assert.NoError(t, err)
	assert.Equal(t, 6, n, "writes are always fully accepted")

	n, _ = b.Write([]byte("!"))
	assert.Equal(t, 1, n)

	assert.Equal(t, "hello wo", string(b.Bytes()))
	assert.Equal(t, int64(12), b.TotalBytes())
	assert.True(t, b.Truncated())

	assert.Equal(t, CaptureLimit, newHeadBuffer(0).maxBytes)
}
