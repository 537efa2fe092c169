package runner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadTailBuffer_UnderCap(t *testing.T) {
	b := NewHeadTailBuffer(100)
	_, err := b.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = b.Write([]byte("world"))
	require.NoError(t, err)

	assert.Equal(t, "hello world", string(b.Bytes()))
	assert.Equal(t, 0, b.Omitted())
}

func TestHeadTailBuffer_DropsMiddle(t *testing.T) {
	b := NewHeadTailBuffer(10)
	b.Write([]byte("AAAAA"))  // fills head budget (5)
	b.Write([]byte("BBBBB"))  // fills tail budget (5)
	b.Write([]byte("CCCCC"))  // rolls tail window

	out := string(b.Bytes())
	assert.Equal(t, "AAAAACCCCC", out)
	assert.Equal(t, 5, b.Omitted())
}

func TestHeadTailBuffer_ChunkSplitsAcrossBudgets(t *testing.T) {
	b := NewHeadTailBuffer(10)
	b.Write([]byte("AAAAABB"))

	out := string(b.Bytes())
	assert.True(t, strings.HasPrefix(out, "AAAAA"))
	assert.True(t, strings.HasSuffix(out, "BB"))
	assert.Equal(t, 0, b.Omitted())
}

func TestHeadTailBuffer_OversizedChunk(t *testing.T) {
	b := NewHeadTailBuffer(10)
	b.Write([]byte(strings.Repeat("x", 5)))
	// Single chunk larger than the tail budget: only its last bytes stay.
	b.Write([]byte("0123456789"))

	out := string(b.Bytes())
	assert.Equal(t, "xxxxx56789", out)
	assert.Equal(t, 5, b.Omitted())
}

func TestHeadTailBuffer_EmptyWriteIgnored(t *testing.T) {
	b := NewHeadTailBuffer(10)
	n, err := b.Write(nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, b.Bytes())
}

func TestHeadTailBuffer_ZeroCapDropsEverything(t *testing.T) {
	b := NewHeadTailBuffer(0)
	b.Write([]byte("data"))
	assert.Empty(t, b.Bytes())
	assert.Equal(t, 4, b.Omitted())
}
