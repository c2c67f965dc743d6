package textsplit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitText_ShortInput(t *testing.T) {
	chunks := SplitText("short", 100, 10)

	assert.Equal(t, []string{"short"}, chunks)
}

func TestSplitText_OverlapPreserved(t *testing.T) {
	text := strings.Repeat("a", 50) + strings.Repeat("b", 50)

	chunks := SplitText(text, 60, 20)

	assert.Len(t, chunks, 2)
	assert.Equal(t, 60, len(chunks[0]))
	// Second chunk starts 40 runes in, overlapping the first by 20.
	assert.Equal(t, chunks[0][40:], chunks[1][:20])
}

func TestSplitText_OverlapLargerThanChunk(t *testing.T) {
	text := strings.Repeat("x", 30)

	chunks := SplitText(text, 10, 15)

	assert.Len(t, chunks, 3)
	for _, chunk := range chunks {
		assert.Equal(t, 10, len(chunk))
	}
}
