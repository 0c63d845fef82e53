package index

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChunksShortText(t *testing.T) {
	chunks := SplitChunks("hello world", 1000, 200)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestSplitChunksEmptyText(t *testing.T) {
	assert.Empty(t, SplitChunks("", 1000, 200))
}

func TestSplitChunksOverlap(t *testing.T) {
	text := strings.Repeat("a", 25)
	chunks := SplitChunks(text, 10, 4)

	require.Len(t, chunks, 4)
	assert.Equal(t, strings.Repeat("a", 10), chunks[0])
	// Windows advance by size-overlap, so starts are 0, 6, 12, 18.
	assert.Equal(t, strings.Repeat("a", 7), chunks[3])
}

func TestSplitChunksAdjacentWindowsShareTail(t *testing.T) {
	text := "abcdefghijklmnopqrstuvwxyz"
	chunks := SplitChunks(text, 10, 3)

	require.GreaterOrEqual(t, len(chunks), 2)
	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1][len(chunks[i-1])-3:]
		assert.True(t, strings.HasPrefix(chunks[i], prevTail),
			"chunk %d should start with the previous chunk's last 3 runes", i)
	}
}

func TestSplitChunksDeterministic(t *testing.T) {
	text := strings.Repeat("the quick brown fox ", 200)
	first := SplitChunks(text, 1000, 200)
	second := SplitChunks(text, 1000, 200)
	assert.Equal(t, first, second)
}

func TestSplitChunksBadParamsFallBackToDefaults(t *testing.T) {
	text := strings.Repeat("x", 1500)

	chunks := SplitChunks(text, 0, 200)
	require.Len(t, chunks, 2)
	assert.Len(t, chunks[0], defaultChunkSize)

	// Overlap >= size would never advance, so it is replaced.
	chunks = SplitChunks(text, 100, 100)
	require.NotEmpty(t, chunks)
	assert.Len(t, chunks[0], 100)
}

func TestSplitChunksMultibyteRunes(t *testing.T) {
	text := strings.Repeat("héllo wörld ", 10)
	chunks := SplitChunks(text, 40, 10)

	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		assert.True(t, len([]rune(c)) <= 40)
	}
}

func TestDetectKind(t *testing.T) {
	assert.Equal(t, KindPDF, DetectKind("report.PDF"))
	assert.Equal(t, KindText, DetectKind("notes.md"))
	assert.Equal(t, KindText, DetectKind("data.csv"))
	assert.Equal(t, KindUnsupported, DetectKind("archive.zip"))
	assert.Equal(t, KindUnsupported, DetectKind("noextension"))
}

func TestExtractTextPlain(t *testing.T) {
	out, err := ExtractText("notes.txt", []byte("plain contents"))
	require.NoError(t, err)
	assert.Equal(t, "plain contents", out)
}

func TestExtractTextRejectsBinary(t *testing.T) {
	_, err := ExtractText("notes.txt", []byte{0xff, 0xfe, 0x00, 0x80})
	assert.Error(t, err)
}

func TestExtractTextUnsupported(t *testing.T) {
	_, err := ExtractText("image.png", []byte("data"))
	assert.Error(t, err)
}
