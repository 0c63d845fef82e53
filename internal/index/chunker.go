package index

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// SplitChunks splits text into overlapping rune-window chunks. The result
// order is the content order; callers assign sequence indices 0..n-1 from
// it, so reconstruction is deterministic.
func SplitChunks(text string, size, overlap int) []string {
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 5
	}

	var chunks []string
	runes := []rune(text)
	for i := 0; i < len(runes); {
		end := i + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[i:end]))
		if end == len(runes) {
			break
		}
		i += size - overlap
	}
	return chunks
}
