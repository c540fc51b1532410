package processor

import (
	"strings"
)

// ChunkConfig controls how page content is split before indexing.
type ChunkConfig struct {
	MaxWords  int
	MaxChunks int
}

// DefaultChunkConfig provides sane defaults for chunking.
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		MaxWords:  1000,
		MaxChunks: 40,
	}
}

// chunkText splits content into word-bounded chunks. Words are never split
// across chunk boundaries, and whitespace is normalized to single spaces.
func chunkText(text string, cfg ChunkConfig) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if cfg.MaxWords <= 0 {
		cfg = DefaultChunkConfig()
	}

	if len(words) <= cfg.MaxWords {
		return []string{strings.Join(words, " ")}
	}

	chunks := make([]string, 0, len(words)/cfg.MaxWords+1)
	for start := 0; start < len(words); start += cfg.MaxWords {
		if cfg.MaxChunks > 0 && len(chunks) >= cfg.MaxChunks {
			break
		}
		end := start + cfg.MaxWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}

	return chunks
}
