// Package focus decomposes task durations into bounded focus blocks
// separated by breaks.
package focus

// Chunk is one focus block of work. Break holds the minutes of rest owed
// after the chunk; the final chunk of a task carries no break.
type Chunk struct {
	Minutes int
	Break   int
}

// Split cuts total minutes into chunks no longer than ceiling, each
// followed by a break of breakLen minutes except the last. The chunk
// minutes always sum to total exactly. A total at or under the ceiling
// yields a single chunk with no break. Non-positive total or ceiling
// yields nil; callers validate durations before planning.
func Split(total, ceiling, breakLen int) []Chunk {
	if total <= 0 || ceiling <= 0 {
		return nil
	}

	var chunks []Chunk
	remaining := total
	for remaining > ceiling {
		chunks = append(chunks, Chunk{Minutes: ceiling, Break: breakLen})
		remaining -= ceiling
	}
	chunks = append(chunks, Chunk{Minutes: remaining})
	return chunks
}

// Total returns the summed work minutes of the chunks, excluding breaks.
func Total(chunks []Chunk) int {
	sum := 0
	for _, c := range chunks {
		sum += c.Minutes
	}
	return sum
}
