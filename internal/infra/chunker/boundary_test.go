package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/civiclens/councilscribe/internal/infra/tokenizer"
)

func TestSplitTextWithinBudgetIsSingleChunk(t *testing.T) {
	c := NewBoundaryChunker(tokenizer.NewEstimator())

	text := "A short update from the planning commission."
	chunks := c.Split(text, 1000)
	require.Len(t, chunks, 1)
	require.Equal(t, text, chunks[0].Content)
	require.Equal(t, 0, chunks[0].Start)
	require.Equal(t, len(text), chunks[0].End)
}

func TestSplitPrefersParagraphBoundaries(t *testing.T) {
	c := NewBoundaryChunker(tokenizer.NewEstimator())

	first := strings.Repeat("alpha beta gamma delta. ", 20)
	second := strings.Repeat("epsilon zeta eta theta. ", 20)
	text := first + "\n\n" + second

	// Each paragraph fits on its own, the combined text does not.
	chunks := c.Split(text, 130)
	require.Len(t, chunks, 2)
	// The paragraph separator stays with the left fragment.
	require.Equal(t, first+"\n\n", chunks[0].Content)
	require.Equal(t, second, chunks[1].Content)
}

func TestSplitFallsBackToSentenceBoundaries(t *testing.T) {
	c := NewBoundaryChunker(tokenizer.NewEstimator())

	text := strings.Repeat("The council approved the measure. ", 30)
	chunks := c.Split(text, 40)
	require.GreaterOrEqual(t, len(chunks), 2)
	for _, chunk := range chunks[:len(chunks)-1] {
		require.True(t, strings.HasSuffix(chunk.Content, ". "),
			"chunk should end after sentence punctuation and whitespace: %q", chunk.Content)
	}
}

func TestSplitHardCutsUnbrokenText(t *testing.T) {
	c := NewBoundaryChunker(tokenizer.NewEstimator())

	text := strings.Repeat("x", 4000)
	chunks := c.Split(text, 100)
	require.GreaterOrEqual(t, len(chunks), 2)
	counter := tokenizer.NewEstimator()
	for _, chunk := range chunks {
		require.LessOrEqual(t, counter.Count(chunk.Content), 100)
	}
}

func TestSplitReconstructsInputExactly(t *testing.T) {
	c := NewBoundaryChunker(tokenizer.NewEstimator())

	texts := []string{
		strings.Repeat("The committee heard public comment. ", 50),
		strings.Repeat("First paragraph text here.\n\nSecond paragraph follows on.\n\n\nThird one.", 12),
		strings.Repeat("unbroken", 600),
		"short",
	}
	for _, text := range texts {
		chunks := c.Split(text, 50)
		var rebuilt strings.Builder
		prevEnd := 0
		for _, chunk := range chunks {
			require.Equal(t, prevEnd, chunk.Start)
			require.Equal(t, chunk.Start+len(chunk.Content), chunk.End)
			rebuilt.WriteString(chunk.Content)
			prevEnd = chunk.End
		}
		require.Equal(t, text, rebuilt.String())
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	c := NewBoundaryChunker(tokenizer.NewEstimator())

	text := strings.Repeat("Resolution 2024-101 was adopted. The vote was unanimous. ", 40)
	first := c.Split(text, 45)
	second := c.Split(text, 45)
	require.Equal(t, first, second)
}

func TestSplitEmptyText(t *testing.T) {
	c := NewBoundaryChunker(tokenizer.NewEstimator())
	require.Empty(t, c.Split("", 100))
}

func TestSplitRespectsRuneBoundaries(t *testing.T) {
	c := NewBoundaryChunker(tokenizer.NewEstimator())

	text := strings.Repeat("日本語のテキスト", 200)
	chunks := c.Split(text, 50)
	require.GreaterOrEqual(t, len(chunks), 2)
	var rebuilt strings.Builder
	for _, chunk := range chunks {
		require.True(t, strings.HasPrefix(text[chunk.Start:], chunk.Content))
		rebuilt.WriteString(chunk.Content)
	}
	require.Equal(t, text, rebuilt.String())
}
