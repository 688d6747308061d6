package chunker

import (
	"unicode"
	"unicode/utf8"

	"github.com/civiclens/councilscribe/internal/domain/summarize"
)

// BoundaryChunker splits text into budget-fitting fragments, preferring
// paragraph breaks, then sentence-ending punctuation, then a hard cut.
// Splits are chosen leftmost-closest-to-half so halves stay balanced.
// Concatenating chunk contents reproduces the input byte for byte.
type BoundaryChunker struct {
	counter summarize.TokenCounter
}

// NewBoundaryChunker constructs a chunker over the given counter.
func NewBoundaryChunker(counter summarize.TokenCounter) *BoundaryChunker {
	return &BoundaryChunker{counter: counter}
}

// Split implements summarize.Chunker.
func (c *BoundaryChunker) Split(text string, budget int) []summarize.Chunk {
	if budget < 1 {
		budget = 1
	}
	var out []summarize.Chunk
	c.split(text, 0, budget, &out)
	return out
}

func (c *BoundaryChunker) split(text string, offset, budget int, out *[]summarize.Chunk) {
	if text == "" {
		return
	}
	tokens := c.counter.Count(text)
	if tokens <= budget {
		*out = append(*out, summarize.Chunk{
			Content: text,
			Start:   offset,
			End:     offset + len(text),
			Tokens:  tokens,
		})
		return
	}

	cut := bestBoundary(text, paragraphBoundaries)
	if cut == 0 {
		cut = bestBoundary(text, sentenceBoundaries)
	}
	if cut == 0 {
		cut = c.hardCut(text, budget, tokens)
	}
	if cut <= 0 || cut >= len(text) {
		// A fragment that cannot be divided is emitted as-is so the
		// recursion terminates.
		*out = append(*out, summarize.Chunk{
			Content: text,
			Start:   offset,
			End:     offset + len(text),
			Tokens:  tokens,
		})
		return
	}

	c.split(text[:cut], offset, budget, out)
	c.split(text[cut:], offset+cut, budget, out)
}

// bestBoundary picks the candidate closest to the midpoint of the fragment;
// on a tie the leftmost candidate wins.
func bestBoundary(text string, candidates func(string) []int) int {
	positions := candidates(text)
	if len(positions) == 0 {
		return 0
	}
	half := len(text) / 2
	best := positions[0]
	bestDist := distance(best, half)
	for _, pos := range positions[1:] {
		if d := distance(pos, half); d < bestDist {
			best, bestDist = pos, d
		}
	}
	return best
}

func distance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// paragraphBoundaries returns cut positions after each run of blank lines.
func paragraphBoundaries(text string) []int {
	var positions []int
	for i := 0; i+1 < len(text); i++ {
		if text[i] != '\n' || text[i+1] != '\n' {
			continue
		}
		j := i + 1
		for j < len(text) && text[j] == '\n' {
			j++
		}
		if j > 0 && j < len(text) {
			positions = append(positions, j)
		}
		i = j - 1
	}
	return positions
}

// sentenceBoundaries returns cut positions after sentence-ending punctuation
// followed by whitespace. The whitespace stays with the left fragment.
func sentenceBoundaries(text string) []int {
	var positions []int
	for i := 0; i < len(text); i++ {
		b := text[i]
		if b != '.' && b != '!' && b != '?' {
			continue
		}
		j := i + 1
		if j >= len(text) || !isSpaceByte(text[j]) {
			continue
		}
		for j < len(text) && isSpaceByte(text[j]) {
			j++
		}
		if j > 0 && j < len(text) {
			positions = append(positions, j)
		}
		i = j - 1
	}
	return positions
}

func isSpaceByte(b byte) bool {
	return b < utf8.RuneSelf && unicode.IsSpace(rune(b))
}

// hardCut picks a rune-safe split near the budget-implied length, shrinking
// until the left side fits.
func (c *BoundaryChunker) hardCut(text string, budget, tokens int) int {
	cut := len(text) * budget / tokens
	if cut < 1 {
		cut = 1
	}
	cut = alignRune(text, cut)
	for cut > 0 && c.counter.Count(text[:cut]) > budget {
		next := alignRune(text, cut*9/10)
		if next >= cut {
			next = alignRune(text, cut-1)
		}
		cut = next
	}
	if cut == 0 {
		// Accept a single oversized rune rather than looping forever.
		_, size := utf8.DecodeRuneInString(text)
		cut = size
	}
	return cut
}

// alignRune moves pos back to the nearest rune start.
func alignRune(text string, pos int) int {
	if pos >= len(text) {
		return len(text)
	}
	for pos > 0 && !utf8.RuneStart(text[pos]) {
		pos--
	}
	return pos
}

var _ summarize.Chunker = (*BoundaryChunker)(nil)
