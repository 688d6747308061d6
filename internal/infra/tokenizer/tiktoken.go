package tokenizer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/civiclens/councilscribe/internal/domain/summarize"
)

const defaultEncoding = "cl100k_base"

// Tiktoken counts tokens with the BPE encoding used by the backend model
// family. Construction failure is a fatal configuration error.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken builds the adapter for the named encoding.
func NewTiktoken(encoding string) (*Tiktoken, error) {
	if strings.TrimSpace(encoding) == "" {
		encoding = defaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load tiktoken encoding %q: %w", encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

// Count implements summarize.TokenCounter.
func (t *Tiktoken) Count(text string) int {
	if text == "" {
		return 0
	}
	return len(t.enc.Encode(text, nil, nil))
}

var _ summarize.TokenCounter = (*Tiktoken)(nil)

// Estimator approximates token counts without the BPE tables: roughly four
// runes per token, never fewer than the word count. Test use only; the
// running pipeline always counts with Tiktoken.
type Estimator struct{}

// NewEstimator constructs the heuristic counter.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Count implements summarize.TokenCounter.
func (e *Estimator) Count(text string) int {
	if text == "" {
		return 0
	}
	words := len(strings.Fields(text))
	tokens := utf8.RuneCountInString(text) / 4
	if tokens < words {
		tokens = words
	}
	if tokens == 0 {
		tokens = 1
	}
	return tokens
}

var _ summarize.TokenCounter = (*Estimator)(nil)
