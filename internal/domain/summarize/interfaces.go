package summarize

import (
	"context"
	"encoding/json"

	"github.com/civiclens/councilscribe/pkg/metrics"
)

// TokenCounter reports how many model-relevant units a text occupies.
// Implementations must be deterministic and non-decreasing under
// concatenation of non-empty strings.
type TokenCounter interface {
	Count(text string) int
}

// Fits reports whether text is within the unit budget.
func Fits(counter TokenCounter, text string, budget int) bool {
	return counter.Count(text) <= budget
}

// Chunk is a transient budget-fitting fragment of a larger text.
// Start and End are byte offsets into the source text.
type Chunk struct {
	Content string
	Start   int
	End     int
	Tokens  int
}

// Chunker splits a text into an ordered sequence of chunks, each within
// the unit budget. Concatenating chunk contents reproduces the input.
type Chunker interface {
	Split(text string, budget int) []Chunk
}

// GenerateRequest is a single prompt for the generative backend.
type GenerateRequest struct {
	Model       string
	Temperature float32
	MaxTokens   int
	Prompt      string
}

// GenerateResult is the structured output of one backend call. Raw keeps
// the unparsed backend payload for offline evaluation only.
type GenerateResult struct {
	Headline string
	Body     string
	Raw      json.RawMessage
	Usage    metrics.TokenUsage
}

// BackendClient sends a prompt to a text-generation service. Transient
// failures are retried internally; exhausted retries surface as a
// backend_unavailable error, malformed responses as backend_response_invalid.
type BackendClient interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
}
