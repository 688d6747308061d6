package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimatorCount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"single short word", "hi", 1},
		{"word count dominates short words", "a b c d e", 5},
		{"rune count dominates long runs", strings.Repeat("x", 40), 10},
		{"multibyte runes counted once", strings.Repeat("語", 8), 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, NewEstimator().Count(tc.text))
		})
	}
}

func TestEstimatorMonotonicOnRepeats(t *testing.T) {
	e := NewEstimator()
	prev := 0
	for i := 1; i <= 8; i++ {
		n := e.Count(strings.Repeat("council meeting minutes ", i))
		require.Greater(t, n, prev)
		prev = n
	}
}

func TestNewTiktokenRejectsUnknownEncoding(t *testing.T) {
	_, err := NewTiktoken("no_such_encoding")
	require.Error(t, err)
}
