package moderation

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// TestModerator_Censor
// The dictionary uses specific words to avoid partial collisions (e.g., "he" inside "The")
func TestModerator_Censor(t *testing.T) {
	req := require.New(t)
	dictionary := []string{"badger", "snake", "mushroom"}
	mod, err := NewModerator(dictionary, replacementChar, slog.Default())
	req.NoError(err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Simple word and space preservation",
			input:    "The badger is here",
			expected: "The ****** is here",
		},
		{
			name:     "Multiple occurrences and preserved spacing",
			input:    "badger badger badger",
			expected: "****** ****** ******",
		},
		{
			name: "Leet speak and internal punctuation",
			// B (index 9) . 4 . d . g . € r (index 20) -> 10 characters
			input:    "Look at B.4.d.g.€r !",
			expected: "Look at ********** !",
		},
		{
			name:     "Uppercase and extreme noise",
			input:    "S-N-A-K-E is a B.A.D.G.E.R",
			expected: "********* is a ***********",
		},
		{
			name:     "Accents and special characters (UTF-8)",
			input:    "Un été avec un badger",
			expected: "Un été avec un ******",
		},
		{
			name:     "Word adjacent to trailing punctuation",
			input:    "I love badger!",
			expected: "I love ******!",
		},
		{
			name:     "Nothing to censor",
			input:    "Newsroom is amazing",
			expected: "Newsroom is amazing",
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := mod.Censor(tt.input)
			req.Equal(tt.expected, content, "test=%s,", tt.name)
		})
	}
}

func TestModerator_CornerCases(t *testing.T) {
	req := require.New(t)

	// Given real noise and not Leet Speak associated
	dictionary := []string{"...", ",,,", "", "badger"}
	mod, err := NewModerator(dictionary, replacementChar, slog.Default())
	req.NoError(err)

	// Then the sentence is censored
	content := mod.Censor("The badger is safe")
	req.Equal("The ****** is safe", content)

	// Then real noise is uncensored
	content = mod.Censor("Hello ...")
	req.Equal("Hello ...", content)
}

func TestLoadWordlists(t *testing.T) {
	req := require.New(t)

	lists, err := LoadWordlists()
	req.NoError(err)
	req.Contains(lists.Languages, "en")
	req.NotEmpty(lists.Words)
	for _, word := range lists.Words {
		req.NotEmpty(word)
		req.NotContains(word, "#")
	}
}
