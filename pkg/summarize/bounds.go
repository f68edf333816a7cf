package summarize

import "unicode/utf8"

// Decoding knobs shared by every request.
const (
	DefaultBeams = 4

	GlobalMaxTokens = 240
	GlobalMinTokens = 110
)

// EstimateTokens approximates the token count of text at four characters
// per token.
func EstimateTokens(text string) int {
	return utf8.RuneCountInString(text) / 4
}

// LengthBounds returns the max and min summary lengths, in tokens, for a
// chunk of text. Max scales with input length and is clamped to 80..600;
// min is 30% of max, clamped to 40..150.
func LengthBounds(text string) (maxTokens, minTokens int) {
	n := EstimateTokens(text)
	switch {
	case n < 150:
		maxTokens = max(80, int(float64(n)*0.65))
	case n < 500:
		maxTokens = int(float64(n) * 0.7)
	case n < 1000:
		maxTokens = int(float64(n) * 0.65)
	default:
		maxTokens = min(600, int(float64(n)*0.6))
	}
	maxTokens = max(80, min(600, maxTokens))
	minTokens = min(150, max(40, int(float64(maxTokens)*0.3)))
	return maxTokens, minTokens
}
