package summarize

import (
	"regexp"
	"strings"
)

const (
	maxSummaryBullets    = 8
	maxFallbackBullets   = 4
	minBulletWords       = 4
	DefaultMaxInputChars = 3500
	globalFallbackChars  = 600
)

const globalPrompt = "Create a clear professional meeting summary without speaker names or filler words.\n" +
	"Format:\n" +
	"1 paragraph (2-4 lines)\n" +
	"Then 4-8 bullet points of the main decisions / insights / next steps.\n\n" +
	"Transcript:"

// instructionPhrases mark prompt text echoed back by a model.
var instructionPhrases = []string{
	"create a clear professional meeting summary",
	"format:",
	"transcript:",
	"speaker names or filler words",
}

var (
	genericLabelRegex = regexp.MustCompile(`(?im)^\s*Speaker\s*\d*:?\s*`)
	nameLabelRegex    = regexp.MustCompile(`(?im)^\s*(?:[A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,2})\s*:\s+`)
	globalFillerRegex = regexp.MustCompile(`(?i)\b(?:oo|umm+|aa+|ok|yes|done|trending now|I'll finish|I will finish)\b`)
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	bulletPrefixRegex = regexp.MustCompile(`^[\-•*\s]+`)
)

// CleanForGlobal strips line-leading speaker labels and filler tokens and
// collapses whitespace. Labels inside a line, such as "Budget: $5k", stay.
func CleanForGlobal(text string) string {
	if text == "" {
		return ""
	}
	text = genericLabelRegex.ReplaceAllString(text, "")
	text = nameLabelRegex.ReplaceAllString(text, "")
	text = globalFillerRegex.ReplaceAllString(text, "")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func looksLikeInstruction(line string) bool {
	lower := strings.ToLower(line)
	for _, p := range instructionPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// FormatSummary shapes summary text into a short intro paragraph followed
// by up to eight "- " bullets. Bullets the text already carries are kept;
// otherwise the first two sentences form the paragraph and later sentences
// of four or more words become bullets. Echoed prompt lines are dropped.
func FormatSummary(text string) string {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return ""
	}

	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" && !looksLikeInstruction(l) {
			lines = append(lines, l)
		}
	}
	if len(lines) >= 2 && hasBullet(lines[1:]) {
		out := []string{lines[0]}
		for _, l := range lines[1:] {
			if b := strings.TrimSpace(strings.TrimLeft(l, "-• ")); b != "" {
				out = append(out, "- "+b)
				if len(out) > maxSummaryBullets {
					break
				}
			}
		}
		return strings.Join(out, "\n")
	}

	var sentences []string
	for _, s := range splitSentences(raw) {
		if !looksLikeInstruction(s) {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) == 0 {
		return raw
	}

	intro := strings.Join(sentences[:min(2, len(sentences))], " ")
	var bullets []string
	for _, s := range sentences[min(2, len(sentences)):] {
		b := strings.TrimSpace(bulletPrefixRegex.ReplaceAllString(s, ""))
		if len(strings.Fields(b)) < minBulletWords {
			continue
		}
		bullets = append(bullets, "- "+b)
		if len(bullets) == maxSummaryBullets {
			break
		}
	}
	if len(bullets) == 0 && len(sentences) > 2 {
		for _, s := range sentences[2:min(6, len(sentences))] {
			if b := strings.TrimSpace(bulletPrefixRegex.ReplaceAllString(s, "")); b != "" {
				bullets = append(bullets, "- "+b)
			}
			if len(bullets) == maxFallbackBullets {
				break
			}
		}
	}
	if len(bullets) == 0 {
		return intro
	}
	return strings.Join(append([]string{intro}, bullets...), "\n")
}

func hasBullet(lines []string) bool {
	for _, l := range lines {
		if strings.HasPrefix(l, "-") || strings.HasPrefix(l, "•") {
			return true
		}
	}
	return false
}

// splitSentences collapses whitespace and splits after '.', '!' or '?'
// wherever whitespace follows.
func splitSentences(text string) []string {
	var out []string
	var cur []string
	for _, w := range strings.Fields(text) {
		cur = append(cur, w)
		if strings.ContainsAny(w[len(w)-1:], ".!?") {
			out = append(out, strings.Join(cur, " "))
			cur = cur[:0]
		}
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}
