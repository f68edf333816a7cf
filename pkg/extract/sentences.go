package extract

import (
	"strings"
	"unicode"
)

// abbreviations never end a sentence even when followed by whitespace.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"sr": true, "jr": true, "st": true, "vs": true, "e.g": true,
	"i.e": true, "approx": true, "dept": true,
}

// Sentences splits text into sentences. A sentence ends at '.', '!' or '?'
// followed by whitespace, or at a line break. Common abbreviations and
// initials such as "Dr." or "J." do not end a sentence.
func Sentences(text string) []string {
	out := make([]string, 0)
	for _, line := range strings.Split(text, "\n") {
		out = append(out, splitLine(line)...)
	}
	return out
}

func splitLine(line string) []string {
	var out []string
	runes := []rune(line)
	start := 0
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Swallow closing quotes and repeated terminators.
		end := i + 1
		for end < len(runes) && strings.ContainsRune(".!?\"')]", runes[end]) {
			end++
		}
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			i = end - 1
			continue
		}
		if r == '.' && isAbbreviation(runes[start:i]) {
			i = end - 1
			continue
		}
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			out = append(out, s)
		}
		start = end
		i = end - 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}

// isAbbreviation reports whether the word right before a period is a known
// abbreviation or a single capital initial.
func isAbbreviation(before []rune) bool {
	j := len(before)
	for j > 0 && !unicode.IsSpace(before[j-1]) {
		j--
	}
	word := strings.TrimLeft(string(before[j:]), "([\"'")
	if word == "" {
		return false
	}
	w := []rune(word)
	if len(w) == 1 && unicode.IsUpper(w[0]) && w[0] != 'I' {
		return true
	}
	return abbreviations[strings.ToLower(word)]
}
