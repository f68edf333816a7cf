package extract

import (
	"context"
	"regexp"
	"strings"
)

// PersonRecognizer finds PERSON entities in text.
type PersonRecognizer interface {
	Persons(ctx context.Context, text string) ([]string, error)
}

var capitalizedRunRegex = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,2}\b`)

// CapitalizedNameRecognizer is a dependency-free PersonRecognizer. It treats
// runs of one to three capitalized words as names. A word opening a
// sentence is ignored, as is any run holding a stopword or a known
// non-person term.
type CapitalizedNameRecognizer struct{}

// Persons implements PersonRecognizer.
func (CapitalizedNameRecognizer) Persons(ctx context.Context, text string) ([]string, error) {
	var names []string
	for _, sentence := range Sentences(text) {
		if err := ctx.Err(); err != nil {
			return names, err
		}
		for _, loc := range capitalizedRunRegex.FindAllStringIndex(sentence, -1) {
			name := sentence[loc[0]:loc[1]]
			// The first word of a sentence or label is capitalized anyway.
			if loc[0] == 0 || strings.HasSuffix(strings.TrimSpace(sentence[:loc[0]]), ":") {
				_, rest, ok := strings.Cut(name, " ")
				if !ok {
					continue
				}
				name = strings.TrimSpace(rest)
			}
			if looksLikePerson(name) {
				names = append(names, name)
			}
		}
	}
	return names, nil
}

func looksLikePerson(name string) bool {
	for _, w := range strings.Fields(strings.ToLower(name)) {
		if englishStopwords[w] || genericTerms[w] || personStoplist[w] || monthsAndDays[w] {
			return false
		}
	}
	return true
}

var monthsAndDays = toSet(`
january february march april may june july august september october
november december monday tuesday wednesday thursday friday saturday sunday
`)
