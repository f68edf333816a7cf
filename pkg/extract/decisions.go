package extract

import (
	"regexp"
	"strings"

	"github.com/otherjamesbrown/minutes-cli/pkg/minutes"
)

// Matcher is a named sentence pattern.
type Matcher struct {
	Name  string
	Regex *regexp.Regexp
}

// DecisionMatchers mark a sentence as a decision. Order only affects which
// matcher is reported; any match keeps the sentence.
var DecisionMatchers = []Matcher{
	{"collective_decision", regexp.MustCompile(`(?i)\b(?:we|they|team|everyone|all)\s+(?:decided|agreed|approved|concluded|resolved|determined|will)\b`)},
	{"passive_decision", regexp.MustCompile(`(?i)\b(?:it was|has been)\s+(?:decided|agreed|approved|concluded|resolved)\b`)},
	{"decision_reached", regexp.MustCompile(`(?i)\b(?:decision|agreement|approval|resolution)\s+(?:was|is|has been)\s+(?:made|reached)\b`)},
	{"consensus", regexp.MustCompile(`(?i)\b(?:final decision|final|consensus)\s+(?:is|was|reached)\b`)},
	{"finalize", regexp.MustCompile(`(?i)\b(?:let'?s|let us)\s+(?:finalize|confirm|agree on)\b`)},
	{"approval_verb", regexp.MustCompile(`(?i)\b(?:agreed|approved|accepted|endorsed|ratified|confirmed)\b`)},
	{"decision_label", regexp.MustCompile(`(?i)\b(?:decision|agreed)[:,\s]`)},
}

// MatchDecision returns the name of the first decision matcher that matches
// sentence.
func MatchDecision(sentence string) (string, bool) {
	for _, m := range DecisionMatchers {
		if m.Regex.MatchString(sentence) {
			return m.Name, true
		}
	}
	return "", false
}

// ExtractDecisions keeps every sentence that matches a decision matcher,
// verbatim, in order, without exact duplicates.
func ExtractDecisions(text string) []string {
	decisions := make([]string, 0)
	seen := make(map[string]bool)
	for _, s := range Sentences(text) {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		if _, ok := MatchDecision(s); !ok {
			continue
		}
		seen[s] = true
		decisions = append(decisions, s)
		if len(decisions) == minutes.MaxDecisions {
			break
		}
	}
	return decisions
}
