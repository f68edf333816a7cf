package transcript

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	genericSpeakerRegex = regexp.MustCompile(`(?i)^Speaker\s+\d+$`)
	properNameRegex     = regexp.MustCompile(`^[A-Z][A-Za-z.\-\s]+$`)
	allDigitsRegex      = regexp.MustCompile(`^\d+$`)
	pronounSuffixRegex  = regexp.MustCompile(`\s*\((?:she|he|they)(?:/(?:her|him|them|they|she|he))*\)\s*$`)
)

const (
	maxProperNameLength    = 50
	minSpeakerNameLength   = 2
	syntheticSpeakerFormat = "Speaker %d"
)

// NormalizeName strips pronoun suffixes such as "(she/her)" and collapses
// internal whitespace.
func NormalizeName(name string) string {
	name = pronounSuffixRegex.ReplaceAllString(name, "")
	return strings.Join(strings.Fields(name), " ")
}

// IsGenericSpeaker reports whether name is a synthetic "Speaker N" label.
func IsGenericSpeaker(name string) bool {
	return genericSpeakerRegex.MatchString(strings.TrimSpace(name))
}

// speakerLabeler maps raw speaker names to the labels stored on segments.
// Proper names and "Speaker N" labels are kept; anything else gets a fresh
// synthetic label numbered in order of first appearance.
type speakerLabeler struct {
	seen    map[string]string
	counter int
}

func newSpeakerLabeler() *speakerLabeler {
	return &speakerLabeler{seen: make(map[string]string), counter: 1}
}

// label returns the label for raw, or false if raw is not a usable name.
func (l *speakerLabeler) label(raw string) (string, bool) {
	name := strings.Join(strings.Fields(raw), " ")
	if allDigitsRegex.MatchString(name) || len(name) < minSpeakerNameLength {
		return "", false
	}
	if label, ok := l.seen[name]; ok {
		return label, true
	}

	var label string
	switch {
	case genericSpeakerRegex.MatchString(name):
		label = name
	case len(name) <= maxProperNameLength && properNameRegex.MatchString(name):
		label = name
	default:
		label = l.next()
	}
	l.seen[name] = label
	return label, true
}

// synthetic always assigns a "Speaker N" label to a newly seen raw name.
func (l *speakerLabeler) synthetic(raw string) string {
	if label, ok := l.seen[raw]; ok {
		return label
	}
	label := l.next()
	l.seen[raw] = label
	return label
}

func (l *speakerLabeler) next() string {
	label := fmt.Sprintf(syntheticSpeakerFormat, l.counter)
	l.counter++
	return label
}

// Speakers returns the distinct speaker labels of segs in order of first appearance.
func Speakers(segs []Segment) []string {
	speakers := make([]string, 0)
	seen := make(map[string]bool)
	for _, s := range segs {
		if s.Speaker == "" || seen[s.Speaker] {
			continue
		}
		seen[s.Speaker] = true
		speakers = append(speakers, s.Speaker)
	}
	return speakers
}
