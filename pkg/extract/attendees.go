package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/otherjamesbrown/minutes-cli/pkg/minutes"
)

var (
	attendeeBlockRegex = regexp.MustCompile(`(?is)\b(?:attendees|participants|present):\s*(.+?)(?:\n\s*\n|---|\z)`)
	nameRoleSplitRegex = regexp.MustCompile(`\s*[-–—]\s*`)
	leadingNameRegex   = regexp.MustCompile(`^([A-Z][a-zA-Z\s.]+)`)

	selfIntroRegex = regexp.MustCompile(`(?:(?i:\bI am|\bI'm|\bthis is|\bmy name is))\s+([A-Z][a-z]+)`)
	roleIntroRegex = regexp.MustCompile(`\b([A-Z][a-z]+),\s+((?i:project coordinator|technical head|finance head|sponsorship|publicity|marketing|logistics)(?:\s+(?i:head|lead|coordinator|team))?)`)
)

// ExtractAttendees finds participants from a labeled attendee block, then
// from self-introductions. Only when both find nothing is ner consulted.
// Names are deduplicated case-sensitively and the list is capped.
func ExtractAttendees(ctx context.Context, text string, ner PersonRecognizer) ([]minutes.Attendee, error) {
	attendees := make([]minutes.Attendee, 0)
	seen := make(map[string]bool)
	add := func(name, role string) {
		if !isNameLike(name) || seen[name] {
			return
		}
		seen[name] = true
		attendees = append(attendees, minutes.Attendee{Name: name, Role: role})
	}

	if m := attendeeBlockRegex.FindStringSubmatch(text); m != nil {
		for _, line := range strings.Split(m[1], "\n") {
			for _, entry := range strings.FieldsFunc(line, func(r rune) bool { return r == ',' || r == ';' }) {
				entry = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(entry), "-*•"))
				if entry == "" {
					continue
				}
				if parts := nameRoleSplitRegex.Split(entry, 2); len(parts) == 2 {
					add(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
					continue
				}
				if nm := leadingNameRegex.FindStringSubmatch(entry); nm != nil {
					add(strings.TrimSpace(nm[1]), "")
				}
			}
		}
	}

	for _, m := range selfIntroRegex.FindAllStringSubmatch(text, -1) {
		if name := m[1]; len(name) > 2 && !seen[name] {
			add(name, introRole(text, name))
		}
	}
	for _, m := range roleIntroRegex.FindAllStringSubmatch(text, -1) {
		if name := m[1]; len(name) > 2 {
			add(name, strings.TrimSpace(m[2]))
		}
	}

	var err error
	if len(attendees) == 0 && ner != nil {
		var persons []string
		persons, err = ner.Persons(ctx, text)
		for _, p := range persons {
			name := strings.TrimSpace(p)
			if len(name) > 2 && !personStoplist[strings.ToLower(name)] {
				add(name, "")
			}
		}
	}

	if len(attendees) > minutes.MaxAttendees {
		attendees = attendees[:minutes.MaxAttendees]
	}
	return attendees, err
}

// isNameLike rejects block lines that are prose rather than a name.
func isNameLike(name string) bool {
	if name == "" || len(name) > maxNameLength {
		return false
	}
	return len(strings.Fields(name)) <= maxNameWords
}

const (
	maxNameLength = 50
	maxNameWords  = 4
)

// introRole returns the text following "Name," in a self-introduction, such
// as the role in "Priya, finance head".
func introRole(text, name string) string {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(name) + `,\s+([^.\n]+)`)
	if err != nil {
		return ""
	}
	return firstGroup(re, text)
}
