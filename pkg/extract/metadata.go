package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/otherjamesbrown/minutes-cli/pkg/minutes"
)

var (
	titleRegex = regexp.MustCompile(`(?i)\btitle:[ \t]*(.+)`)

	// Tried in order; the first pattern that matches anywhere wins, so a
	// labeled date beats a bare one that appears earlier in the text.
	dateRegexes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:date|on):\s*(\d{1,2}/\d{1,2}/\d{4})`),
		regexp.MustCompile(`(?i)\b(?:date|on):\s*(\d{1,2}\s+[A-Z][a-z]+\s+\d{4})`),
		regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{4})`),
	}

	clockTimeRegex = regexp.MustCompile(`(?i)\btime:\s*(\d{1,2}[:.]\d{2}\s*(?:AM|PM)?(?:\s*[-–]\s*\d{1,2}[:.]\d{2}\s*(?:AM|PM)?)?)`)
	timeRegex      = regexp.MustCompile(`(?i)\btime:[ \t]*(.+)`)
	venueRegex     = regexp.MustCompile(`(?i)\b(?:venue|location|place):[ \t]*(.+)`)
	organizerRegex = regexp.MustCompile(`(?i)\b(?:organizer|organiser|organized by|organised by):[ \t]*(.+)`)
	recorderRegex  = regexp.MustCompile(`(?i)\b(?:recorder|recorded by|minutes by):[ \t]*(.+)`)
)

// ExtractMetadata reads the labeled header fields of a transcript. A missing
// title becomes "Meeting Summary YYYY-MM-DD" and a missing date becomes
// DD/MM/YYYY, both taken from now.
func ExtractMetadata(text string, now time.Time) minutes.Metadata {
	md := minutes.Metadata{
		Title:     firstGroup(titleRegex, text),
		Date:      ExtractDate(text),
		Time:      firstGroup(clockTimeRegex, text),
		Venue:     firstGroup(venueRegex, text),
		Organizer: firstGroup(organizerRegex, text),
		Recorder:  firstGroup(recorderRegex, text),
	}
	if md.Time == "" {
		md.Time = firstGroup(timeRegex, text)
	}
	if md.Title == "" {
		md.Title = "Meeting Summary " + now.Format("2006-01-02")
	}
	if md.Date == "" {
		md.Date = now.Format("02/01/2006")
	}
	return md
}

// ExtractDate returns the meeting date using the first date pattern that
// matches, or "".
func ExtractDate(text string) string {
	for _, re := range dateRegexes {
		if d := firstGroup(re, text); d != "" {
			return d
		}
	}
	return ""
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
