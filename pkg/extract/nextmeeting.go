package extract

import (
	"regexp"

	"github.com/otherjamesbrown/minutes-cli/pkg/minutes"
)

var (
	nextMeetingBlockRegex = regexp.MustCompile(`(?is)\b(?:next meeting|upcoming meeting|follow-up):\s*(.+?)(?:\n\s*\n|---|\z)`)

	nextDateRegex   = regexp.MustCompile(`(?i)\b(?:date|on):\s*([^\n]+)`)
	nextTimeRegex   = regexp.MustCompile(`(?i)\b(?:time|at):\s*([^\n]+)`)
	nextVenueRegex  = regexp.MustCompile(`(?i)\b(?:venue|location):\s*([^\n]+)`)
	nextAgendaRegex = regexp.MustCompile(`(?i)\b(?:agenda|topics?):\s*([^\n]+)`)
	bareDateRegex   = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`)
)

// ExtractNextMeeting reads date, time, venue and agenda labels inside a
// "Next meeting:" block. An unlabeled DD/MM/YYYY in the block serves as the
// date when no date label is present.
func ExtractNextMeeting(text string) minutes.NextMeeting {
	var nm minutes.NextMeeting
	m := nextMeetingBlockRegex.FindStringSubmatch(text)
	if m == nil {
		return nm
	}
	section := m[1]

	nm.Date = firstGroup(nextDateRegex, section)
	nm.Time = firstGroup(nextTimeRegex, section)
	nm.Venue = firstGroup(nextVenueRegex, section)
	nm.Agenda = firstGroup(nextAgendaRegex, section)
	if nm.Date == "" {
		nm.Date = firstGroup(bareDateRegex, section)
	}
	return nm
}
