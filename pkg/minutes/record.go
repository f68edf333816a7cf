// Package minutes defines the meeting record and the passes that assemble,
// sanitize, validate and render it.
package minutes

import "strings"

// Status is the progress state of an action item.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In progress"
	StatusCompleted  Status = "Completed"
	StatusUpcoming   Status = "Upcoming"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusUpcoming}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus maps free-form status text onto the enum. Unknown or empty
// values become StatusPending.
func ParseStatus(s string) Status {
	switch strings.Join(strings.Fields(strings.ToLower(strings.NewReplacer("-", " ", "_", " ").Replace(s))), " ") {
	case "in progress", "ongoing", "started", "wip":
		return StatusInProgress
	case "completed", "complete", "done", "finished", "closed":
		return StatusCompleted
	case "upcoming", "scheduled", "planned":
		return StatusUpcoming
	default:
		return StatusPending
	}
}

// Record size limits.
const (
	MaxAttendees   = 20
	MaxDecisions   = 15
	MaxActionItems = 15
)

// NotSpecified fills action item fields the transcript did not state.
const NotSpecified = "Not specified"

// Metadata holds the header fields of the minutes.
type Metadata struct {
	Title     string `json:"title" yaml:"title"`
	Date      string `json:"date" yaml:"date"`
	Time      string `json:"time" yaml:"time"`
	Venue     string `json:"venue" yaml:"venue"`
	Organizer string `json:"organizer" yaml:"organizer"`
	Recorder  string `json:"recorder" yaml:"recorder"`
}

// Attendee is one participant.
type Attendee struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	Role string `json:"role" yaml:"role"`
}

// AgendaItem is one agenda entry.
type AgendaItem struct {
	Title string `json:"title" yaml:"title" validate:"required"`
}

// ActionItem is a task assigned during the meeting.
type ActionItem struct {
	Task        string `json:"task" yaml:"task" validate:"required"`
	Responsible string `json:"responsible" yaml:"responsible"`
	Deadline    string `json:"deadline" yaml:"deadline"`
	Status      Status `json:"status" yaml:"status" validate:"minutes_status"`
}

// NextMeeting describes the follow-up meeting, if one was announced.
type NextMeeting struct {
	Date   string `json:"date" yaml:"date"`
	Time   string `json:"time" yaml:"time"`
	Venue  string `json:"venue" yaml:"venue"`
	Agenda string `json:"agenda" yaml:"agenda"`
}

// Record is the complete set of minutes for one meeting. Every slice field
// is non-nil once built.
type Record struct {
	Metadata    Metadata     `json:"metadata" yaml:"metadata"`
	Attendees   []Attendee   `json:"attendees" yaml:"attendees" validate:"max=20,dive"`
	Agenda      []AgendaItem `json:"agenda" yaml:"agenda" validate:"dive"`
	Summary     string       `json:"summary" yaml:"summary"`
	Decisions   []string     `json:"decisions" yaml:"decisions" validate:"max=15,dive,required"`
	ActionItems []ActionItem `json:"action_items" yaml:"action_items" validate:"max=15,dive"`
	NextMeeting NextMeeting  `json:"next_meeting" yaml:"next_meeting"`
}

// Extraction is everything the pattern extractor finds in a transcript.
type Extraction struct {
	Metadata    Metadata     `json:"metadata" yaml:"metadata"`
	Attendees   []Attendee   `json:"attendees" yaml:"attendees"`
	Decisions   []string     `json:"decisions" yaml:"decisions"`
	ActionItems []ActionItem `json:"action_items" yaml:"action_items"`
	KeyTopics   []string     `json:"key_topics" yaml:"key_topics"`
	NextMeeting NextMeeting  `json:"next_meeting" yaml:"next_meeting"`
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	out := *r
	out.Attendees = append([]Attendee(nil), r.Attendees...)
	out.Agenda = append([]AgendaItem(nil), r.Agenda...)
	out.Decisions = append([]string(nil), r.Decisions...)
	out.ActionItems = append([]ActionItem(nil), r.ActionItems...)
	out.ensureSlices()
	return &out
}

func (r *Record) ensureSlices() {
	if r.Attendees == nil {
		r.Attendees = make([]Attendee, 0)
	}
	if r.Agenda == nil {
		r.Agenda = make([]AgendaItem, 0)
	}
	if r.Decisions == nil {
		r.Decisions = make([]string, 0)
	}
	if r.ActionItems == nil {
		r.ActionItems = make([]ActionItem, 0)
	}
}
