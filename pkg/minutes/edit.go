package minutes

import (
	"fmt"
	"strconv"
	"strings"

	mnerrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
)

// Set assigns value to the field at path. Paths are dot separated with
// numeric list indexes, for example "metadata.title", "summary",
// "attendees.0.role", "decisions.2" or "action_items.1.status".
func (r *Record) Set(path, value string) error {
	parts := strings.Split(path, ".")
	switch parts[0] {
	case "summary":
		if len(parts) != 1 {
			return badPath(path)
		}
		r.Summary = value
		return nil
	case "metadata":
		if len(parts) != 2 {
			return badPath(path)
		}
		f := metadataField(&r.Metadata, parts[1])
		if f == nil {
			return badPath(path)
		}
		*f = value
		return nil
	case "next_meeting":
		if len(parts) != 2 {
			return badPath(path)
		}
		f := nextMeetingField(&r.NextMeeting, parts[1])
		if f == nil {
			return badPath(path)
		}
		*f = value
		return nil
	}

	if len(parts) < 2 {
		return badPath(path)
	}
	i, err := strconv.Atoi(parts[1])
	if err != nil {
		return badPath(path)
	}

	switch parts[0] {
	case "decisions":
		if err := checkIndex(path, i, len(r.Decisions)); err != nil {
			return err
		}
		if len(parts) != 2 {
			return badPath(path)
		}
		r.Decisions[i] = value
	case "agenda":
		if err := checkIndex(path, i, len(r.Agenda)); err != nil {
			return err
		}
		if len(parts) != 3 || parts[2] != "title" {
			return badPath(path)
		}
		r.Agenda[i].Title = value
	case "attendees":
		if err := checkIndex(path, i, len(r.Attendees)); err != nil {
			return err
		}
		if len(parts) != 3 {
			return badPath(path)
		}
		switch parts[2] {
		case "name":
			r.Attendees[i].Name = value
		case "role":
			r.Attendees[i].Role = value
		default:
			return badPath(path)
		}
	case "action_items":
		if err := checkIndex(path, i, len(r.ActionItems)); err != nil {
			return err
		}
		if len(parts) != 3 {
			return badPath(path)
		}
		item := &r.ActionItems[i]
		switch parts[2] {
		case "task":
			item.Task = value
		case "responsible":
			item.Responsible = value
		case "deadline":
			item.Deadline = value
		case "status":
			s, err := StrictStatus(value)
			if err != nil {
				return err
			}
			item.Status = s
		default:
			return badPath(path)
		}
	default:
		return badPath(path)
	}
	return nil
}

// Remove deletes the list entry at path, such as "decisions.3".
func (r *Record) Remove(path string) error {
	parts := strings.Split(path, ".")
	if len(parts) != 2 {
		return badPath(path)
	}
	i, err := strconv.Atoi(parts[1])
	if err != nil {
		return badPath(path)
	}
	switch parts[0] {
	case "attendees":
		if err := checkIndex(path, i, len(r.Attendees)); err != nil {
			return err
		}
		r.Attendees = append(r.Attendees[:i], r.Attendees[i+1:]...)
	case "agenda":
		if err := checkIndex(path, i, len(r.Agenda)); err != nil {
			return err
		}
		r.Agenda = append(r.Agenda[:i], r.Agenda[i+1:]...)
	case "decisions":
		if err := checkIndex(path, i, len(r.Decisions)); err != nil {
			return err
		}
		r.Decisions = append(r.Decisions[:i], r.Decisions[i+1:]...)
	case "action_items":
		if err := checkIndex(path, i, len(r.ActionItems)); err != nil {
			return err
		}
		r.ActionItems = append(r.ActionItems[:i], r.ActionItems[i+1:]...)
	default:
		return badPath(path)
	}
	return nil
}

// AddAttendee appends an attendee unless the list is full.
func (r *Record) AddAttendee(a Attendee) error {
	if len(r.Attendees) >= MaxAttendees {
		return full("attendees", MaxAttendees)
	}
	r.Attendees = append(r.Attendees, a)
	return nil
}

// AddAgendaItem appends an agenda title.
func (r *Record) AddAgendaItem(title string) {
	r.Agenda = append(r.Agenda, AgendaItem{Title: title})
}

// AddDecision appends a decision unless the list is full.
func (r *Record) AddDecision(d string) error {
	if len(r.Decisions) >= MaxDecisions {
		return full("decisions", MaxDecisions)
	}
	r.Decisions = append(r.Decisions, d)
	return nil
}

// AddActionItem appends an action item unless the list is full. Empty
// responsible and deadline become NotSpecified and an empty status Pending.
func (r *Record) AddActionItem(a ActionItem) error {
	if len(r.ActionItems) >= MaxActionItems {
		return full("action_items", MaxActionItems)
	}
	if a.Responsible == "" {
		a.Responsible = NotSpecified
	}
	if a.Deadline == "" {
		a.Deadline = NotSpecified
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	r.ActionItems = append(r.ActionItems, a)
	return nil
}

// StrictStatus parses a user-entered status, rejecting text that does not
// name one of the known statuses or a synonym.
func StrictStatus(s string) (Status, error) {
	st := ParseStatus(s)
	if st == StatusPending && !strings.EqualFold(strings.TrimSpace(s), string(StatusPending)) {
		return "", fmt.Errorf("%w: unknown status %q", mnerrors.ErrValidation, s)
	}
	return st, nil
}

func metadataField(m *Metadata, name string) *string {
	switch name {
	case "title":
		return &m.Title
	case "date":
		return &m.Date
	case "time":
		return &m.Time
	case "venue":
		return &m.Venue
	case "organizer":
		return &m.Organizer
	case "recorder":
		return &m.Recorder
	}
	return nil
}

func nextMeetingField(n *NextMeeting, name string) *string {
	switch name {
	case "date":
		return &n.Date
	case "time":
		return &n.Time
	case "venue":
		return &n.Venue
	case "agenda":
		return &n.Agenda
	}
	return nil
}

func checkIndex(path string, i, n int) error {
	if i < 0 || i >= n {
		return fmt.Errorf("%w: %s: index %d out of range (%d entries)", mnerrors.ErrNotFound, path, i, n)
	}
	return nil
}

func badPath(path string) error {
	return fmt.Errorf("%w: unknown field path %q", mnerrors.ErrValidation, path)
}

func full(field string, limit int) error {
	return fmt.Errorf("%w: %s already has %d entries", mnerrors.ErrInvalidState, field, limit)
}
