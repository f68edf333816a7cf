package minutes

import (
	"regexp"

	"github.com/otherjamesbrown/minutes-cli/pkg/transcript"
)

var syntheticSpeakerRegex = regexp.MustCompile(`(?i)^Speaker\s+\d+$`)

// TopicFunc ranks the key topics of a text.
type TopicFunc func(text string) []string

// Builder assembles a Record from segments, the final summary and the
// extractor's findings. It does no extraction of its own beyond ranking
// agenda topics over the summary.
type Builder struct {
	topics TopicFunc
}

// NewBuilder creates a Builder that derives agenda titles with topics. A nil
// topics func leaves the agenda to the extractor's key topics.
func NewBuilder(topics TopicFunc) *Builder {
	return &Builder{topics: topics}
}

// Build composes the record. Every slice field of the result is non-nil.
//
// Attendees are the named segment speakers in order of first appearance,
// followed by extracted attendees not already listed; synthetic "Speaker N"
// labels are skipped. The agenda comes from the summary's key topics, or
// the transcript's key topics when the summary yields none.
func (b *Builder) Build(segs []transcript.Segment, summary string, ex Extraction) *Record {
	r := &Record{
		Metadata:    ex.Metadata,
		Summary:     summary,
		Decisions:   append([]string(nil), ex.Decisions...),
		NextMeeting: ex.NextMeeting,
	}

	seen := make(map[string]bool)
	addAttendee := func(a Attendee) {
		if a.Name == "" || seen[a.Name] || len(r.Attendees) == MaxAttendees {
			return
		}
		seen[a.Name] = true
		r.Attendees = append(r.Attendees, a)
	}
	for _, s := range segs {
		if !syntheticSpeakerRegex.MatchString(s.Speaker) {
			addAttendee(Attendee{Name: s.Speaker})
		}
	}
	for _, a := range ex.Attendees {
		addAttendee(a)
	}

	var topics []string
	if b.topics != nil && summary != "" {
		topics = b.topics(summary)
	}
	if len(topics) == 0 {
		topics = ex.KeyTopics
	}
	for _, t := range topics {
		r.Agenda = append(r.Agenda, AgendaItem{Title: t})
	}

	for _, a := range ex.ActionItems {
		if !a.Status.Valid() {
			a.Status = ParseStatus(string(a.Status))
		}
		r.ActionItems = append(r.ActionItems, a)
	}
	if len(r.Decisions) > MaxDecisions {
		r.Decisions = r.Decisions[:MaxDecisions]
	}
	if len(r.ActionItems) > MaxActionItems {
		r.ActionItems = r.ActionItems[:MaxActionItems]
	}

	r.ensureSlices()
	return r
}
