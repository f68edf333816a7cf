// Package extract pulls structured meeting entities out of raw transcript
// text with ordered pattern matchers and TF-IDF ranking.
//
// Every extraction task degrades to an empty or default value instead of
// failing, so a sparse transcript still yields a well-formed result.
package extract

import (
	"context"
	"time"

	mnerrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
	"github.com/otherjamesbrown/minutes-cli/pkg/minutes"
)

// Extractor runs all extraction tasks over one transcript.
type Extractor struct {
	ner        PersonRecognizer
	now        func() time.Time
	topicCount int
	logger     logging.Logger
	fallbacks  FallbackRecorder
}

// FallbackRecorder is notified when the person recognizer fails.
type FallbackRecorder interface {
	RecordFallback(stage string, code mnerrors.ErrorCode)
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRecognizer sets the PERSON recognizer used as the last attendee source.
func WithRecognizer(ner PersonRecognizer) Option {
	return func(e *Extractor) {
		e.ner = ner
	}
}

// WithClock sets the clock behind default titles and dates.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// WithTopicCount sets how many key topics to rank.
func WithTopicCount(n int) Option {
	return func(e *Extractor) {
		e.topicCount = n
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(e *Extractor) {
		e.logger = l
	}
}

// WithFallbackRecorder sets the recorder notified on recognizer failures.
func WithFallbackRecorder(r FallbackRecorder) Option {
	return func(e *Extractor) {
		e.fallbacks = r
	}
}

// NewExtractor creates an Extractor using CapitalizedNameRecognizer and the
// wall clock unless overridden.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		ner:        CapitalizedNameRecognizer{},
		now:        time.Now,
		topicCount: DefaultTopicCount,
		logger:     logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract runs metadata, attendee, decision, action item, topic and next
// meeting extraction over the raw transcript text.
func (e *Extractor) Extract(ctx context.Context, text string) minutes.Extraction {
	log := e.logger.WithContext(ctx)

	attendees, err := ExtractAttendees(ctx, text, e.ner)
	if err != nil {
		code := mnerrors.CodeOf(err, mnerrors.StageExtract)
		log.Warn("person recognizer failed, keeping pattern attendees",
			logging.F("code", string(code)),
			logging.Err(err),
		)
		if e.fallbacks != nil {
			e.fallbacks.RecordFallback(mnerrors.StageExtract, code)
		}
	}

	ex := minutes.Extraction{
		Metadata:    ExtractMetadata(text, e.now()),
		Attendees:   attendees,
		Decisions:   ExtractDecisions(text),
		ActionItems: ExtractActionItems(text),
		KeyTopics:   e.KeyTopics(DiscussionText(text)),
		NextMeeting: ExtractNextMeeting(text),
	}

	log.Debug("extraction complete",
		logging.F("attendees", len(ex.Attendees)),
		logging.F("decisions", len(ex.Decisions)),
		logging.F("action_items", len(ex.ActionItems)),
		logging.F("topics", len(ex.KeyTopics)),
	)
	return ex
}

// KeyTopics ranks topics of text using the configured topic count.
func (e *Extractor) KeyTopics(text string) []string {
	return KeyTopics(text, e.topicCount)
}
