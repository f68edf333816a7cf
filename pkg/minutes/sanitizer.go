package minutes

import (
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Size ceilings applied by Sanitize.
const (
	MaxTaskChars      = 600
	TruncatedTaskLen  = 400
	MaxDecisionChars  = 500
	minResidualChars  = 15
	minResidualWords  = 3
	maxSanitizePasses = 8
)

// InstructionPhrases mark text a summarization model echoed from its own
// prompt. Decisions and action items containing one are dropped.
var InstructionPhrases = []string{
	"create a clear professional meeting summary",
	"format:",
	"transcript:",
	"speaker names or filler words",
	"return only a json object",
	"you are a meeting minutes assistant",
	"bullet points of the main decisions",
}

var (
	boxDrawingRegex     = regexp.MustCompile(`[\x{2500}-\x{257F}\x{2580}-\x{259F}\x{25A0}-\x{25FF}]+`)
	dashRunRegex        = regexp.MustCompile(`-[ \t]*-+`)
	leadTimestampRegex  = regexp.MustCompile(`^\[?\d{1,2}:\d{2}(?::\d{2})?\]?\s*`)
	leadGenericTagRegex = regexp.MustCompile(`(?i)^\[?Speaker\s*\d+\]?\s*:\s*`)
	sanitizeFillerRegex = regexp.MustCompile(`(?i)\b(?:um+|uh+|hmm+|aa+|oo|you know|i mean)\b`)
	horizontalRunRegex  = regexp.MustCompile(`[ \t]+`)
	spaceRunRegex       = regexp.MustCompile(`\s+`)
)

// Sanitize returns a cleaned copy of r ready for export. It strips speaker
// labels, filler tokens and box-drawing characters from every text field,
// drops decisions and action items that repeat an agenda title or echo
// prompt boilerplate, enforces size ceilings, normalizes statuses, and
// removes case-insensitive duplicates. Sanitize(Sanitize(r)) equals
// Sanitize(r).
func Sanitize(r *Record) *Record {
	if r == nil {
		r = &Record{}
	}
	cur := r.Clone()
	for i := 0; i < maxSanitizePasses; i++ {
		next := sanitizeOnce(cur)
		if reflect.DeepEqual(next, cur) {
			break
		}
		cur = next
	}
	return cur
}

func sanitizeOnce(in *Record) *Record {
	labels := speakerLabelRegex(in.Attendees)
	clean := func(s string) string { return cleanField(s, labels) }

	out := &Record{
		Metadata: Metadata{
			Title:     clean(in.Metadata.Title),
			Date:      clean(in.Metadata.Date),
			Time:      clean(in.Metadata.Time),
			Venue:     clean(in.Metadata.Venue),
			Organizer: clean(in.Metadata.Organizer),
			Recorder:  clean(in.Metadata.Recorder),
		},
		Summary: cleanSummary(in.Summary, labels),
		NextMeeting: NextMeeting{
			Date:   clean(in.NextMeeting.Date),
			Time:   clean(in.NextMeeting.Time),
			Venue:  clean(in.NextMeeting.Venue),
			Agenda: clean(in.NextMeeting.Agenda),
		},
	}

	seen := make(map[string]bool)
	for _, a := range in.Attendees {
		a.Name, a.Role = clean(a.Name), clean(a.Role)
		key := strings.ToLower(a.Name)
		if a.Name == "" || seen[key] || len(out.Attendees) == MaxAttendees {
			continue
		}
		seen[key] = true
		out.Attendees = append(out.Attendees, a)
	}

	var titles []string
	seen = make(map[string]bool)
	for _, item := range in.Agenda {
		title := clean(item.Title)
		key := strings.ToLower(title)
		if title == "" || seen[key] {
			continue
		}
		seen[key] = true
		titles = append(titles, key)
		out.Agenda = append(out.Agenda, AgendaItem{Title: title})
	}

	seen = make(map[string]bool)
	for _, d := range in.Decisions {
		d = clean(d)
		lower := strings.ToLower(d)
		if d == "" || isInstruction(lower) || utf8.RuneCountInString(d) > MaxDecisionChars ||
			containsAny(lower, titles) || seen[lower] {
			continue
		}
		seen[lower] = true
		out.Decisions = append(out.Decisions, d)
		if len(out.Decisions) == MaxDecisions {
			break
		}
	}

	seen = make(map[string]bool)
	for _, a := range in.ActionItems {
		task := clean(a.Task)
		if task == "" || isInstruction(strings.ToLower(task)) {
			continue
		}
		if containsAny(strings.ToLower(task), titles) {
			residual, ok := removeTitles(task, titles)
			if !ok {
				continue
			}
			task = residual
		}
		if utf8.RuneCountInString(task) > MaxTaskChars {
			task = string([]rune(task)[:TruncatedTaskLen]) + "..."
		}
		key := strings.ToLower(task)
		if seen[key] {
			continue
		}
		seen[key] = true

		a.Task = task
		a.Responsible = clean(a.Responsible)
		a.Deadline = clean(a.Deadline)
		if !a.Status.Valid() {
			a.Status = ParseStatus(string(a.Status))
		}
		out.ActionItems = append(out.ActionItems, a)
		if len(out.ActionItems) == MaxActionItems {
			break
		}
	}

	out.ensureSlices()
	return out
}

// cleanField normalizes a single-line text field.
func cleanField(s string, labels *regexp.Regexp) string {
	s = boxDrawingRegex.ReplaceAllString(s, "-")
	s = sanitizeFillerRegex.ReplaceAllString(s, "")
	s = strings.TrimSpace(spaceRunRegex.ReplaceAllString(s, " "))
	s = stripLeadingLabels(s, labels)
	return strings.TrimLeft(s, " ,;")
}

// cleanSummary normalizes each line of the summary and collapses dash runs
// and blank-line runs, keeping paragraph and bullet structure.
func cleanSummary(s string, labels *regexp.Regexp) string {
	s = boxDrawingRegex.ReplaceAllString(s, "-")
	s = dashRunRegex.ReplaceAllString(s, "----")

	var lines []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = sanitizeFillerRegex.ReplaceAllString(line, "")
		line = strings.TrimSpace(horizontalRunRegex.ReplaceAllString(line, " "))
		line = strings.TrimLeft(stripLeadingLabels(line, labels), " ,;")
		if line == "" {
			blank = len(lines) > 0
			continue
		}
		if blank {
			lines = append(lines, "")
			blank = false
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func stripLeadingLabels(s string, labels *regexp.Regexp) string {
	for {
		before := s
		s = leadTimestampRegex.ReplaceAllString(s, "")
		s = leadGenericTagRegex.ReplaceAllString(s, "")
		if labels != nil {
			s = labels.ReplaceAllString(s, "")
		}
		if s == before {
			return s
		}
	}
}

// speakerLabelRegex matches a leading "Name:" for any attendee name.
func speakerLabelRegex(attendees []Attendee) *regexp.Regexp {
	var names []string
	for _, a := range attendees {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, regexp.QuoteMeta(name))
		}
	}
	if len(names) == 0 {
		return nil
	}
	return regexp.MustCompile(`^(?:` + strings.Join(names, "|") + `)\s*:\s*`)
}

// removeTitles cuts every agenda title out of task. The residual is kept
// only if it is long enough to stand alone and no title remains in it.
func removeTitles(task string, titles []string) (string, bool) {
	for _, t := range titles {
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(t))
		task = re.ReplaceAllString(task, " ")
	}
	residual := strings.Trim(spaceRunRegex.ReplaceAllString(task, " "), " .,;:-")
	if utf8.RuneCountInString(residual) < minResidualChars || len(strings.Fields(residual)) < minResidualWords {
		return "", false
	}
	if containsAny(strings.ToLower(residual), titles) {
		return "", false
	}
	return residual, true
}

func isInstruction(lower string) bool {
	return containsAny(lower, InstructionPhrases)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
