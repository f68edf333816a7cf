package minutes

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const rule = "----"

var (
	honorificRegex     = regexp.MustCompile(`(?i)\b(?:ma|am)\b`)
	leadingToRegex     = regexp.MustCompile(`(?i)^\s*to\s+`)
	sentenceSplitRegex = regexp.MustCompile(`[.!?]\s+`)
	endPunctRegex      = regexp.MustCompile(`[.!?]$`)
)

// RenderText writes r as a plain-text minutes document. generated stamps
// the closing line.
func RenderText(w io.Writer, r *Record, generated time.Time) error {
	bw := bufio.NewWriter(w)
	p := func(format string, args ...interface{}) {
		fmt.Fprintf(bw, format+"\n", args...)
	}

	p("Minutes of Meeting")
	p("")
	m := r.Metadata
	for _, kv := range [][2]string{
		{"Title", m.Title}, {"Date", m.Date}, {"Time", m.Time},
		{"Venue", m.Venue}, {"Organizer", m.Organizer}, {"Recorder", m.Recorder},
	} {
		if v := flatten(kv[1]); v != "" {
			p("%s: %s", kv[0], v)
		}
	}
	p(rule)

	if len(r.Attendees) > 0 {
		p("Attendees")
		for _, a := range r.Attendees {
			name, role := flatten(a.Name), flatten(a.Role)
			if role != "" {
				p("- %s – %s", name, role)
			} else {
				p("- %s", name)
			}
		}
		p(rule)
	}

	if len(r.Agenda) > 0 {
		p("Agenda")
		for i, a := range r.Agenda {
			p("%d. %s", i+1, flatten(a.Title))
		}
		p(rule)
	}

	if formal := FormalSummary(r.Summary); formal != "" {
		p("Discussion Summary")
		p("%s", formal)
		p(rule)
	}

	if len(r.Decisions) > 0 {
		p("Decisions")
		for _, d := range r.Decisions {
			p("- %s", flatten(d))
		}
		p(rule)
	}

	if len(r.ActionItems) > 0 {
		p("Action Items")
		for _, a := range r.ActionItems {
			if s := ActionSentence(a); s != "" {
				p("• %s", s)
			}
		}
		p(rule)
	}

	n := r.NextMeeting
	if n.Date != "" || n.Time != "" || n.Venue != "" || n.Agenda != "" {
		p("Next Meeting")
		for _, kv := range [][2]string{
			{"Date", n.Date}, {"Time", n.Time}, {"Venue", n.Venue}, {"Agenda", n.Agenda},
		} {
			if v := flatten(kv[1]); v != "" {
				p("%s: %s", kv[0], v)
			}
		}
		p(rule)
	}

	p("Meeting minutes generated on %s at %s.", generated.Format("02/01/2006"), generated.Format("15:04"))
	return bw.Flush()
}

// FormalSummary turns a summary into a single formal paragraph. Each
// sentence is capitalized and closed with a period.
func FormalSummary(summary string) string {
	s := flatten(summary)
	if s == "" {
		return ""
	}

	var parts []string
	for _, part := range splitKeepingPunct(s) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !endPunctRegex.MatchString(part) {
			part += "."
		}
		parts = append(parts, upperFirst(part))
	}

	switch len(parts) {
	case 0:
		return ""
	case 1:
		return "The meeting was convened to discuss the following: " + parts[0]
	default:
		return "The meeting was convened to discuss the following points. " + strings.Join(parts, " ")
	}
}

// ActionSentence renders an action item as "<Responsible> will <task> by
// <deadline>." with "The concerned staff" standing in for a missing owner.
func ActionSentence(a ActionItem) string {
	task := honorificRegex.ReplaceAllString(a.Task, "")
	task = strings.Trim(flatten(task), " .,-")
	if task == "" {
		return ""
	}
	task = strings.TrimRight(leadingToRegex.ReplaceAllString(task, ""), ". ")

	responsible := specified(a.Responsible)
	deadline := specified(a.Deadline)

	var sentence string
	switch {
	case responsible == "":
		sentence = "The concerned staff will " + task
	case strings.HasPrefix(strings.ToLower(task), strings.ToLower(responsible)+" "):
		sentence = task
	default:
		sentence = responsible + " will " + task
	}
	if deadline != "" {
		sentence += " by " + deadline
	}
	sentence = strings.TrimSpace(sentence)
	if !strings.HasSuffix(sentence, ".") {
		sentence += "."
	}
	return upperFirst(sentence)
}

func specified(s string) string {
	s = flatten(s)
	if strings.EqualFold(s, NotSpecified) {
		return ""
	}
	return s
}

// flatten replaces box drawing with dashes and collapses whitespace.
func flatten(s string) string {
	s = boxDrawingRegex.ReplaceAllString(s, "-")
	return strings.Join(strings.Fields(s), " ")
}

func splitKeepingPunct(s string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceSplitRegex.FindAllStringIndex(s, -1) {
		out = append(out, s[last:loc[0]+1])
		last = loc[1]
	}
	return append(out, s[last:])
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
