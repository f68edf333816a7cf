package extract

import (
	"regexp"
	"strings"
)

var (
	bracketTimestampRegex  = regexp.MustCompile(`\[\d{1,2}:\d{2}(?::\d{2})?\]`)
	bareTimestampRegex     = regexp.MustCompile(`\b\d{1,2}:\d{2}(?::\d{2})?\b`)
	genericSpeakerTagRegex = regexp.MustCompile(`(?i)\[Speaker\s+\d+\]:?`)
	fillerRegex            = regexp.MustCompile(`(?i)\b(?:um|uh|hmm|like|you know|i mean|sort of|kind of|basically|actually|literally|so|well|okay|ok|right|yeah|yes|no|maybe)\b`)
	horizontalSpaceRegex   = regexp.MustCompile(`[ \t]+`)
	dotRunRegex            = regexp.MustCompile(`\.{2,}`)

	sectionHeadRegex = regexp.MustCompile(`(?i)\b(?:attendees|action items|next meeting|decisions):`)
	sectionEndRegex  = regexp.MustCompile(`\n\s*\n|---`)
)

// CleanText removes timestamps, generic speaker tags and filler words while
// keeping line breaks and real speaker names.
func CleanText(text string) string {
	text = bracketTimestampRegex.ReplaceAllString(text, "")
	text = bareTimestampRegex.ReplaceAllString(text, "")
	text = genericSpeakerTagRegex.ReplaceAllString(text, "")
	text = fillerRegex.ReplaceAllString(text, "")
	text = horizontalSpaceRegex.ReplaceAllString(text, " ")
	text = dotRunRegex.ReplaceAllStringFunc(text, func(dots string) string {
		if len(dots) > 2 {
			return "..."
		}
		return "."
	})

	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// DiscussionText is the cleaned transcript with the attendee, action item,
// next meeting and decision sections removed, leaving the free discussion
// that topic ranking runs over.
func DiscussionText(text string) string {
	text = CleanText(text)
	for {
		loc := sectionHeadRegex.FindStringIndex(text)
		if loc == nil {
			break
		}
		end := len(text)
		if e := sectionEndRegex.FindStringIndex(text[loc[1]:]); e != nil {
			end = loc[1] + e[0]
		}
		text = text[:loc[0]] + text[end:]
	}
	return strings.TrimSpace(text)
}
