package transcript

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Matches: 0:11 : Speaker Name : Text content
// or:      12:45 : Speaker Name (pronouns) : Text content
// The separator colon needs whitespace before it so "00:00:02 Name: text"
// stays with the timestamp parser.
var (
	teamsLineRegex   = regexp.MustCompile(`^(\d+):(\d{2})\s+:\s*([^:]+?)\s*:\s*(.+)$`)
	clockPrefixRegex = regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}\b`)
)

// LooksLikeTeams reports whether the first non-empty line of text uses the
// "M:SS : Name : text" layout.
func LooksLikeTeams(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return !clockPrefixRegex.MatchString(line) && teamsLineRegex.MatchString(line)
	}
	return false
}

// ParseTeams parses a "M:SS : Name : text" transcript. The format carries no
// end times; each segment ends where the next begins, and the last one gets
// the fixed synthetic duration.
func ParseTeams(r io.Reader) (*Result, error) {
	scanner := bufio.NewScanner(r)
	result := &Result{
		Segments: make([]Segment, 0),
		Format:   FormatTeams,
	}
	var text strings.Builder

	for scanner.Scan() {
		raw := scanner.Text()
		text.WriteString(raw)
		text.WriteByte('\n')

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		m := teamsLineRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		minutes, _ := strconv.Atoi(m[1])
		seconds, _ := strconv.Atoi(m[2])
		start := float64(minutes*60 + seconds)

		if n := len(result.Segments); n > 0 && result.Segments[n-1].End < start {
			result.Segments[n-1].End = start
		}
		result.Segments = append(result.Segments, Segment{
			Speaker: NormalizeName(m[3]),
			Start:   start,
			End:     start + syntheticDuration,
			Text:    strings.TrimSpace(m[4]),
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	result.Speakers = Speakers(result.Segments)
	result.Text = text.String()
	return result, nil
}
