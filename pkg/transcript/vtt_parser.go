package transcript

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	// Webex cue header: 1 "Speaker Name" (speaker_id) or 1 "" (0)
	vttCueHeaderRegex = regexp.MustCompile(`^\d+\s+"([^"]*)"(?:\s+\((\d+)\))?`)

	// Cue timing: 00:00:05.579 --> 00:00:06.858 (hours optional)
	vttTimingRegex = regexp.MustCompile(`^((?:\d{2}:)?\d{2}:\d{2}\.\d{3})\s+-->\s+((?:\d{2}:)?\d{2}:\d{2}\.\d{3})`)

	// Voice span: <v Speaker Name>text
	vttVoiceRegex = regexp.MustCompile(`^<v(?:\.[^\s>]+)?\s+([^>]+)>(.*)$`)

	vttTagRegex = regexp.MustCompile(`</?[^>]+>`)
)

// ParseVTT parses a WebVTT transcript. Speakers come from Webex-style cue
// headers or from <v Name> voice spans; cues without a speaker keep an
// empty label so the aligner can assign one later.
func ParseVTT(r io.Reader) (*Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	result := &Result{Format: FormatVTT}
	var text strings.Builder
	var cur *Segment
	header := ""

	flush := func() {
		if cur != nil && cur.Text != "" {
			result.Segments = append(result.Segments, *cur)
		}
		cur = nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		text.WriteString(line)
		text.WriteByte('\n')

		if line == "" || strings.HasPrefix(line, "WEBVTT") || strings.HasPrefix(line, "NOTE") {
			continue
		}

		if m := vttCueHeaderRegex.FindStringSubmatch(line); m != nil {
			flush()
			header = NormalizeName(m[1])
			continue
		}

		if m := vttTimingRegex.FindStringSubmatch(line); m != nil {
			flush()
			cur = &Segment{
				Speaker: header,
				Start:   parseVTTTimestamp(m[1]),
				End:     parseVTTTimestamp(m[2]),
			}
			header = ""
			continue
		}

		if cur == nil {
			continue
		}

		content := line
		if m := vttVoiceRegex.FindStringSubmatch(line); m != nil {
			cur.Speaker = NormalizeName(m[1])
			content = m[2]
		}
		content = strings.TrimSpace(vttTagRegex.ReplaceAllString(content, ""))
		if content == "" {
			continue
		}
		if cur.Text != "" {
			cur.Text += " "
		}
		cur.Text += content
	}
	flush()

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if result.Segments == nil {
		result.Segments = make([]Segment, 0)
	}
	result.Speakers = Speakers(result.Segments)
	result.Text = text.String()
	return result, nil
}

// parseVTTTimestamp parses HH:MM:SS.mmm or MM:SS.mmm into seconds.
func parseVTTTimestamp(ts string) float64 {
	parts := strings.Split(ts, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}
	hours := 0
	if len(parts) == 3 {
		hours, _ = strconv.Atoi(parts[0])
		parts = parts[1:]
	}
	minutes, _ := strconv.Atoi(parts[0])
	seconds, _ := strconv.ParseFloat(parts[1], 64)
	return float64(hours*3600+minutes*60) + seconds
}
