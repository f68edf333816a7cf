// Package transcript turns raw meeting transcripts into ordered,
// speaker-attributed segments.
package transcript

// Segment is one speaker turn. Times are seconds from the start of the meeting.
type Segment struct {
	Speaker string  `json:"speaker" yaml:"speaker"`
	Start   float64 `json:"start" yaml:"start"`
	End     float64 `json:"end" yaml:"end"`
	Text    string  `json:"text" yaml:"text"`
}

// Format names the transcript layout a Result was parsed from.
type Format string

const (
	FormatTimestamped Format = "timestamped"
	FormatVTT         Format = "vtt"
	FormatTeams       Format = "teams"
	FormatPlain       Format = "plain"
)

// Result is the outcome of parsing a transcript file.
type Result struct {
	Segments []Segment `json:"segments" yaml:"segments"`
	Speakers []string  `json:"speakers" yaml:"speakers"`
	Format   Format    `json:"format" yaml:"format"`
	// Text is the raw transcript text the segments were parsed from.
	Text string `json:"-" yaml:"-"`
}

// DefaultSpeaker labels turns whose speaker cannot be determined.
const DefaultSpeaker = "Speaker 1"

// syntheticDuration is the fixed length given to text-only turns.
const syntheticDuration = 5.0
