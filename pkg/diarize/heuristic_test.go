package diarize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/minutes-cli/pkg/transcript"
)

func TestAssignByText(t *testing.T) {
	out := AssignByText(timed(
		"no cue on the first one",
		"Sakshi: Good afternoon everyone.",
		"we should begin",
		"[Speaker 2] I have the budget numbers.",
		"and then Nayana: replied with the venue",
		"SAKSHI: thanks",
	))
	require.Len(t, out, 6)

	want := []struct{ speaker, text string }{
		{transcript.DefaultSpeaker, "no cue on the first one"},
		{"Sakshi", "Good afternoon everyone."},
		{"Sakshi", "we should begin"},
		{"Speaker 2", "I have the budget numbers."},
		{"Nayana", "and then replied with the venue"},
		{"SAKSHI", "thanks"},
	}
	for i, w := range want {
		assert.Equal(t, w.speaker, out[i].Speaker, "segment %d", i)
		assert.Equal(t, w.text, out[i].Text, "segment %d", i)
	}
}

func TestAssignByText_NamesAreCaseSensitive(t *testing.T) {
	out := AssignByText(timed(
		"Alice: first",
		"ALICE: second",
		"Alice:   third",
	))
	require.Len(t, out, 3)
	assert.Equal(t, "Alice", out[0].Speaker)
	assert.Equal(t, "ALICE", out[1].Speaker)
	assert.Equal(t, "Alice", out[2].Speaker)
	assert.Equal(t, []string{"Alice", "ALICE"}, transcript.Speakers(out))
}

func TestAssignByText_IgnoresSectionLabels(t *testing.T) {
	out := AssignByText(timed(
		"Priya: Let us start.",
		"Action: Nikitha to approach sponsors; deadline 31/10/2025.",
		"Decision: the fest moves to March.",
	))
	for _, s := range out {
		assert.Equal(t, "Priya", s.Speaker)
	}
	assert.Equal(t, "Action: Nikitha to approach sponsors; deadline 31/10/2025.", out[1].Text)
}

func TestAssignByText_IgnoresTimestampBrackets(t *testing.T) {
	out := AssignByText(timed("[00:05] we resumed"))
	assert.Equal(t, transcript.DefaultSpeaker, out[0].Speaker)
	assert.Equal(t, "[00:05] we resumed", out[0].Text)
}

func TestAssignByText_PreservesTiming(t *testing.T) {
	in := []transcript.TimedText{{Start: 1.5, End: 3.25, Text: "Bob: hi"}}
	out := AssignByText(in)
	assert.Equal(t, transcript.Segment{Speaker: "Bob", Start: 1.5, End: 3.25, Text: "hi"}, out[0])
}

func TestIsSpeakerName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Alice", true},
		{"Dr. Rao", true},
		{"Mary Ann Lee", true},
		{"Speaker 3", true},
		{"Deadline", false},
		{"Next Meeting", false},
		{"we agreed", false},
		{"A", false},
		{"This Is A Very Long Label Name That Rambles", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isSpeakerName(tt.name), tt.name)
	}
}
