package diarize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/otherjamesbrown/minutes-cli/pkg/transcript"
)

func TestMergeSimilarSpeakers(t *testing.T) {
	segs := []transcript.Segment{
		{Speaker: "Jonathan", Text: "a"},
		{Speaker: "Speaker 1", Text: "b"},
		{Speaker: "Jonathon", Text: "c"},
		{Speaker: "Speaker 2", Text: "d"},
		{Speaker: "Priya", Text: "e"},
		{Speaker: "", Text: "f"},
	}

	out := MergeSimilarSpeakers(segs, DefaultMergeThreshold)

	got := make([]string, len(out))
	for i, s := range out {
		got[i] = s.Speaker
	}
	assert.Equal(t, []string{"Jonathan", "Speaker 1", "Jonathan", "Speaker 2", "Priya", ""}, got)
	assert.Equal(t, "Jonathon", segs[2].Speaker, "input must not be modified")
}

func TestMergeSimilarSpeakers_HighThresholdKeepsLabels(t *testing.T) {
	segs := []transcript.Segment{{Speaker: "Jonathan"}, {Speaker: "Jonathon"}}
	out := MergeSimilarSpeakers(segs, 1.0)
	assert.Equal(t, "Jonathon", out[1].Speaker)
}
