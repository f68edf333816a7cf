package diarize

import (
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/otherjamesbrown/minutes-cli/pkg/transcript"
)

// DefaultMergeThreshold is a Jaro-Winkler score above which two speaker
// labels are treated as spellings of the same person.
const DefaultMergeThreshold = 0.92

// MergeSimilarSpeakers collapses speaker labels whose Jaro-Winkler
// similarity reaches threshold into the label seen first. Synthetic
// "Speaker N" labels are never merged. The input slice is not modified.
func MergeSimilarSpeakers(segs []transcript.Segment, threshold float64) []transcript.Segment {
	var canonical []string
	mapping := make(map[string]string)

	out := make([]transcript.Segment, len(segs))
	for i, s := range segs {
		out[i] = s
		if s.Speaker == "" || transcript.IsGenericSpeaker(s.Speaker) {
			continue
		}
		if label, ok := mapping[s.Speaker]; ok {
			out[i].Speaker = label
			continue
		}

		label := s.Speaker
		best := 0.0
		for _, c := range canonical {
			score := matchr.JaroWinkler(strings.ToLower(s.Speaker), strings.ToLower(c), false)
			if score >= threshold && score > best {
				best = score
				label = c
			}
		}
		if label == s.Speaker {
			canonical = append(canonical, label)
		}
		mapping[s.Speaker] = label
		out[i].Speaker = label
	}
	return out
}
