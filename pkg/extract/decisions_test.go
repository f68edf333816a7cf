package extract

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/otherjamesbrown/minutes-cli/pkg/minutes"
)

func TestMatchDecision(t *testing.T) {
	tests := []struct {
		sentence string
		want     string
	}{
		{"We decided to move the fest to March.", "collective_decision"},
		{"We will finalize the venue next week.", "collective_decision"},
		{"The team will host the fest on campus.", "collective_decision"},
		{"Everyone will contribute to the budget.", "collective_decision"},
		{"It was decided to move the fest.", "passive_decision"},
		{"A decision was made to cancel the stall.", "decision_reached"},
		{"The final decision is March.", "consensus"},
		{"Let's finalize the venue today.", "finalize"},
		{"The board approved the budget.", "approval_verb"},
		{"Decision: move to Friday.", "decision_label"},
		{"The room is booked.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.sentence, func(t *testing.T) {
			name, ok := MatchDecision(tt.sentence)
			assert.Equal(t, tt.want != "", ok)
			assert.Equal(t, tt.want, name)
		})
	}
}

func TestExtractDecisions(t *testing.T) {
	text := "We decided to hold the fest in March. The budget is tight. " +
		"It was agreed that Ravi leads. We decided to hold the fest in March."

	assert.Equal(t, []string{
		"We decided to hold the fest in March.",
		"It was agreed that Ravi leads.",
	}, ExtractDecisions(text))
}

func TestExtractDecisions_None(t *testing.T) {
	got := ExtractDecisions("Nothing was settled today.")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestExtractDecisions_Cap(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, "We agreed on item %d.\n", i)
	}

	got := ExtractDecisions(b.String())
	assert.Len(t, got, minutes.MaxDecisions)
	assert.Equal(t, "We agreed on item 0.", got[0])
}
