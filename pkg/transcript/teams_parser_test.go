package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLooksLikeTeams(t *testing.T) {
	assert.True(t, LooksLikeTeams("\n0:11 : Alex Kim (they/them) : Hello all"))
	assert.False(t, LooksLikeTeams("[00:00:02] Sakshi: Good afternoon."))
	assert.False(t, LooksLikeTeams("00:00:02 Sakshi: Good afternoon."))
	assert.False(t, LooksLikeTeams("0:02: Sakshi: Good afternoon."))
	assert.False(t, LooksLikeTeams(""))
}

func TestParseTeams(t *testing.T) {
	input := `0:11 : Alex Kim (they/them) : Hello all
0:20 : Priya : Let's review the budget.

12:45 : Alex Kim : We agreed to move forward.`

	result, err := ParseTeams(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, FormatTeams, result.Format)
	require.Len(t, result.Segments, 3)

	assert.Equal(t, Segment{Speaker: "Alex Kim", Start: 11, End: 20, Text: "Hello all"}, result.Segments[0])
	assert.Equal(t, 20.0, result.Segments[1].Start)
	assert.Equal(t, 765.0, result.Segments[1].End)
	assert.Equal(t, 770.0, result.Segments[2].End)
	assert.Equal(t, []string{"Alex Kim", "Priya"}, result.Speakers)
}

func TestParseTeams_IgnoresOtherLines(t *testing.T) {
	result, err := ParseTeams(strings.NewReader("Meeting notes\n0:05 : Bob : Hi"))
	require.NoError(t, err)
	require.Len(t, result.Segments, 1)
	assert.Equal(t, "Bob", result.Segments[0].Speaker)
}
