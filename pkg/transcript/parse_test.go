package transcript

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Dispatch(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		input    string
		format   Format
		speakers []string
	}{
		{"vtt by extension", "call.VTT", "00:01.000 --> 00:02.000\n<v Ann>Hi\n", FormatVTT, []string{"Ann"}},
		{"vtt by header", "call.txt", "WEBVTT\n\n00:01.000 --> 00:02.000\n<v Ann>Hi\n", FormatVTT, []string{"Ann"}},
		{"teams", "call.txt", "0:11 : Ann : Hi\n0:15 : Raj : Hello", FormatTeams, []string{"Ann", "Raj"}},
		{"timestamped", "call.txt", "[00:00:02] Ann: Hi\n[00:00:04] Raj: Hello", FormatTimestamped, []string{"Ann", "Raj"}},
		{"bare clock timestamps", "call.txt", "00:00:02 Ann: Hi\n00:00:04 Raj: Hello", FormatTimestamped, []string{"Ann", "Raj"}},
		{"plain", "notes.txt", "we talked about the fest budget", FormatPlain, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Parse(tt.file, strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.format, result.Format)
			assert.Len(t, result.Segments, len(tt.speakers))
			assert.Equal(t, tt.speakers, Speakers(result.Segments))
		})
	}
}

func TestParse_BareClockTimes(t *testing.T) {
	text := "00:00:02 Sakshi: Good afternoon everyone.\n00:00:08 Nayana: Let us begin with sponsors."
	result, err := Parse("meeting.txt", strings.NewReader(text))
	require.NoError(t, err)

	require.Len(t, result.Segments, 2)
	assert.Equal(t, "Sakshi", result.Segments[0].Speaker)
	assert.InDelta(t, 2.0, result.Segments[0].Start, 1e-9)
	assert.Equal(t, "Nayana", result.Segments[1].Speaker)
	assert.InDelta(t, 8.0, result.Segments[1].Start, 1e-9)
}

func TestParseText_KeepsRawText(t *testing.T) {
	text := "[00:00:02] Sakshi: Good afternoon."
	result := ParseText(text)
	assert.Equal(t, text, result.Text)
	assert.Equal(t, []string{"Sakshi"}, result.Speakers)
}

func TestSegmentsOrFallback(t *testing.T) {
	text := "Everyone agreed the fest would be held in March. Nikitha will contact sponsors."
	result := ParseText(text)

	segs := result.SegmentsOrFallback()
	require.Len(t, segs, 1)
	assert.Equal(t, Segment{Speaker: DefaultSpeaker, Start: 0, End: 0, Text: text}, segs[0])

	timed := ParseText("[00:00:02] Sakshi: Good afternoon.")
	assert.Equal(t, timed.Segments, timed.SegmentsOrFallback())
}

func TestFullText(t *testing.T) {
	segs := []Segment{
		{Speaker: "Alice", Text: "Hello "},
		{Speaker: "Bob", Text: "   "},
		{Text: "untagged line"},
		{Speaker: "Alice", Text: "Bye"},
	}
	assert.Equal(t, "Alice: Hello\nuntagged line\nAlice: Bye", FullText(segs))
	assert.Empty(t, FullText(nil))
}

func TestParse_DecodesInput(t *testing.T) {
	utf16 := []byte{0xFF, 0xFE}
	for _, r := range "0:11 : Ann : Hi" {
		utf16 = append(utf16, byte(r), 0)
	}
	result, err := Parse("call.txt", strings.NewReader(string(utf16)))
	require.NoError(t, err)
	assert.Equal(t, FormatTeams, result.Format)
	require.Len(t, result.Segments, 1)
	assert.Equal(t, "Ann", result.Segments[0].Speaker)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		charset string
		want    string
	}{
		{"utf-8 kept", []byte("Zoë: hi"), "", "Zoë: hi"},
		{"utf-8 bom dropped", append([]byte{0xEF, 0xBB, 0xBF}, "Ann: hi"...), "", "Ann: hi"},
		{"utf-16be bom", []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}, "", "hi"},
		{"cp1252 detected", []byte("caf\xe9 \x93quoted\x94"), "", "café “quoted”"},
		{"latin1 named", []byte("Jos\xe9"), "latin1", "José"},
		{"utf-8 named", []byte("plain"), "UTF-8", "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input, tt.charset)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}

	_, err := Decode([]byte("x"), "klingon")
	assert.ErrorContains(t, err, "unknown charset")
}
