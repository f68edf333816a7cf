package summarize

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/minutes-cli/pkg/chunker"
	mnerrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
)

type stubBackend struct {
	out      string
	err      error
	requests []Request
}

func (s *stubBackend) Summarize(ctx context.Context, req Request) (string, error) {
	s.requests = append(s.requests, req)
	return s.out, s.err
}

type fallbackCounter struct {
	codes []mnerrors.ErrorCode
}

func (f *fallbackCounter) RecordFallback(stage string, code mnerrors.ErrorCode) {
	f.codes = append(f.codes, code)
}

func cachedWith(b Backend) *PipelineCache {
	c := NewPipelineCache(nil)
	c.Put(DefaultModel, DefaultDevice, b)
	return c
}

var sampleChunks = []chunker.Chunk{
	{Start: 0, End: 12, Text: "Sakshi: Good afternoon.\nNayana: We start with sponsors. Then stage. Then food."},
	{Start: 12, End: 30, Text: "Ravi: Budget is tight"},
}

func TestSummarizeChunks_Extractive(t *testing.T) {
	got := New().SummarizeChunks(context.Background(), sampleChunks)

	assert.Equal(t, []ChunkSummary{
		{Start: 0, End: 12, Summary: "Sakshi: Good afternoon. Nayana: We start with sponsors. Then stage."},
		{Start: 12, End: 30, Summary: "Ravi: Budget is tight."},
	}, got)
}

func TestSummarizeChunks_Backend(t *testing.T) {
	backend := &stubBackend{out: "  The team discussed sponsors.  "}
	got := New(WithCache(cachedWith(backend))).SummarizeChunks(context.Background(), sampleChunks)

	require.Len(t, got, 2)
	assert.Equal(t, "The team discussed sponsors.", got[0].Summary)
	require.Len(t, backend.requests, 2)

	maxTokens, minTokens := LengthBounds(sampleChunks[0].Text)
	req := backend.requests[0]
	assert.Equal(t, sampleChunks[0].Text, req.Text)
	assert.Equal(t, maxTokens, req.MaxTokens)
	assert.Equal(t, minTokens, req.MinTokens)
	assert.Equal(t, DefaultBeams, req.Beams)
	assert.False(t, req.Sample)
	assert.Empty(t, req.Prompt)
}

func TestSummarizeChunks_BackendErrorFallsBack(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logging.NewLogger(&logging.Config{Level: logging.LevelWarn, Component: "test", JSONFormat: true, Output: buf})
	long := strings.Repeat("x", 700)
	counter := &fallbackCounter{}

	s := New(
		WithCache(cachedWith(&stubBackend{err: errors.New("429 too many requests")})),
		WithLogger(log),
		WithFallbackRecorder(counter),
	)
	got := s.SummarizeChunks(context.Background(), []chunker.Chunk{{Text: long}})

	require.Len(t, got, 1)
	assert.Equal(t, long[:600], got[0].Summary)
	assert.Equal(t, []mnerrors.ErrorCode{mnerrors.ErrRateLimit}, counter.codes)
	assert.Contains(t, buf.String(), `"code":"rate_limit"`)
}

func TestSummarizeChunks_EmptyOutputFallsBack(t *testing.T) {
	s := New(WithCache(cachedWith(&stubBackend{out: "   "})))
	got := s.SummarizeChunks(context.Background(), sampleChunks[1:])
	assert.Equal(t, "Ravi: Budget is tight", got[0].Summary)
}

func TestSummarizeChunks_LoaderErrorIsExtractive(t *testing.T) {
	counter := &fallbackCounter{}
	cache := NewPipelineCache(func(model, device string) (Backend, error) {
		return nil, errors.New("connection refused")
	})

	got := New(WithCache(cache), WithFallbackRecorder(counter)).SummarizeChunks(context.Background(), sampleChunks[1:])
	assert.Equal(t, "Ravi: Budget is tight.", got[0].Summary)
	assert.Equal(t, []mnerrors.ErrorCode{mnerrors.ErrBackendUnavailable}, counter.codes)
}

func TestSummarizeChunks_UsesModelKey(t *testing.T) {
	var keys []string
	cache := NewPipelineCache(func(model, device string) (Backend, error) {
		keys = append(keys, CacheKey(model, device))
		return &stubBackend{out: "ok"}, nil
	})
	s := New(WithCache(cache), WithModel("local-bart", "cuda:0"))

	s.SummarizeChunks(context.Background(), sampleChunks)
	s.Global(context.Background(), strings.Repeat("The budget was discussed at length. ", 3))
	assert.Equal(t, []string{"local-bart:cuda:0"}, keys)
}

func TestMerge(t *testing.T) {
	got := Merge([]ChunkSummary{{Summary: "One."}, {Summary: ""}, {Summary: "Two."}})
	assert.Equal(t, "One.\n\nTwo.", got)
	assert.Equal(t, "", Merge(nil))
}

func TestGlobal_ShortInputUnchanged(t *testing.T) {
	backend := &stubBackend{out: "never used"}
	s := New(WithCache(cachedWith(backend)))

	assert.Equal(t, "Speaker 1: short", s.Global(context.Background(), "Speaker 1: short"))
	assert.Empty(t, backend.requests)
}

func TestGlobal_Backend(t *testing.T) {
	backend := &stubBackend{out: "Format: paragraph\nThe fest plan was reviewed.\n- Sponsors to be approached"}
	s := New(WithCache(cachedWith(backend)))

	got := s.Global(context.Background(), "Speaker 1: We reviewed the fest plan in detail today.\nRavi: Sponsors will be approached.")
	assert.Equal(t, "The fest plan was reviewed.\n- Sponsors to be approached", got)

	require.Len(t, backend.requests, 1)
	req := backend.requests[0]
	assert.Equal(t, globalPrompt, req.Prompt)
	assert.Equal(t, "We reviewed the fest plan in detail today. Sponsors will be approached.", req.Text)
	assert.Equal(t, GlobalMaxTokens, req.MaxTokens)
	assert.Equal(t, GlobalMinTokens, req.MinTokens)
}

func TestGlobal_Fallback(t *testing.T) {
	text := "Speaker 1: We reviewed the fest plan in detail today.\n" +
		"Speaker 2: Budget numbers look fine.\n" +
		"Speaker 1: Sponsorship letters will go out this week."

	want := "We reviewed the fest plan in detail today. Budget numbers look fine.\n" +
		"- Sponsorship letters will go out this week."
	assert.Equal(t, want, New().Global(context.Background(), text))

	failing := New(WithCache(cachedWith(&stubBackend{err: errors.New("503 unavailable")})))
	assert.Equal(t, want, failing.Global(context.Background(), text))
}

func TestGlobal_InputCapped(t *testing.T) {
	backend := &stubBackend{out: "Done here."}
	New(WithCache(cachedWith(backend))).Global(context.Background(), strings.Repeat("word ", 1000))

	require.Len(t, backend.requests, 1)
	assert.Len(t, []rune(backend.requests[0].Text), DefaultMaxInputChars)

	small := &stubBackend{out: "Done here."}
	New(WithCache(cachedWith(small)), WithMaxInputChars(100)).Global(context.Background(), strings.Repeat("word ", 1000))
	require.Len(t, small.requests, 1)
	assert.Len(t, []rune(small.requests[0].Text), 100)
}

func TestExtractive(t *testing.T) {
	assert.Equal(t, "", Extractive(" \n "))
	assert.Equal(t, "No periods here.", Extractive("No periods here"))
	assert.Equal(t, "A. B. C.", Extractive("A.\nB. C. D."))
}
