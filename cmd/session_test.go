package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mnerrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
	"github.com/otherjamesbrown/minutes-cli/pkg/minutes"
	"github.com/otherjamesbrown/minutes-cli/pkg/session"
)

// processIntoSession runs process --session and returns the new session id.
func processIntoSession(t *testing.T, env *testEnv) string {
	t.Helper()
	path := writeFile(t, "meeting.txt", sampleTranscript)
	out, err := env.run(t, NewProcessCommand(env.deps), path, "--session", "-o", "json")
	require.NoError(t, err)

	var got processOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.NotEmpty(t, got.SessionID)
	assert.Contains(t, env.stderr.String(), got.SessionID)
	return got.SessionID
}

func showSession(t *testing.T, env *testEnv, id string) *session.Session {
	t.Helper()
	out, err := env.run(t, NewSessionCommand(env.deps), "show", id, "-o", "json")
	require.NoError(t, err)
	var s session.Session
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	return &s
}

func TestSession_Flow(t *testing.T) {
	env := newTestEnv(t)
	id := processIntoSession(t, env)
	assert.Equal(t, 1, env.store.Len())

	out, err := env.run(t, NewSessionCommand(env.deps), "set", id, "metadata.venue", "Room 4")
	require.NoError(t, err)
	assert.Contains(t, out, "Updated metadata.venue")

	_, err = env.run(t, NewSessionCommand(env.deps), "add-action", id,
		"--task", "Book the hall", "--responsible", "Bob", "--deadline", "01/11/2025", "--status", "done")
	require.NoError(t, err)

	s := showSession(t, env, id)
	assert.Equal(t, "Room 4", s.Record.Metadata.Venue)
	require.Len(t, s.Record.ActionItems, 2)
	added := s.Record.ActionItems[1]
	assert.Equal(t, "Book the hall", added.Task)
	assert.Equal(t, "Bob", added.Responsible)
	assert.Equal(t, minutes.StatusCompleted, added.Status)

	text, err := env.run(t, NewSessionCommand(env.deps), "show", id)
	require.NoError(t, err)
	assert.Contains(t, text, "Session "+id)
	assert.Contains(t, text, "Room 4")

	_, err = env.run(t, NewSessionCommand(env.deps), "reset", id)
	require.NoError(t, err)

	_, err = env.run(t, NewSessionCommand(env.deps), "show", id)
	assert.True(t, errors.Is(err, mnerrors.ErrNotFound), "got %v", err)
}

func TestSession_SetRejected(t *testing.T) {
	env := newTestEnv(t)
	id := processIntoSession(t, env)

	_, err := env.run(t, NewSessionCommand(env.deps), "set", id, "metadata.colour", "blue")
	assert.Error(t, err)

	_, err = env.run(t, NewSessionCommand(env.deps), "set", id, "action_items.0.status", "someday")
	assert.Error(t, err)

	_, err = env.run(t, NewSessionCommand(env.deps), "set", id, "action_items.0.task", "")
	assert.Error(t, err)

	// Failed edits leave the stored record as it was.
	s := showSession(t, env, id)
	require.Len(t, s.Record.ActionItems, 1)
	assert.NotEmpty(t, s.Record.ActionItems[0].Task)
	assert.Equal(t, minutes.StatusPending, s.Record.ActionItems[0].Status)
}

func TestSession_AddActionValidation(t *testing.T) {
	env := newTestEnv(t)
	id := processIntoSession(t, env)

	_, err := env.run(t, NewSessionCommand(env.deps), "add-action", id, "--task", "Call Ana", "--status", "eventually")
	assert.ErrorIs(t, err, mnerrors.ErrValidation)

	_, err = env.run(t, NewSessionCommand(env.deps), "add-action", id)
	assert.Error(t, err)
}

func TestSession_Export(t *testing.T) {
	env := newTestEnv(t)
	id := processIntoSession(t, env)

	_, err := env.run(t, NewSessionCommand(env.deps), "set", id, "summary", "Sakshi: The sponsors were discussed.")
	require.NoError(t, err)

	outPath := filepath.Join(t.TempDir(), "minutes.txt")
	_, err = env.run(t, NewSessionCommand(env.deps), "export", id, "--out", outPath)
	require.NoError(t, err)
	assert.Contains(t, env.stderr.String(), "Wrote "+outPath)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Minutes of Meeting"))

	out, err := env.run(t, NewSessionCommand(env.deps), "export", id, "-o", "json")
	require.NoError(t, err)
	var rec minutes.Record
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.NotContains(t, rec.Summary, "Sakshi:")
}

func TestSession_InvalidID(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run(t, NewSessionCommand(env.deps), "show", "not-a-session")
	assert.ErrorIs(t, err, mnerrors.ErrValidation)
}

func TestNewActionItem(t *testing.T) {
	item, err := newActionItem("Send notes", "", "", "")
	require.NoError(t, err)
	assert.Equal(t, minutes.ActionItem{Task: "Send notes"}, item)

	item, err = newActionItem("Send notes", "Ana", "Friday", "in-progress")
	require.NoError(t, err)
	assert.Equal(t, minutes.StatusInProgress, item.Status)

	_, err = newActionItem("", "Ana", "", "")
	assert.Error(t, err)
}
