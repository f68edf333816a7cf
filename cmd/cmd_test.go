package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/minutes-cli/config"
	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
	"github.com/otherjamesbrown/minutes-cli/pkg/session"
)

const sampleTranscript = "[00:00:02] Sakshi: Good afternoon. [00:00:08] Nayana: Action: Nikitha to approach sponsors; deadline 31/10/2025."

var fixedNow = time.Date(2025, 10, 20, 15, 0, 0, 0, time.UTC)

// testEnv is a CommandDeps wired to buffers and a shared memory store.
type testEnv struct {
	deps   *CommandDeps
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	store  *session.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		store:  session.NewMemoryStore(time.Hour),
	}
	env.deps = &CommandDeps{
		Config: config.DefaultConfig(),
		OpenStore: func(ctx context.Context, cfg *config.CLIConfig) (session.Store, error) {
			return env.store, nil
		},
		Logger: logging.NewNopLogger(),
		Stdin:  strings.NewReader(""),
		Stdout: env.stdout,
		Stderr: env.stderr,
		Now:    func() time.Time { return fixedNow },
	}
	return env
}

// run executes c with args and returns stdout.
func (e *testEnv) run(t *testing.T, c *cobra.Command, args ...string) (string, error) {
	t.Helper()
	e.stdout.Reset()
	c.SetArgs(args)
	c.SetOut(&bytes.Buffer{})
	c.SetErr(&bytes.Buffer{})
	c.SilenceUsage = true
	c.SilenceErrors = true
	err := c.Execute()
	return e.stdout.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}
