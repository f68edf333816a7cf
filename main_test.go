package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/minutes-cli/cmd"
	"github.com/otherjamesbrown/minutes-cli/config"
	"github.com/otherjamesbrown/minutes-cli/pkg/buildinfo"
	mnerrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
	"github.com/otherjamesbrown/minutes-cli/pkg/logging"
)

func testDeps() (*cmd.CommandDeps, *bytes.Buffer) {
	var out bytes.Buffer
	return &cmd.CommandDeps{
		Config: config.DefaultConfig(),
		Logger: logging.NewNopLogger(),
		Stdin:  strings.NewReader(""),
		Stdout: &out,
		Stderr: &bytes.Buffer{},
	}, &out
}

func execute(t *testing.T, deps *cmd.CommandDeps, args ...string) error {
	t.Helper()
	root := newRootCommand(deps)
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	return root.Execute()
}

func TestRootCommand_Subcommands(t *testing.T) {
	deps, _ := testDeps()
	root := newRootCommand(deps)

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"process", "review", "session", "parse", "align", "chunk", "extract", "auth", "config", "version"} {
		assert.Contains(t, names, want)
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("timeout"))
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
	assert.NotNil(t, root.PersistentFlags().Lookup("log-json"))
}

func TestVersionCommand(t *testing.T) {
	deps, out := testDeps()
	require.NoError(t, execute(t, deps, "version"))

	if !strings.HasPrefix(out.String(), "minutes "+buildinfo.Version) {
		t.Errorf("unexpected version output: %q", out.String())
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	deps, out := testDeps()
	require.NoError(t, execute(t, deps, "version", "--json"))

	var info buildinfo.Info
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, buildinfo.Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
}

func TestConfigSet(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MINUTES_CONFIG_DIR", dir)
	t.Setenv("MINUTES_TIMEOUT", "")
	chdirForTest(t, t.TempDir())

	deps, out := testDeps()
	require.NoError(t, execute(t, deps, "config", "set", "timeout", "10m"))
	assert.Contains(t, out.String(), "Set timeout = 10m")

	data, err := os.ReadFile(filepath.Join(dir, config.DefaultConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(data), "timeout: 10m0s")

	out.Reset()
	require.NoError(t, execute(t, deps, "config", "show"))
	assert.Contains(t, out.String(), "10m0s")
}

func TestConfigSet_Rejected(t *testing.T) {
	t.Setenv("MINUTES_CONFIG_DIR", t.TempDir())
	chdirForTest(t, t.TempDir())

	deps, _ := testDeps()
	assert.Error(t, execute(t, deps, "config", "set", "no_such_key", "x"))
	assert.Error(t, execute(t, deps, "config", "set", "timeout", "soon"))
	assert.Error(t, execute(t, deps, "config", "set", "session.backend", "postgres"))
}

func TestProcess_ViaRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meeting.txt")
	transcript := "[00:00:02] Sakshi: Good afternoon. [00:00:08] Nayana: Action: Nikitha to approach sponsors; deadline 31/10/2025."
	require.NoError(t, os.WriteFile(path, []byte(transcript), 0600))

	deps, out := testDeps()
	require.NoError(t, execute(t, deps, "process", path, "-o", "json", "--timeout", "30s"))

	var got struct {
		RunID  string `json:"run_id"`
		Record struct {
			ActionItems []struct {
				Responsible string `json:"responsible"`
			} `json:"action_items"`
		} `json:"record"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.NotEmpty(t, got.RunID)
	require.Len(t, got.Record.ActionItems, 1)
	assert.Equal(t, "Nikitha", got.Record.ActionItems[0].Responsible)
	assert.Equal(t, "30s", deps.Config.Timeout.String())
}

func TestDebugFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meeting.txt")
	require.NoError(t, os.WriteFile(path, []byte("Alice: hello there"), 0600))

	deps, _ := testDeps()
	require.NoError(t, execute(t, deps, "parse", path, "--debug"))
	assert.True(t, deps.Config.Debug)
}

func TestErrorMessage(t *testing.T) {
	plain := errorMessage(errors.New("boom"))
	assert.Equal(t, "Error: boom\n", plain)

	pe := &mnerrors.PipelineError{Code: mnerrors.ErrParseError, Stage: mnerrors.StageParse, Message: "unreadable transcript"}
	msg := errorMessage(pe)
	assert.Contains(t, msg, "Code: parse_error")
	assert.Contains(t, msg, mnerrors.GetSuggestedAction(mnerrors.ErrParseError))
}

// chdirForTest changes the working directory for the duration of the test,
// matching testing.T.Chdir (Go 1.24+) on older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
