package cmd

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/minutes-cli/credentials"
)

// authEnv points the credential store at a temp dir with an env-supplied key.
func authEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("MINUTES_CONFIG_DIR", t.TempDir())
	t.Setenv(credentials.EnvEncryptionKey, strings.Repeat("ab", 32))
	t.Setenv(credentials.EnvAPIKey, "")
	t.Setenv(credentials.EnvOpenAIAPIKey, "")

	env := newTestEnv(t)
	env.deps.OpenCredentials = func() (*credentials.Store, error) {
		return credentials.NewStoreWithKeyProvider(credentials.NewEnvKeyProvider(credentials.EnvEncryptionKey))
	}
	return env
}

func TestAuth_LoginStatusLogout(t *testing.T) {
	env := authEnv(t)
	key := "sk-" + gofakeit.Password(true, true, true, false, false, 32)

	out, err := env.run(t, NewAuthCommand(env.deps), "login", "--api-key", key, "--base-url", "http://localhost:8000/v1")
	require.NoError(t, err)
	assert.Contains(t, out, "Login successful!")
	assert.Contains(t, out, credentials.MaskAPIKey(key))
	assert.NotContains(t, out, key)

	store, err := env.deps.OpenCredentials()
	require.NoError(t, err)
	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, key, creds.APIKey)
	assert.Equal(t, "http://localhost:8000/v1", creds.BaseURL)

	out, err = env.run(t, NewAuthCommand(env.deps), "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Active Credential Source: stored credentials")
	assert.Contains(t, out, "Base URL: http://localhost:8000/v1")

	out, err = env.run(t, NewAuthCommand(env.deps), "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out successfully.")
	assert.False(t, store.Exists())

	out, err = env.run(t, NewAuthCommand(env.deps), "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "No stored credentials found.")
}

func TestAuth_LoginFromEnv(t *testing.T) {
	env := authEnv(t)
	t.Setenv(credentials.EnvOpenAIAPIKey, "sk-from-the-environment")

	out, err := env.run(t, NewAuthCommand(env.deps), "login", "--non-interactive")
	require.NoError(t, err)
	assert.Contains(t, out, "Using API key from OPENAI_API_KEY")

	out, err = env.run(t, NewAuthCommand(env.deps), "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Active Credential Source: OPENAI_API_KEY")
}

func TestAuth_LoginPrompt(t *testing.T) {
	env := authEnv(t)
	env.deps.Stdin = strings.NewReader("sk-typed-at-the-prompt\n")

	_, err := env.run(t, NewAuthCommand(env.deps), "login")
	require.NoError(t, err)

	store, err := env.deps.OpenCredentials()
	require.NoError(t, err)
	creds, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-typed-at-the-prompt", creds.APIKey)
}

func TestAuth_LoginRejected(t *testing.T) {
	env := authEnv(t)

	_, err := env.run(t, NewAuthCommand(env.deps), "login", "--non-interactive")
	assert.ErrorContains(t, err, "--non-interactive")

	_, err = env.run(t, NewAuthCommand(env.deps), "login", "--api-key", "short")
	assert.ErrorContains(t, err, "too short")
}

func TestAuth_StatusNotAuthenticated(t *testing.T) {
	env := authEnv(t)

	out, err := env.run(t, NewAuthCommand(env.deps), "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Stored Credentials: None")
	assert.Contains(t, out, "Not authenticated.")
}

func TestValidateAPIKey(t *testing.T) {
	assert.NoError(t, validateAPIKey("sk-abcdefgh"))
	assert.Error(t, validateAPIKey(""))
	assert.Error(t, validateAPIKey("sk-1"))
	assert.Error(t, validateAPIKey("sk-abc defgh"))
}
