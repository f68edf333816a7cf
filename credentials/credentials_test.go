package credentials

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// testEncryptionKey is a fixed 32-byte key for testing (hex-encoded to 64 chars)
const testEncryptionKey = "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MINUTES_CONFIG_DIR", dir)
	t.Setenv(EnvEncryptionKey, testEncryptionKey)
	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvOpenAIAPIKey, "")

	store, err := NewStore()
	require.NoError(t, err)
	return store, dir
}

func TestCredentialsDir(t *testing.T) {
	t.Setenv("MINUTES_CONFIG_DIR", "")
	dir, err := CredentialsDir()
	require.NoError(t, err)
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, ".minutes"), dir)

	t.Setenv("MINUTES_CONFIG_DIR", "/tmp/minutes-creds")
	path, err := CredentialsPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/minutes-creds/credentials.yaml", path)
}

func TestStore_SaveLoad(t *testing.T) {
	store, dir := newTestStore(t)
	assert.False(t, store.Exists())

	err := store.Save(&Credentials{
		Provider: ProviderOpenAI,
		APIKey:   "sk-test-1234567890",
		BaseURL:  "http://localhost:11434/v1",
	})
	require.NoError(t, err)
	assert.True(t, store.Exists())

	path := filepath.Join(dir, DefaultCredentialsFile)
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	// The key is not stored in clear text.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "sk-test-1234567890")
	var onDisk Credentials
	require.NoError(t, yaml.Unmarshal(raw, &onDisk))
	assert.NotEmpty(t, onDisk.APIKey)
	assert.False(t, onDisk.LastUpdated.IsZero())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "sk-test-1234567890", loaded.APIKey)
	assert.Equal(t, ProviderOpenAI, loaded.Provider)
	assert.Equal(t, "http://localhost:11434/v1", loaded.BaseURL)
	assert.Equal(t, path, loaded.Source)
}

func TestStore_SaveRequiresKey(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Error(t, store.Save(&Credentials{Provider: ProviderOpenAI}))
}

func TestStore_LoadMissing(t *testing.T) {
	store, _ := newTestStore(t)
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestStore_LoadWrongKey(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Save(&Credentials{Provider: ProviderOpenAI, APIKey: "sk-secret-value"}))

	t.Setenv(EnvEncryptionKey, strings.Repeat("ab", 32))
	other, err := NewStore()
	require.NoError(t, err)

	_, err = other.Load()
	assert.ErrorIs(t, err, ErrEncryptionFailed)
}

func TestStore_Delete(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Save(&Credentials{Provider: ProviderOpenAI, APIKey: "sk-secret-value"}))

	require.NoError(t, store.Delete())
	assert.False(t, store.Exists())
	// Deleting twice is fine.
	assert.NoError(t, store.Delete())
}

func TestEncryptDecrypt(t *testing.T) {
	store, _ := newTestStore(t)

	for _, plain := range []string{"", "short", strings.Repeat("long-key-", 50), "ключ-üñí"} {
		enc, err := store.encrypt(plain)
		require.NoError(t, err)
		dec, err := store.decrypt(enc)
		require.NoError(t, err)
		assert.Equal(t, plain, dec)
	}

	a, _ := store.encrypt("same")
	b, _ := store.encrypt("same")
	assert.NotEqual(t, a, b, "nonce must differ between encryptions")

	_, err := store.decrypt("not base64!")
	assert.ErrorIs(t, err, ErrEncryptionFailed)
	_, err = store.decrypt("c2hvcnQ=")
	assert.ErrorIs(t, err, ErrEncryptionFailed)
}

func TestActiveAPIKey(t *testing.T) {
	store, _ := newTestStore(t)
	require.NoError(t, store.Save(&Credentials{Provider: ProviderOpenAI, APIKey: "sk-stored-key"}))

	creds, err := ActiveAPIKey(store)
	require.NoError(t, err)
	assert.Equal(t, "sk-stored-key", creds.APIKey)

	t.Setenv(EnvOpenAIAPIKey, "sk-openai-env")
	creds, err = ActiveAPIKey(store)
	require.NoError(t, err)
	assert.Equal(t, "sk-openai-env", creds.APIKey)
	assert.Equal(t, EnvOpenAIAPIKey, creds.Source)

	t.Setenv(EnvAPIKey, "sk-minutes-env")
	creds, err = ActiveAPIKey(nil)
	require.NoError(t, err)
	assert.Equal(t, "sk-minutes-env", creds.APIKey)

	t.Setenv(EnvAPIKey, "")
	t.Setenv(EnvOpenAIAPIKey, "")
	_, err = ActiveAPIKey(nil)
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"abc", "***"},
		{"12345678", "********"},
		{"sk-proj-abcdefghijkl", "sk-********...ijkl"},
		{"gsk_abcdefghijkl", "gsk_********..."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MaskAPIKey(tt.in), tt.in)
	}
}
