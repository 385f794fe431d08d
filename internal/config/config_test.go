package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"API_KEY",
	"VOICEMEMO_API_KEY",
	"VOICEMEMO_BASE_URL",
	"VOICEMEMO_CHAT_MODEL",
	"VOICEMEMO_TRANSCRIBE_MODEL",
	"VOICEMEMO_EXPORT_DIR",
	"VOICEMEMO_MCP_ADDR",
	"VOICEMEMO_AUDIO_INPUT",
	"VOICEMEMO_LOG_LEVEL",
}

// isolateEnv clears every variable Load reads and points XDG_CONFIG_HOME at
// an empty directory.
func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Setenv("HOME", t.TempDir())
	return xdg
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "voicememo", "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Empty(t, cfg.Path)
	require.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	require.Equal(t, "whisper-1", cfg.TranscribeModel)
	require.Equal(t, 60*time.Second, cfg.RequestTimeout)
	require.Equal(t, "info", cfg.LogLevel)
	require.Empty(t, cfg.APIKey)
	require.ErrorIs(t, cfg.RequireAPIKey(), ErrMissingAPIKey)
}

func TestLoadReadsAPIKeyFromEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("API_KEY", "k-123")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "k-123", cfg.APIKey)
	require.NoError(t, cfg.RequireAPIKey())
}

func TestPrefixedAPIKeyWins(t *testing.T) {
	isolateEnv(t)
	t.Setenv("API_KEY", "bare")
	t.Setenv("VOICEMEMO_API_KEY", "prefixed")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "prefixed", cfg.APIKey)
}

func TestWhitespaceAPIKeyFailsGate(t *testing.T) {
	cfg := Default()
	cfg.APIKey = "   "
	require.ErrorIs(t, cfg.RequireAPIKey(), ErrMissingAPIKey)
}

func TestLoadFileThenEnvOverrides(t *testing.T) {
	xdg := isolateEnv(t)
	path := writeConfig(t, xdg, `
api_key = "from-file"
base_url = "https://generativelanguage.googleapis.com/v1beta/openai/"
chat_model = "gemini-2.0-flash"
request_timeout = "15s"
export_dir = "/tmp/memos"
mcp_addr = "127.0.0.1:8765"
log_level = "debug"
`)
	t.Setenv("VOICEMEMO_CHAT_MODEL", "gpt-4o")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, path, cfg.Path)
	require.Equal(t, "from-file", cfg.APIKey)
	require.Equal(t, "https://generativelanguage.googleapis.com/v1beta/openai/", cfg.BaseURL)
	require.Equal(t, "gpt-4o", cfg.ChatModel)
	require.Equal(t, 15*time.Second, cfg.RequestTimeout)
	require.Equal(t, "/tmp/memos", cfg.ExportDir)
	require.Equal(t, "127.0.0.1:8765", cfg.MCPAddr)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadExplicitPath(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(`transcribe_model = "gpt-4o-transcribe"`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, cfg.Path)
	require.Equal(t, "gpt-4o-transcribe", cfg.TranscribeModel)
}

func TestLoadExplicitMissingPathFails(t *testing.T) {
	isolateEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRejectsBadTOML(t *testing.T) {
	xdg := isolateEnv(t)
	writeConfig(t, xdg, `api_key = `)

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	xdg := isolateEnv(t)
	writeConfig(t, xdg, `request_timeout = "soon"`)

	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "request_timeout")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults ok", mutate: func(*Config) {}},
		{name: "zero timeout", mutate: func(c *Config) { c.RequestTimeout = 0 }, wantErr: "request_timeout"},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "log_level"},
		{name: "empty chat model", mutate: func(c *Config) { c.ChatModel = " " }, wantErr: "chat_model"},
		{name: "empty transcribe model", mutate: func(c *Config) { c.TranscribeModel = "" }, wantErr: "transcribe_model"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoadDotEnvDoesNotOverrideSetVars(t *testing.T) {
	t.Setenv("VOICEMEMO_DOTENV_SET", "from-env")
	t.Setenv("VOICEMEMO_DOTENV_UNSET", "placeholder")
	require.NoError(t, os.Unsetenv("VOICEMEMO_DOTENV_UNSET"))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("VOICEMEMO_DOTENV_SET=from-file\nVOICEMEMO_DOTENV_UNSET=loaded\n"), 0o600))

	loadDotEnv(path)

	require.Equal(t, "from-env", os.Getenv("VOICEMEMO_DOTENV_SET"))
	require.Equal(t, "loaded", os.Getenv("VOICEMEMO_DOTENV_UNSET"))
}

func TestExpandTilde(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.Equal(t, filepath.Join(home, "memos"), expandTilde("~/memos"))
	require.Equal(t, "/abs/path", expandTilde("/abs/path"))
}
