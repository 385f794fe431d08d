// Package config resolves voicememo settings from defaults, an optional TOML
// file, a .env file, and environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrMissingAPIKey is returned by RequireAPIKey when no credential is set.
var ErrMissingAPIKey = errors.New("API_KEY is not set")

// DefaultSystemPrompt primes the assistant with the recording context.
const DefaultSystemPrompt = `You are a helpful assistant answering questions about a voice memo.
Use the transcript below as your primary source. If the transcript does not contain the answer, say so.`

// Config is the materialized runtime configuration.
type Config struct {
	APIKey          string
	BaseURL         string
	ChatModel       string
	TranscribeModel string
	SystemPrompt    string
	RequestTimeout  time.Duration
	ExportDir       string
	MCPAddr         string
	AudioInput      string
	AudioFallback   string
	LogLevel        string

	// Path is the config file that was read, empty when none existed.
	Path string
}

// fileConfig mirrors the TOML layout.
type fileConfig struct {
	APIKey          string `toml:"api_key"`
	BaseURL         string `toml:"base_url"`
	ChatModel       string `toml:"chat_model"`
	TranscribeModel string `toml:"transcribe_model"`
	SystemPrompt    string `toml:"system_prompt"`
	RequestTimeout  string `toml:"request_timeout"`
	ExportDir       string `toml:"export_dir"`
	MCPAddr         string `toml:"mcp_addr"`
	AudioInput      string `toml:"audio_input"`
	AudioFallback   string `toml:"audio_fallback"`
	LogLevel        string `toml:"log_level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		ChatModel:       "gpt-4o-mini",
		TranscribeModel: "whisper-1",
		SystemPrompt:    DefaultSystemPrompt,
		RequestTimeout:  60 * time.Second,
		ExportDir:       defaultExportDir(),
		AudioInput:      "default",
		AudioFallback:   "default",
		LogLevel:        "info",
	}
}

// RequireAPIKey is the one-shot credential gate.
func (c Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Validate checks values that would otherwise fail later at runtime. It does
// not check the credential; see RequireAPIKey.
func (c Config) Validate() error {
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error; got %q", c.LogLevel)
	}
	if strings.TrimSpace(c.ChatModel) == "" {
		return errors.New("chat_model must not be empty")
	}
	if strings.TrimSpace(c.TranscribeModel) == "" {
		return errors.New("transcribe_model must not be empty")
	}
	return nil
}

func defaultExportDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, "VoiceMemos")
	}
	return filepath.Join(".", "VoiceMemos")
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
