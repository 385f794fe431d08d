package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load builds the configuration. explicitPath overrides the default config file
// location; a missing default file is not an error, a missing explicit one is.
// The credential is read here once and never re-read.
func Load(explicitPath string) (Config, error) {
	loadDotEnv(".env")

	cfg := Default()

	path, explicit, err := resolvePath(explicitPath)
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		if err := applyFile(&cfg, path); err != nil {
			if !explicit && errors.Is(err, os.ErrNotExist) {
				path = ""
			} else {
				return Config{}, err
			}
		}
	}
	cfg.Path = path

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadDotEnv loads KEY=value pairs without overriding variables that are
// already set.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

func resolvePath(explicitPath string) (string, bool, error) {
	if p := strings.TrimSpace(explicitPath); p != "" {
		return expandTilde(p), true, nil
	}
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "voicememo", "config.toml"), false, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", false, nil
	}
	return filepath.Join(home, ".config", "voicememo", "config.toml"), false, nil
}

func applyFile(cfg *Config, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("read config %q: %w", path, err)
		}
		return fmt.Errorf("parse config %q: %w", path, err)
	}

	setString(&cfg.APIKey, fc.APIKey)
	setString(&cfg.BaseURL, fc.BaseURL)
	setString(&cfg.ChatModel, fc.ChatModel)
	setString(&cfg.TranscribeModel, fc.TranscribeModel)
	setString(&cfg.SystemPrompt, fc.SystemPrompt)
	setString(&cfg.MCPAddr, fc.MCPAddr)
	setString(&cfg.AudioInput, fc.AudioInput)
	setString(&cfg.AudioFallback, fc.AudioFallback)
	setString(&cfg.LogLevel, fc.LogLevel)
	if fc.ExportDir != "" {
		cfg.ExportDir = expandTilde(fc.ExportDir)
	}
	if fc.RequestTimeout != "" {
		d, err := time.ParseDuration(fc.RequestTimeout)
		if err != nil {
			return fmt.Errorf("parse config %q: request_timeout: %w", path, err)
		}
		cfg.RequestTimeout = d
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	// VOICEMEMO_API_KEY wins over the bare API_KEY.
	setString(&cfg.APIKey, os.Getenv("API_KEY"))
	setString(&cfg.APIKey, os.Getenv("VOICEMEMO_API_KEY"))
	setString(&cfg.BaseURL, os.Getenv("VOICEMEMO_BASE_URL"))
	setString(&cfg.ChatModel, os.Getenv("VOICEMEMO_CHAT_MODEL"))
	setString(&cfg.TranscribeModel, os.Getenv("VOICEMEMO_TRANSCRIBE_MODEL"))
	setString(&cfg.MCPAddr, os.Getenv("VOICEMEMO_MCP_ADDR"))
	setString(&cfg.AudioInput, os.Getenv("VOICEMEMO_AUDIO_INPUT"))
	setString(&cfg.LogLevel, os.Getenv("VOICEMEMO_LOG_LEVEL"))
	if v := strings.TrimSpace(os.Getenv("VOICEMEMO_EXPORT_DIR")); v != "" {
		cfg.ExportDir = expandTilde(v)
	}
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}
