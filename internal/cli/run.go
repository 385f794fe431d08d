package cli

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jwulff/voicememo/internal/app"
	"github.com/jwulff/voicememo/internal/assistant"
	"github.com/jwulff/voicememo/internal/audio"
	"github.com/jwulff/voicememo/internal/audiostore"
	"github.com/jwulff/voicememo/internal/config"
	"github.com/jwulff/voicememo/internal/export"
	"github.com/jwulff/voicememo/internal/logging"
	"github.com/jwulff/voicememo/internal/mcpserver"
	"github.com/jwulff/voicememo/internal/recorder"
	"github.com/jwulff/voicememo/internal/store"
	"github.com/jwulff/voicememo/internal/version"
)

// runTUI checks the credential once, then builds the session and runs the
// TUI until the user quits.
func runTUI(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := cfg.RequireAPIKey(); err != nil {
		if _, runErr := tea.NewProgram(app.NewConfigError(err), tea.WithAltScreen()).Run(); runErr != nil {
			return fmt.Errorf("run TUI: %w", runErr)
		}
		return err
	}

	logRT, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logRT.Close()
	logger := logRT.Logger

	blobs, err := audiostore.OpenMemory()
	if err != nil {
		return fmt.Errorf("open audio store: %w", err)
	}
	defer blobs.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	st := store.New()
	rec := recorder.New(recorder.PulseOpener(cfg.AudioInput, cfg.AudioFallback), audio.SampleRate)

	if cfg.MCPAddr != "" {
		srv := mcpserver.New(st, version.Version, logger)
		go func() {
			if err := srv.Start(cfg.MCPAddr); err != nil {
				logger.Error("mcp server", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("mcp shutdown", "error", err)
			}
		}()
	}

	model := app.New(app.Deps{
		Store:    st,
		Recorder: rec,
		Factory:  recorder.NewFactory(blobs),
		Blobs:    blobs,
		Assistant: assistant.New(assistant.Options{
			APIKey:          cfg.APIKey,
			BaseURL:         cfg.BaseURL,
			ChatModel:       cfg.ChatModel,
			TranscribeModel: cfg.TranscribeModel,
			SystemPrompt:    cfg.SystemPrompt,
		}),
		Exporter:       export.New(cfg.ExportDir, blobs, cfg.ChatModel),
		Logger:         logger,
		Ctx:            ctx,
		ChatModel:      cfg.ChatModel,
		RequestTimeout: cfg.RequestTimeout,
	})

	logger.Info("session started", "config", cfg.Path, "chat_model", cfg.ChatModel, "mcp_addr", cfg.MCPAddr)

	_, runErr := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	if rec.Recording() {
		if _, err := rec.Stop(); err != nil {
			logger.Warn("stop recorder on exit", "error", err)
		}
	}
	logger.Info("session ended", "recordings", st.Len())

	if runErr != nil {
		return fmt.Errorf("run TUI: %w", runErr)
	}
	return nil
}
