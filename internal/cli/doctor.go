package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwulff/voicememo/internal/audio"
	"github.com/jwulff/voicememo/internal/config"
)

func newDoctorCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and audio prerequisites",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			runDoctor(ctx, newFormatter(cmd.OutOrStdout()), cfg, audio.ListDevices)
			return nil
		},
	}
}

type listDevicesFunc func(context.Context) ([]audio.Device, error)

// runDoctor prints one line per check and reports whether all passed.
func runDoctor(ctx context.Context, f *formatter, cfg config.Config, listDevices listDevicesFunc) bool {
	ok := true

	if cfg.Path != "" {
		f.SetupCheck("Config file", true, cfg.Path)
	} else {
		f.SetupCheck("Config file", true, "none found, using defaults and environment")
	}

	if err := cfg.RequireAPIKey(); err != nil {
		f.SetupCheck("API key", false, "not set. Set API_KEY or VOICEMEMO_API_KEY, or add api_key to config")
		ok = false
	} else {
		f.SetupCheck("API key", true, "configured")
	}

	endpoint := cfg.BaseURL
	if endpoint == "" {
		endpoint = "OpenAI default"
	}
	f.SetupCheck("Endpoint", true, endpoint)
	f.SetupCheck("Models", true, cfg.ChatModel+" (chat), "+cfg.TranscribeModel+" (transcription)")

	if ctx == nil {
		ctx = context.Background()
	}
	devices, err := listDevices(ctx)
	switch {
	case err != nil:
		f.SetupCheck("PulseAudio", false, err.Error())
		ok = false
	case len(devices) == 0:
		f.SetupCheck("PulseAudio", false, "no input devices found")
		ok = false
	default:
		if d, err := audio.SelectFromDevices(devices, cfg.AudioInput, cfg.AudioFallback); err != nil {
			f.SetupCheck("Microphone", false, err.Error())
			ok = false
		} else {
			f.SetupCheck("Microphone", true, d.Description)
		}
	}

	if info, err := os.Stat(cfg.ExportDir); err == nil && info.IsDir() {
		f.SetupCheck("Export directory", true, cfg.ExportDir)
	} else {
		f.SetupCheck("Export directory", true, cfg.ExportDir+" (created on first export)")
	}

	if cfg.MCPAddr != "" {
		f.SetupCheck("MCP server", true, "http://"+cfg.MCPAddr+"/mcp")
	}

	if ok {
		f.Success("\nAll prerequisites met. Ready to record!")
	} else {
		f.Warning("\nSome prerequisites are missing.")
	}
	return ok
}
