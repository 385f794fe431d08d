package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/jwulff/voicememo/internal/audio"
	"github.com/jwulff/voicememo/internal/config"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.APIKey = "key"
	cfg.ExportDir = "/nonexistent/voicememo-export"
	return cfg
}

func TestRootCommands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.Contains(t, names, "doctor")
	require.Contains(t, names, "devices")
	require.Contains(t, names, "version")
	require.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestVersionCommand(t *testing.T) {
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	require.Contains(t, out.String(), "voicememo dev")
}

func TestDoctorAllGood(t *testing.T) {
	var out bytes.Buffer
	list := func(context.Context) ([]audio.Device, error) {
		return []audio.Device{{ID: "mic", Description: "Built-in Mic", Available: true, Default: true}}, nil
	}

	ok := runDoctor(context.Background(), newFormatter(&out), testConfig(), list)
	require.True(t, ok)
	require.Contains(t, out.String(), "✅ API key: configured")
	require.Contains(t, out.String(), "✅ Microphone: Built-in Mic")
	require.Contains(t, out.String(), "created on first export")
	require.Contains(t, out.String(), "Ready to record")
}

func TestDoctorMissingKeyAndAudio(t *testing.T) {
	var out bytes.Buffer
	cfg := testConfig()
	cfg.APIKey = ""
	list := func(context.Context) ([]audio.Device, error) {
		return nil, errors.New("connection refused")
	}

	ok := runDoctor(context.Background(), newFormatter(&out), cfg, list)
	require.False(t, ok)
	require.Contains(t, out.String(), "❌ API key")
	require.Contains(t, out.String(), "❌ PulseAudio: connection refused")
	require.Contains(t, out.String(), "Some prerequisites are missing.")
}

func TestPrintDevices(t *testing.T) {
	cmd := &cobra.Command{}
	var out bytes.Buffer
	cmd.SetOut(&out)

	printDevices(cmd, nil)
	require.Contains(t, out.String(), "No input devices found.")

	out.Reset()
	printDevices(cmd, []audio.Device{
		{ID: "alsa_input.usb", Description: "USB Mic", Available: true, Default: true},
		{ID: "alsa_input.hdmi", Description: "HDMI", Muted: true},
	})
	require.Contains(t, out.String(), "* USB Mic")
	require.Contains(t, out.String(), "alsa_input.hdmi (unavailable) (muted)")
}
