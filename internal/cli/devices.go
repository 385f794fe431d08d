package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwulff/voicememo/internal/audio"
)

func newDevicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio input devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()

			devices, err := audio.ListDevices(ctx)
			if err != nil {
				return fmt.Errorf("list devices: %w", err)
			}
			printDevices(cmd, devices)
			return nil
		},
	}
}

func printDevices(cmd *cobra.Command, devices []audio.Device) {
	if len(devices) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No input devices found.")
		return
	}
	for _, d := range devices {
		marker := " "
		if d.Default {
			marker = "*"
		}
		var notes string
		if !d.Available {
			notes += " (unavailable)"
		}
		if d.Muted {
			notes += " (muted)"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n    %s%s\n", marker, d.Description, d.ID, notes)
	}
}
