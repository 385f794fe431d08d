// Package cli wires the voicememo commands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwulff/voicememo/internal/config"
	"github.com/jwulff/voicememo/internal/version"
)

type options struct {
	configPath string
}

func (o *options) load() (config.Config, error) {
	return config.Load(o.configPath)
}

// Execute runs the root command and prints any error to stderr.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		newFormatter(os.Stderr).Error(err.Error())
		return 1
	}
	return 0
}

func NewRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "voicememo",
		Short:         "Record voice memos, transcribe them, and chat about them",
		Long:          "A terminal assistant that records audio, transcribes each recording, and lets you ask an AI model questions about it.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), cfg)
		},
	}

	rootCmd.Version = version.Version
	rootCmd.SetVersionTemplate(version.Full() + "\n")
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.toml")

	rootCmd.AddCommand(newDoctorCmd(opts))
	rootCmd.AddCommand(newDevicesCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		},
	}
}
