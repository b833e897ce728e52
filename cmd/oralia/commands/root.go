package commands

import (
	"oralia-konnector/internal/telemetry"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	config string
	debug  bool
}

func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "oralia",
		Short:         "oralia scrapes bills and statements from the oralia extranet.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			telemetry.InitSlog(flags.debug)
		},
	}
	rootCmd.PersistentFlags().StringVar(&flags.config, "config", "config.json5", "The configuration file to read.")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging.")

	rootCmd.AddCommand(newRunCmd(flags))
	rootCmd.AddCommand(newListCmd(flags))
	return rootCmd
}
