package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var serverFlag string
	var sessionFlag string
	var configFlag string

	ctx := newCommandContext(&serverFlag, &sessionFlag, &configFlag)

	rootCmd := &cobra.Command{
		Use:           "omero-render",
		Short:         "Tools for working with rendering settings",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "Image service base URL")
	rootCmd.PersistentFlags().StringVar(&sessionFlag, "session", "", "Session key for the image service")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	rootCmd.AddCommand(newInfoCommand(ctx))
	rootCmd.AddCommand(newGetCommand(ctx))
	rootCmd.AddCommand(newSetCommand(ctx))
	rootCmd.AddCommand(newCopyCommand(ctx))
	rootCmd.AddCommand(newTestCommand(ctx))

	return rootCmd
}
