package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "pkgsmith",
		Short:         "Recipe-driven package build tool",
		Long: "pkgsmith runs package build recipes: it checks out a remote git source,\n" +
			"derives a package version from the repository's tag history, and stages\n" +
			"the recipe's files into a package root.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(newBuildCommand())
	rootCmd.AddCommand(newFetchCommand())
	rootCmd.AddCommand(newStageCommand())
	rootCmd.AddCommand(newVersionCommand())
	rootCmd.AddCommand(newShowCommand())

	return rootCmd
}
