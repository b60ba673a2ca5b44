package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"pkgsmith"
)

func newFetchCommand() *cobra.Command {
	var srcDir string

	cmd := &cobra.Command{
		Use:   "fetch [recipe]",
		Short: "Clone or update the recipe's working copy",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, err := loadRecipe(args)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			err = pkgsmith.EnsureCheckout(ctx, recipe.WorkingCopyDir(srcDir), recipe.Source)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), pkgsmith.TranslatorNew().Get("fetch_done"))
			return nil
		},
	}

	cmd.Flags().StringVar(&srcDir, "srcdir", "src", "Directory holding working copies")

	return cmd
}

func newVersionCommand() *cobra.Command {
	var srcDir string

	cmd := &cobra.Command{
		Use:   "version [recipe]",
		Short: "Print the package version resolved from the working copy",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, err := loadRecipe(args)
			if err != nil {
				return err
			}
			version, err := pkgsmith.ResolveVersion(recipe.WorkingCopyDir(srcDir))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		},
	}

	cmd.Flags().StringVar(&srcDir, "srcdir", "src", "Directory holding working copies")

	return cmd
}

func newStageCommand() *cobra.Command {
	var srcDir, pkgRoot string

	cmd := &cobra.Command{
		Use:   "stage [recipe]",
		Short: "Stage the recipe's files from an existing working copy",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, err := loadRecipe(args)
			if err != nil {
				return err
			}
			stager, err := pkgsmith.StagerNew(recipe, recipe.WorkingCopyDir(srcDir), pkgRoot)
			if err != nil {
				return err
			}
			stager.SetProgressFunction(func(status pkgsmith.StageStatus) {
				if file := stager.NextFile(); file != nil {
					printStageTarget(file.Target)
				}
			})
			stager.StartStage()
			if err := stager.Err(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), clearLineVT100+stager.SizeString())
			return nil
		},
	}

	cmd.Flags().StringVar(&srcDir, "srcdir", "src", "Directory holding working copies")
	cmd.Flags().StringVar(&pkgRoot, "pkgroot", "pkg", "Package root to stage files into")

	return cmd
}
