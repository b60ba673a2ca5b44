package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"pkgsmith"
)

func newBuildCommand() *cobra.Command {
	var srcDir, pkgRoot, logFile string
	var noLock bool

	cmd := &cobra.Command{
		Use:   "build [recipe]",
		Short: "Fetch the source, resolve the version, and stage the package",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, err := loadRecipe(args)
			if err != nil {
				return err
			}
			logfile := pkgsmith.StartLogging(logFile)
			defer logfile.Close()

			translator := pkgsmith.TranslatorVarNew(pkgsmith.StringMap{
				"pkgname": recipe.Pkgname,
			})
			fmt.Println(translator.Get("build_start"))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			version, err := pkgsmith.Build(ctx, recipe, pkgsmith.BuildOptions{
				SrcDir:   srcDir,
				PkgRoot:  pkgRoot,
				NoLock:   noLock,
				Progress: printStageProgress,
			})
			fmt.Print(clearLineVT100)
			if err != nil {
				if ctx.Err() != nil {
					fmt.Println(translator.Get("build_aborted"))
				}
				return err
			}
			translator.SetVariable("version", version)
			fmt.Println(translator.Get("build_done"))
			return nil
		},
	}

	cmd.Flags().StringVar(&srcDir, "srcdir", "src", "Directory holding working copies")
	cmd.Flags().StringVar(&pkgRoot, "pkgroot", "pkg", "Package root to stage files into")
	cmd.Flags().StringVar(&logFile, "logfile", "pkgsmith.log", "Build log file")
	cmd.Flags().BoolVar(&noLock, "no-lock", false, "Skip the working-copy build lock")

	return cmd
}
