package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pkgsmith"
)

func newShowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [recipe]",
		Short: "Show a recipe's package metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recipe, err := loadRecipe(args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRecipeTable(recipe))
			return nil
		},
	}
	return cmd
}

func renderRecipeTable(recipe *pkgsmith.Recipe) string {
	installs := make([]string, 0, len(recipe.Install))
	for _, entry := range recipe.Install {
		installs = append(installs, entry.From+" -> "+entry.To)
	}
	rows := [][2]string{
		{"Name", recipe.Pkgname},
		{"Version", recipe.FullVersion(recipe.Pkgver)},
		{"Description", recipe.Pkgdesc},
		{"URL", recipe.URL},
		{"Architectures", strings.Join(recipe.Arch, ", ")},
		{"Licenses", strings.Join(recipe.License, ", ")},
		{"Depends", strings.Join(recipe.Depends, ", ")},
		{"Backup", strings.Join(recipe.Backup, ", ")},
		{"Source", recipe.Source},
		{"Installs", strings.Join(installs, "\n")},
	}
	return renderFieldTable(rows)
}
