package main

import (
	"fmt"

	"pkgsmith"
)

// Linux terminal command string to clear the current line and reset the cursor
const clearLineVT100 = "\033[2K\r"

// loadRecipe resolves the recipe argument of a command: an explicit recipe
// file when given, the embedded default recipe otherwise.
func loadRecipe(args []string) (*pkgsmith.Recipe, error) {
	if len(args) > 0 {
		return pkgsmith.RecipeNew(args[0])
	}
	return pkgsmith.DefaultRecipe()
}

// printStageProgress renders a single staged file on the current terminal
// line, truncated from the left so the tail of the path stays visible.
func printStageProgress(status pkgsmith.StageStatus) {
	if status.File == nil {
		return
	}
	printStageTarget(status.File.Target)
}

func printStageTarget(target string) {
	maxLen := 70
	if len(target) > maxLen {
		target = "..." + target[len(target)-(maxLen-3):]
	}
	fmt.Print(clearLineVT100 + target)
}
