package pkgsmith

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PkgInfoFilename is the metadata file written into the package root after
// staging, in the line-oriented key = value format package managers read.
const PkgInfoFilename = ".PKGINFO"

// WritePkgInfo writes the package metadata file into the package root. The
// version passed in is the resolved one; the recipe's release counter is
// appended to it. Backup-marked files are listed so the package manager
// preserves local edits to them across upgrades.
func WritePkgInfo(recipe *Recipe, pkgRoot, version string, size int64) error {
	return writePkgInfoAt(recipe, pkgRoot, version, size, time.Now())
}

func writePkgInfoAt(recipe *Recipe, pkgRoot, version string, size int64, buildDate time.Time) error {
	var b strings.Builder
	line := func(key, value string) {
		fmt.Fprintf(&b, "%s = %s\n", key, value)
	}
	fmt.Fprintf(&b, "# Generated by pkgsmith\n")
	line("pkgname", recipe.Pkgname)
	line("pkgver", recipe.FullVersion(version))
	if recipe.Pkgdesc != "" {
		line("pkgdesc", recipe.Pkgdesc)
	}
	if recipe.URL != "" {
		line("url", recipe.URL)
	}
	line("builddate", fmt.Sprintf("%d", buildDate.Unix()))
	line("size", fmt.Sprintf("%d", size))
	for _, arch := range recipe.Arch {
		line("arch", arch)
	}
	for _, license := range recipe.License {
		line("license", license)
	}
	for _, dep := range recipe.Depends {
		line("depend", dep)
	}
	for _, backup := range recipe.Backup {
		line("backup", backup)
	}
	filename := filepath.Join(pkgRoot, PkgInfoFilename)
	err := os.WriteFile(filename, []byte(b.String()), 0644)
	if err != nil {
		return fmt.Errorf("unable to write %s: %w", filename, err)
	}
	return nil
}
