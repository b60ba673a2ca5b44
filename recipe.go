package pkgsmith

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

type (
	// InstallEntry maps one file in the working copy to its destination path
	// below the package root.
	InstallEntry struct {
		From string `yaml:"from"`
		To   string `yaml:"to"`
	}
	// Recipe describes one package build: its metadata, the remote source
	// repository, and the files to stage. A recipe is immutable once loaded.
	Recipe struct {
		Pkgname string         `yaml:"pkgname"`
		Pkgver  string         `yaml:"pkgver"`
		Pkgrel  int            `yaml:"pkgrel"`
		Pkgdesc string         `yaml:"pkgdesc"`
		Arch    []string       `yaml:"arch"`
		URL     string         `yaml:"url"`
		License []string       `yaml:"license"`
		Depends []string       `yaml:"depends"`
		Backup  []string       `yaml:"backup"`
		Source  string         `yaml:"source"`
		Install []InstallEntry `yaml:"install"`
	}
)

// RecipeNew loads, expands, and validates a recipe from a YAML file.
func RecipeNew(filename string) (*Recipe, error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to read recipe %s: %w", filename, err)
	}
	recipe, err := RecipeFromBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("recipe %s: %w", filename, err)
	}
	return recipe, nil
}

// RecipeFromBytes parses a recipe from raw YAML, expands template variables
// in its path and URL fields, and validates it.
func RecipeFromBytes(raw []byte) (*Recipe, error) {
	recipe := &Recipe{Pkgrel: 1}
	err := yaml.Unmarshal(raw, recipe)
	if err != nil {
		return nil, fmt.Errorf("unable to parse recipe: %w", err)
	}
	if err := recipe.expand(); err != nil {
		return nil, err
	}
	if err := recipe.validate(); err != nil {
		return nil, err
	}
	return recipe, nil
}

// Variables returns the template variables a recipe provides to its own path
// and URL fields.
func (r *Recipe) Variables() StringMap {
	return StringMap{
		"pkgname": r.Pkgname,
		"pkgver":  r.Pkgver,
	}
}

// WorkingCopyDir returns the deterministic path of the recipe's working copy
// below srcDir. Repeated builds reuse this directory instead of accumulating
// checkouts.
func (r *Recipe) WorkingCopyDir(srcDir string) string {
	return filepath.Join(srcDir, r.Pkgname)
}

// FullVersion combines a resolved version with the recipe's release counter.
func (r *Recipe) FullVersion(version string) string {
	return fmt.Sprintf("%s-%d", version, r.Pkgrel)
}

func (r *Recipe) expand() error {
	vars := r.Variables()
	fields := []*string{&r.Source, &r.URL}
	for i := range r.Install {
		fields = append(fields, &r.Install[i].From, &r.Install[i].To)
	}
	for i := range r.Backup {
		fields = append(fields, &r.Backup[i])
	}
	for _, field := range fields {
		expanded, err := ExpandVariables(*field, vars)
		if err != nil {
			return err
		}
		*field = expanded
	}
	return nil
}

func (r *Recipe) validate() error {
	if r.Pkgname == "" {
		return fmt.Errorf("recipe has no pkgname")
	}
	if r.Source == "" {
		return fmt.Errorf("recipe has no source repository")
	}
	if len(r.Install) == 0 {
		return fmt.Errorf("recipe installs no files")
	}
	for _, entry := range r.Install {
		if entry.From == "" || entry.To == "" {
			return fmt.Errorf("incomplete install entry '%s' -> '%s'", entry.From, entry.To)
		}
		if err := checkRelative(entry.To); err != nil {
			return err
		}
		if err := checkRelative(entry.From); err != nil {
			return err
		}
	}
	return nil
}

// checkRelative rejects paths that would place or read files outside the
// package root or the working copy.
func checkRelative(p string) error {
	if filepath.IsAbs(p) {
		return fmt.Errorf("path '%s' must be relative", p)
	}
	clean := path.Clean(filepath.ToSlash(p))
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("path '%s' escapes its base directory", p)
	}
	return nil
}
