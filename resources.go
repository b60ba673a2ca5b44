package pkgsmith

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	rice "github.com/GeertJohan/go.rice"
)

var (
	resourceBox  *rice.Box
	resourceOnce sync.Once
)

// openBox opens the resource payload holding the default recipe and the
// language string catalogs. For go.rice's 'append' mode to work, the call
// to FindBox() has to be made with a literal string parameter.
func openBox() {
	var err error
	resourceBox, err = rice.FindBox("resources")
	if err != nil {
		panic(err)
	}
}

// GetResource returns the content of a single named file from the resource
// payload.
func GetResource(name string) (string, error) {
	resourceOnce.Do(openBox)
	text, err := resourceBox.String(name)
	if err != nil {
		return "", fmt.Errorf("resource %s not found", name)
	}
	return text, nil
}

// MustGetResource is GetResource for resources that ship with the binary
// and cannot be missing.
func MustGetResource(name string) string {
	text, err := GetResource(name)
	if err != nil {
		panic(err)
	}
	return text
}

// GetResourceFiltered returns the contents of all files below a resource
// directory whose paths match the given filter, keyed by path.
func GetResourceFiltered(dir string, filter *regexp.Regexp) (map[string]string, error) {
	resourceOnce.Do(openBox)
	contents := make(map[string]string)
	err := resourceBox.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		path = filepath.ToSlash(path)
		if info.IsDir() || !filter.MatchString(path) {
			return nil
		}
		text, err := resourceBox.String(path)
		if err != nil {
			return err
		}
		contents[path] = text
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("unable to walk resource dir %s: %w", dir, err)
	}
	return contents, nil
}

// MustGetResourceFiltered is GetResourceFiltered for resource directories
// that ship with the binary and cannot be missing.
func MustGetResourceFiltered(dir string, filter *regexp.Regexp) map[string]string {
	contents, err := GetResourceFiltered(dir, filter)
	if err != nil {
		panic(err)
	}
	return contents
}

// DefaultRecipe loads the recipe embedded in the binary, the htpcgui
// package this tool was grown around. The resource ships with the binary,
// so only a malformed recipe can fail here.
func DefaultRecipe() (*Recipe, error) {
	raw := MustGetResource("recipes/htpcgui.yml")
	recipe, err := RecipeFromBytes([]byte(strings.TrimSpace(raw) + "\n"))
	if err != nil {
		return nil, fmt.Errorf("embedded default recipe: %w", err)
	}
	return recipe, nil
}
