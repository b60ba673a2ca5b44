package pkgsmith

import (
	"path/filepath"
	"strings"
	"testing"
)

const testRecipeYAML = `
pkgname: htpcgui
pkgver: v1
pkgdesc: GUI helper script
arch: [any]
url: https://example.com/htpcgui
license: [GPL]
depends: [python, python-psutil, python-apscheduler, kodi]
backup:
  - etc/htpc/{{.pkgname}}.conf
source: https://example.com/{{.pkgname}}.git
install:
  - from: src/{{.pkgname}}.py
    to: usr/share/htpclib/{{.pkgname}}.py
  - from: src/{{.pkgname}}.conf
    to: etc/htpc/{{.pkgname}}.conf
`

func TestRecipeFromBytes(t *testing.T) {
	recipe, err := RecipeFromBytes([]byte(testRecipeYAML))
	if err != nil {
		t.Fatalf("RecipeFromBytes: %v", err)
	}
	if recipe.Pkgname != "htpcgui" {
		t.Errorf("Pkgname = %q", recipe.Pkgname)
	}
	if recipe.Pkgrel != 1 {
		t.Errorf("default Pkgrel = %d, want 1", recipe.Pkgrel)
	}
	if recipe.Source != "https://example.com/htpcgui.git" {
		t.Errorf("Source not expanded: %q", recipe.Source)
	}
	if recipe.Install[0].From != "src/htpcgui.py" {
		t.Errorf("install from not expanded: %q", recipe.Install[0].From)
	}
	if recipe.Install[1].To != "etc/htpc/htpcgui.conf" {
		t.Errorf("install to not expanded: %q", recipe.Install[1].To)
	}
	if recipe.Backup[0] != "etc/htpc/htpcgui.conf" {
		t.Errorf("backup not expanded: %q", recipe.Backup[0])
	}
}

func TestRecipeValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no pkgname", "source: x\ninstall:\n  - {from: a, to: b}\n"},
		{"no source", "pkgname: x\ninstall:\n  - {from: a, to: b}\n"},
		{"no install entries", "pkgname: x\nsource: y\n"},
		{"incomplete entry", "pkgname: x\nsource: y\ninstall:\n  - {from: a}\n"},
		{"absolute target", "pkgname: x\nsource: y\ninstall:\n  - {from: a, to: /etc/b}\n"},
		{"escaping target", "pkgname: x\nsource: y\ninstall:\n  - {from: a, to: ../b}\n"},
		{"escaping source", "pkgname: x\nsource: y\ninstall:\n  - {from: ../a, to: b}\n"},
		{"bad template", "pkgname: x\nsource: \"{{.broken\"\ninstall:\n  - {from: a, to: b}\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := RecipeFromBytes([]byte(c.yaml)); err == nil {
				t.Errorf("recipe with %s should fail validation", c.name)
			}
		})
	}
}

func TestRecipePaths(t *testing.T) {
	recipe, err := RecipeFromBytes([]byte(testRecipeYAML))
	if err != nil {
		t.Fatalf("RecipeFromBytes: %v", err)
	}
	want := filepath.Join("srcdir", "htpcgui")
	if got := recipe.WorkingCopyDir("srcdir"); got != want {
		t.Errorf("WorkingCopyDir = %q, want %q", got, want)
	}
	// Same recipe, same srcdir: same working copy, builds never accumulate
	// checkouts.
	if recipe.WorkingCopyDir("srcdir") != want {
		t.Error("WorkingCopyDir is not deterministic")
	}
	if got := recipe.FullVersion("v1.r2.gabc1234"); got != "v1.r2.gabc1234-1" {
		t.Errorf("FullVersion = %q", got)
	}
}

func TestRecipeNewMissingFile(t *testing.T) {
	_, err := RecipeNew(filepath.Join(t.TempDir(), "nope.yml"))
	if err == nil {
		t.Error("RecipeNew with a missing file should fail")
	}
	if err != nil && !strings.Contains(err.Error(), "nope.yml") {
		t.Errorf("error does not name the file: %v", err)
	}
}
