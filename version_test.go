package pkgsmith

import (
	"fmt"
	"testing"
)

func TestRewriteVersion(t *testing.T) {
	cases := []struct {
		descriptor string
		want       string
	}{
		{"v1", "v1"},
		{"v1-2-gdeadbee", "v1.r2.gdeadbee"},
		{"2.0.1-14-g0a1b2c3", "2.0.1.r14.g0a1b2c3"},
		// A hyphenated tag gets the revision marker on the wrong segment,
		// same as the shell substitution this models.
		{"v1-beta-2-gdeadbee", "v1.rbeta.2.gdeadbee"},
	}
	for _, c := range cases {
		if got := RewriteVersion(c.descriptor); got != c.want {
			t.Errorf("RewriteVersion(%q) = %q, want %q", c.descriptor, got, c.want)
		}
	}
}

func TestDescribeTagAtHead(t *testing.T) {
	repo := testRepoNew(t)
	repo.tag("v1", repo.commitFile("a.txt", "a"))

	descriptor, err := Describe(repo.dir)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if descriptor != "v1" {
		t.Errorf("Describe = %q, want bare tag %q", descriptor, "v1")
	}
	version, err := ResolveVersion(repo.dir)
	if err != nil {
		t.Fatalf("ResolveVersion: %v", err)
	}
	if version != "v1" {
		t.Errorf("ResolveVersion = %q, want %q", version, "v1")
	}
}

func TestDescribeCommitsAfterTag(t *testing.T) {
	repo := testRepoNew(t)
	repo.tag("v1", repo.commitFile("a.txt", "a"))
	repo.commitFile("b.txt", "b")
	head := repo.commitFile("c.txt", "c")

	want := fmt.Sprintf("v1-2-g%s", head.String()[:7])
	descriptor, err := Describe(repo.dir)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if descriptor != want {
		t.Errorf("Describe = %q, want %q", descriptor, want)
	}

	version, err := ResolveVersion(repo.dir)
	if err != nil {
		t.Fatalf("ResolveVersion: %v", err)
	}
	wantVersion := fmt.Sprintf("v1.r2.g%s", head.String()[:7])
	if version != wantVersion {
		t.Errorf("ResolveVersion = %q, want %q", version, wantVersion)
	}
}

func TestDescribePicksNearestTag(t *testing.T) {
	repo := testRepoNew(t)
	repo.tag("v1", repo.commitFile("a.txt", "a"))
	repo.tag("v2", repo.commitFile("b.txt", "b"))
	head := repo.commitFile("c.txt", "c")

	descriptor, err := Describe(repo.dir)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	want := fmt.Sprintf("v2-1-g%s", head.String()[:7])
	if descriptor != want {
		t.Errorf("Describe = %q, want nearest tag descriptor %q", descriptor, want)
	}
}

func TestDescribeAnnotatedTag(t *testing.T) {
	repo := testRepoNew(t)
	repo.annotatedTag("v3", repo.commitFile("a.txt", "a"))

	descriptor, err := Describe(repo.dir)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if descriptor != "v3" {
		t.Errorf("Describe = %q, want %q", descriptor, "v3")
	}
}

func TestDescribeNoTagsFails(t *testing.T) {
	repo := testRepoNew(t)
	repo.commitFile("a.txt", "a")

	if _, err := Describe(repo.dir); err == nil {
		t.Error("Describe on an untagged history should fail, not default")
	}
	if version, err := ResolveVersion(repo.dir); err == nil {
		t.Errorf("ResolveVersion on an untagged history returned %q, want error", version)
	}
}
