package pkgsmith

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// testRepo is a throwaway git repository for building source fixtures
// without a network or a git binary.
type testRepo struct {
	t    *testing.T
	dir  string
	repo *git.Repository
}

func testRepoNew(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}
	return &testRepo{t: t, dir: dir, repo: repo}
}

func (r *testRepo) signature() *object.Signature {
	return &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()}
}

// commitFile writes a file (the name is slash-separated, relative to the
// repository root) and commits it.
func (r *testRepo) commitFile(name, content string) plumbing.Hash {
	r.t.Helper()
	path := filepath.Join(r.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		r.t.Fatalf("create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		r.t.Fatalf("write %s: %v", name, err)
	}
	worktree, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("open worktree: %v", err)
	}
	if _, err := worktree.Add(name); err != nil {
		r.t.Fatalf("add %s: %v", name, err)
	}
	hash, err := worktree.Commit("add "+name, &git.CommitOptions{Author: r.signature()})
	if err != nil {
		r.t.Fatalf("commit %s: %v", name, err)
	}
	return hash
}

// tag creates a lightweight tag at the given commit.
func (r *testRepo) tag(name string, hash plumbing.Hash) {
	r.t.Helper()
	if _, err := r.repo.CreateTag(name, hash, nil); err != nil {
		r.t.Fatalf("tag %s: %v", name, err)
	}
}

// annotatedTag creates an annotated tag at the given commit.
func (r *testRepo) annotatedTag(name string, hash plumbing.Hash) {
	r.t.Helper()
	_, err := r.repo.CreateTag(name, hash, &git.CreateTagOptions{
		Tagger:  r.signature(),
		Message: name,
	})
	if err != nil {
		r.t.Fatalf("tag %s: %v", name, err)
	}
}

// head returns the current head commit hash.
func (r *testRepo) head() plumbing.Hash {
	r.t.Helper()
	ref, err := r.repo.Head()
	if err != nil {
		r.t.Fatalf("resolve head: %v", err)
	}
	return ref.Hash()
}
