package pkgsmith

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	git "github.com/go-git/go-git/v5"
)

// EnsureCheckout guarantees that after it returns, dir contains an
// up-to-date working copy of the repository at url: it clones the remote if
// dir is absent, and fast-forwards an existing working copy otherwise.
//
// The operation is idempotent and keyed by dir, so it is safe to call
// repeatedly for the same recipe. Failures are returned as-is without any
// partial-state cleanup; a failed clone or pull leaves dir for the next
// invocation to re-run.
//
// A working copy with uncommitted local modifications is pulled
// unconditionally; if the merge cannot fast-forward the pull fails and the
// error propagates.
func EnsureCheckout(ctx context.Context, dir, url string) error {
	_, err := os.Stat(dir)
	if err == nil {
		return updateCheckout(ctx, dir)
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("unable to check working copy %s: %w", dir, err)
	}
	log.Printf("Cloning %s into %s", url, dir)
	_, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{URL: url})
	if err != nil {
		return fmt.Errorf("unable to clone %s: %w", url, err)
	}
	return nil
}

// updateCheckout pulls the upstream default branch into an existing working
// copy. An already up-to-date working copy is a success, not an error.
func updateCheckout(ctx context.Context, dir string) error {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return fmt.Errorf("unable to open working copy %s: %w", dir, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("unable to open worktree of %s: %w", dir, err)
	}
	log.Printf("Updating working copy %s", dir)
	err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: git.DefaultRemoteName})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("unable to update %s: %w", dir, err)
	}
	return nil
}
