package pkgsmith

import (
	"fmt"
	"strings"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// abbrevLen is the number of hex digits used for the commit id in a
// describe descriptor.
const abbrevLen = 7

// taggedCommit is one candidate for the nearest tag: the tag's name, the
// commit it points to, and when that commit (or annotated tag) was created.
type taggedCommit struct {
	name string
	hash plumbing.Hash
	when time.Time
}

// Describe derives a descriptor of the working copy's head commit relative
// to the nearest reachable tag, in the conventional describe format:
// "tag-N-ghash", where N is the number of commits since the tag. When the
// head is tagged directly the bare tag name is returned.
//
// A history with no tag reachable from the head is a configuration error of
// the source repository and fails; there is no fallback version.
func Describe(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("unable to open working copy %s: %w", dir, err)
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("unable to resolve head of %s: %w", dir, err)
	}
	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("unable to read head commit of %s: %w", dir, err)
	}
	tags, err := taggedCommits(repo)
	if err != nil {
		return "", err
	}
	if len(tags) == 0 {
		return "", fmt.Errorf("repository %s has no tags", dir)
	}

	var best *taggedCommit
	bestCount := -1
	for i := range tags {
		tag := &tags[i]
		count, reachable, err := tagDistance(repo, headCommit, tag.hash)
		if err != nil {
			return "", err
		}
		if !reachable {
			continue
		}
		if bestCount < 0 || count < bestCount ||
			(count == bestCount && tag.when.After(best.when)) {
			best = tag
			bestCount = count
		}
	}
	if best == nil {
		return "", fmt.Errorf("no tag reachable from the head of %s", dir)
	}
	if bestCount == 0 {
		return best.name, nil
	}
	return fmt.Sprintf("%s-%d-g%s", best.name, bestCount, head.Hash().String()[:abbrevLen]), nil
}

// RewriteVersion turns a describe descriptor into a dot-delimited version
// string that package managers order correctly: the first hyphen becomes
// ".r" (marking the commit-count segment as a revision counter) and every
// later hyphen becomes ".". A descriptor without hyphens, i.e. a bare tag,
// is returned unchanged.
//
//	v1          ->  v1
//	v1-2-gabc   ->  v1.r2.gabc
func RewriteVersion(descriptor string) string {
	parts := strings.Split(descriptor, "-")
	if len(parts) == 1 {
		return descriptor
	}
	return parts[0] + ".r" + strings.Join(parts[1:], ".")
}

// ResolveVersion produces the package version for a working copy, the
// describe descriptor rewritten into sortable form.
func ResolveVersion(dir string) (string, error) {
	descriptor, err := Describe(dir)
	if err != nil {
		return "", err
	}
	return RewriteVersion(descriptor), nil
}

// taggedCommits collects all tags of the repository, with annotated tags
// peeled to the commit they point to.
func taggedCommits(repo *git.Repository) ([]taggedCommit, error) {
	refs, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("unable to list tags: %w", err)
	}
	var tags []taggedCommit
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		hash := ref.Hash()
		when := time.Time{}
		if tagObject, err := repo.TagObject(hash); err == nil {
			commit, err := tagObject.Commit()
			if err != nil {
				return fmt.Errorf("unable to peel tag %s: %w", ref.Name().Short(), err)
			}
			hash = commit.Hash
			when = tagObject.Tagger.When
		} else {
			commit, err := repo.CommitObject(hash)
			if err != nil {
				// Tag points at something other than a commit (a tree or
				// blob); it cannot describe the head.
				return nil
			}
			when = commit.Committer.When
		}
		tags = append(tags, taggedCommit{name: ref.Name().Short(), hash: hash, when: when})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tags, nil
}

// tagDistance counts the commits reachable from head but not from the
// tagged commit. It also reports whether the tagged commit is an ancestor
// of (or equal to) head at all.
func tagDistance(repo *git.Repository, head *object.Commit, tag plumbing.Hash) (int, bool, error) {
	tagCommit, err := repo.CommitObject(tag)
	if err != nil {
		return 0, false, fmt.Errorf("unable to read tagged commit %s: %w", tag, err)
	}
	tagSide := make(map[plumbing.Hash]bool)
	err = object.NewCommitPreorderIter(tagCommit, nil, nil).ForEach(func(c *object.Commit) error {
		tagSide[c.Hash] = true
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("unable to walk history of tag %s: %w", tag, err)
	}
	count := 0
	reachable := false
	err = object.NewCommitPreorderIter(head, nil, nil).ForEach(func(c *object.Commit) error {
		if tagSide[c.Hash] {
			if c.Hash == tagCommit.Hash {
				reachable = true
			}
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("unable to walk history: %w", err)
	}
	return count, reachable, nil
}
