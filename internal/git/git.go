// Package git reads provenance for the analysed module from its enclosing
// Git repository.
package git

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Common Git errors
var (
	ErrNotAGitRepo = errors.New("not a git repository")
	ErrNoCommits   = errors.New("repository has no commits")
)

// Revision identifies the checked-out state of a repository.
type Revision struct {
	Commit string // full HEAD commit hash
	Ref    string // short branch or tag name, empty when detached
}

// Short returns the abbreviated commit hash.
func (r Revision) Short() string {
	if len(r.Commit) > 12 {
		return r.Commit[:12]
	}
	return r.Commit
}

// Client reads repository state with go-git.
type Client struct {
	path string // any directory inside the working tree
}

// NewClient creates a client for the repository enclosing path.
func NewClient(path string) *Client {
	return &Client{path: path}
}

func (c *Client) open() (*gogit.Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(c.path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w: %s", ErrNotAGitRepo, c.path)
	}
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return repo, nil
}

// Head returns the HEAD revision.
func (c *Client) Head(ctx context.Context) (Revision, error) {
	if err := ctx.Err(); err != nil {
		return Revision{}, fmt.Errorf("context cancelled: %w", err)
	}

	repo, err := c.open()
	if err != nil {
		return Revision{}, err
	}

	ref, err := repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return Revision{}, ErrNoCommits
	}
	if err != nil {
		return Revision{}, fmt.Errorf("get HEAD: %w", err)
	}

	rev := Revision{Commit: ref.Hash().String()}
	if ref.Name().IsBranch() || ref.Name().IsTag() {
		rev.Ref = ref.Name().Short()
	}
	return rev, nil
}
