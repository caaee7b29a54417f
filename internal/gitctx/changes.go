package gitctx

import (
	"context"
	"fmt"
	"sort"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"
	"go.uber.org/zap"
)

// Action classifies a file-level change.
type Action string

const (
	Added    Action = "added"
	Deleted  Action = "deleted"
	Modified Action = "modified"
	Renamed  Action = "renamed"
)

// Letter returns the git --name-status letter for the action.
func (a Action) Letter() string {
	switch a {
	case Added:
		return "A"
	case Deleted:
		return "D"
	case Renamed:
		return "R"
	default:
		return "M"
	}
}

// Change is one file-level difference between two trees.
type Change struct {
	Action    Action `json:"action" yaml:"action"`
	Path      string `json:"path" yaml:"path"`
	OldPath   string `json:"oldPath,omitempty" yaml:"oldPath,omitempty"`
	Additions int    `json:"additions" yaml:"additions"`
	Deletions int    `json:"deletions" yaml:"deletions"`
}

// defaultRenameScore mirrors git's 50% similarity threshold.
const defaultRenameScore = 50

// Changes lists the file-level differences between two trees with rename
// detection, filtered by the client's include/exclude globs and sorted by path.
func (c *Client) Changes(ctx context.Context, from, to Tree) ([]Change, error) {
	repo, err := c.open()
	if err != nil {
		return nil, err
	}
	fromTree, err := repo.TreeObject(plumbing.NewHash(string(from)))
	if err != nil {
		return nil, fmt.Errorf("loading tree %s: %w", from, err)
	}
	toTree, err := repo.TreeObject(plumbing.NewHash(string(to)))
	if err != nil {
		return nil, fmt.Errorf("loading tree %s: %w", to, err)
	}

	score := defaultRenameScore
	if c.Options.FindRenames > 0 {
		score = c.Options.FindRenames
	}
	// Paths are filtered before rename detection, as git applies pathspecs,
	// so a rename across the filter boundary shows as an add or a delete.
	raw, err := object.DiffTreeWithOptions(ctx, fromTree, toTree, nil)
	if err != nil {
		return nil, fmt.Errorf("diffing trees: %w", err)
	}
	var kept object.Changes
	for _, d := range raw {
		if selected(changeName(d), c.Options) {
			kept = append(kept, d)
		}
	}
	diffs, err := object.DetectRenames(kept, &object.DiffTreeOptions{
		DetectRenames: true,
		RenameScore:   uint(score),
	})
	if err != nil {
		return nil, fmt.Errorf("detecting renames: %w", err)
	}

	changes := make([]Change, 0, len(diffs))
	for _, d := range diffs {
		ch, err := toChange(ctx, d)
		if err != nil {
			return nil, err
		}
		changes = append(changes, ch)
	}
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Path < changes[j].Path
	})
	c.Logger.Debug("tree diff complete", zap.Int("changes", len(changes)))
	return changes, nil
}

// changeName is the path of a change before rename detection, where both
// ends of a modification share one name.
func changeName(d *object.Change) string {
	if d.To.Name != "" {
		return d.To.Name
	}
	return d.From.Name
}

func toChange(ctx context.Context, d *object.Change) (Change, error) {
	action, err := d.Action()
	if err != nil {
		return Change{}, fmt.Errorf("classifying change: %w", err)
	}
	var ch Change
	switch action {
	case merkletrie.Insert:
		ch = Change{Action: Added, Path: d.To.Name}
	case merkletrie.Delete:
		ch = Change{Action: Deleted, Path: d.From.Name}
	default:
		ch = Change{Action: Modified, Path: d.To.Name}
		if d.From.Name != d.To.Name {
			ch.Action = Renamed
			ch.OldPath = d.From.Name
		}
	}

	patch, err := d.PatchContext(ctx)
	if err != nil {
		return Change{}, fmt.Errorf("patching %s: %w", ch.Path, err)
	}
	for _, st := range patch.Stats() {
		ch.Additions += st.Addition
		ch.Deletions += st.Deletion
	}
	return ch, nil
}

func (c *Client) open() (*git.Repository, error) {
	dir := c.Dir
	if dir == "" {
		dir = "."
	}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository %s: %w", dir, err)
	}
	return repo, nil
}
