package gitctx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// ErrMergeConflict is matched by every ConflictError.
var ErrMergeConflict = errors.New("merge conflict")

// ConflictError reports a tree synthesis that git could not merge cleanly.
type ConflictError struct {
	Tree      Tree
	Conflicts []string
	ExitCode  int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("merge conflict in %d file(s): %s", len(e.Conflicts), strings.Join(e.Conflicts, ", "))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrMergeConflict
}

// Synthesize replays the change-set mergeBase..theirs onto ours and returns
// the resulting tree. Nothing outside the object database is written.
func (c *Client) Synthesize(ctx context.Context, mergeBase, ours, theirs string) (Tree, error) {
	args := []string{
		"merge-tree", "--write-tree", "--name-only",
		"--merge-base=" + mergeBase,
		ours, theirs,
	}
	out, err := c.gitOutput(ctx, args...)
	if err == nil {
		tree, _ := parseMergeTree(out)
		if tree == "" {
			return "", fmt.Errorf("git merge-tree: no tree in output")
		}
		return tree, nil
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) || cmdErr.ExitCode != 1 {
		return "", err
	}

	// Exit status 1 means the merge completed with conflicts.
	tree, conflicts := parseMergeTree(out)
	if c.Options.AllowConflicts && tree != "" {
		c.Logger.Warn("tree contains conflict markers",
			zap.String("merge-base", mergeBase),
			zap.String("theirs", theirs),
			zap.Strings("paths", conflicts))
		return tree, nil
	}
	_, _ = io.WriteString(c.Stderr, out)
	return "", &ConflictError{Tree: tree, Conflicts: conflicts, ExitCode: cmdErr.ExitCode}
}

// parseMergeTree splits `merge-tree --write-tree --name-only` output into the
// tree id and the conflicted paths listed before the first blank line.
func parseMergeTree(out string) (Tree, []string) {
	lines := strings.Split(out, "\n")
	if len(lines) == 0 {
		return "", nil
	}
	tree := Tree(strings.TrimSpace(lines[0]))
	var conflicts []string
	seen := make(map[string]bool)
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			break
		}
		if !seen[line] {
			seen[line] = true
			conflicts = append(conflicts, line)
		}
	}
	return tree, conflicts
}
