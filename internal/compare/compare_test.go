package compare

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/dshills/compare-changesets/internal/gitctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records every call and synthesizes trees named after their inputs.
type fakeBackend struct {
	calls      []string
	failOn     string
	err        error
	changes    []gitctx.Change
	changesErr error
}

func (f *fakeBackend) Synthesize(_ context.Context, mergeBase, ours, theirs string) (gitctx.Tree, error) {
	f.calls = append(f.calls, fmt.Sprintf("synthesize %s %s %s", mergeBase, ours, theirs))
	if theirs == f.failOn {
		return "", f.err
	}
	return gitctx.Tree(ours + "+" + mergeBase + ".." + theirs), nil
}

func (f *fakeBackend) Diff(_ context.Context, from, to gitctx.Tree, w io.Writer) error {
	f.calls = append(f.calls, fmt.Sprintf("diff %s %s", from, to))
	_, err := fmt.Fprintf(w, "diff %s %s\n", from, to)
	return err
}

func (f *fakeBackend) Changes(_ context.Context, from, to gitctx.Tree) ([]gitctx.Change, error) {
	f.calls = append(f.calls, fmt.Sprintf("changes %s %s", from, to))
	return f.changes, f.changesErr
}

var docRefs = Refs{
	Target: "main",
	BaseA:  "production",
	TipA:   "production-login-ui",
	BaseB:  "main",
	TipB:   "login-ui",
}

func TestParseRefs(t *testing.T) {
	refs, err := ParseRefs([]string{"main", "production", "production-login-ui", "main", "login-ui"})
	require.NoError(t, err)
	assert.Equal(t, docRefs, refs)
}

func TestParseRefs_WrongCount(t *testing.T) {
	for n := 0; n <= 7; n++ {
		if n == 5 {
			continue
		}
		args := make([]string, n)
		for i := range args {
			args[i] = fmt.Sprintf("ref%d", i)
		}
		t.Run(fmt.Sprintf("%d args", n), func(t *testing.T) {
			_, err := ParseRefs(args)
			assert.ErrorIs(t, err, ErrInvalidArgumentCount)
		})
	}
}

func TestSwap(t *testing.T) {
	swapped := docRefs.Swap()
	assert.Equal(t, Refs{
		Target: "main",
		BaseA:  "main",
		TipA:   "login-ui",
		BaseB:  "production",
		TipB:   "production-login-ui",
	}, swapped)
	assert.Equal(t, docRefs, swapped.Swap())
}

func TestCompare_CallOrder(t *testing.T) {
	backend := &fakeBackend{}
	var out strings.Builder
	err := New(backend, nil).Compare(context.Background(), docRefs, &out)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"synthesize production main production-login-ui",
		"synthesize main main login-ui",
		"diff main+production..production-login-ui main+main..login-ui",
	}, backend.calls)
	assert.Equal(t, "diff main+production..production-login-ui main+main..login-ui\n", out.String())
}

func TestCompare_TreeAFailureSkipsTreeB(t *testing.T) {
	backendErr := &gitctx.CommandError{Args: []string{"merge-tree"}, ExitCode: 128, Err: errors.New("exit status 128")}
	backend := &fakeBackend{failOn: "production-login-ui", err: backendErr}
	var out strings.Builder

	err := New(backend, nil).Compare(context.Background(), docRefs, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)
	code, ok := gitctx.ExitCode(err)
	assert.True(t, ok)
	assert.Equal(t, 128, code)
	assert.Len(t, backend.calls, 1)
	assert.Empty(t, out.String())
}

func TestCompare_ConflictAbortsBeforeDiff(t *testing.T) {
	conflict := &gitctx.ConflictError{Conflicts: []string{"login.txt"}, ExitCode: 1}
	backend := &fakeBackend{failOn: "login-ui", err: conflict}
	var out strings.Builder

	err := New(backend, nil).Compare(context.Background(), docRefs, &out)
	assert.ErrorIs(t, err, gitctx.ErrMergeConflict)
	assert.Len(t, backend.calls, 2)
	assert.Empty(t, out.String())
}

func TestSummarize(t *testing.T) {
	backend := &fakeBackend{changes: []gitctx.Change{
		{Action: gitctx.Modified, Path: "login.txt", Deletions: 1},
		{Action: gitctx.Deleted, Path: "remember.txt", Deletions: 1},
		{Action: gitctx.Added, Path: "x.txt", Additions: 3},
	}}
	res, err := New(backend, nil).Summarize(context.Background(), docRefs)
	require.NoError(t, err)

	assert.Equal(t, docRefs, res.Refs)
	assert.Equal(t, gitctx.Tree("main+production..production-login-ui"), res.Trees.A)
	assert.Equal(t, gitctx.Tree("main+main..login-ui"), res.Trees.B)
	assert.Equal(t, Summary{Files: 3, Additions: 3, Deletions: 2}, res.Summary)
	assert.Equal(t, "changes main+production..production-login-ui main+main..login-ui", backend.calls[2])
}

func TestSummarize_NoChanges(t *testing.T) {
	res, err := New(&fakeBackend{}, nil).Summarize(context.Background(), docRefs)
	require.NoError(t, err)
	assert.NotNil(t, res.Changes)
	assert.Empty(t, res.Changes)
	assert.Equal(t, Summary{}, res.Summary)
}

func TestSummarize_ChangesError(t *testing.T) {
	backend := &fakeBackend{changesErr: errors.New("boom")}
	_, err := New(backend, nil).Summarize(context.Background(), docRefs)
	assert.EqualError(t, err, "boom")
}
