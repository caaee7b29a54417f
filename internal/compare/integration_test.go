package compare

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/dshills/compare-changesets/internal/gitctx"
	"github.com/dshills/compare-changesets/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGitComparator(dir string, stderr *bytes.Buffer) *Comparator {
	return New(gitctx.New(dir, stderr, nil, gitctx.Options{Color: "never"}), nil)
}

func TestIntegration_LoginUIScenario(t *testing.T) {
	r := testutil.LoginUIScenario(t)
	var stdout, stderr bytes.Buffer

	err := newGitComparator(r.Dir, &stderr).Compare(context.Background(), docRefs, &stdout)
	require.NoError(t, err, stderr.String())

	patch := stdout.String()
	// D1 and D2 are the only differences.
	assert.Contains(t, patch, "remember.txt")
	assert.Contains(t, patch, "-forgot password")
	// C1/C2 and C1'/C2' cancel out.
	assert.NotContains(t, patch, "+form")
	assert.NotContains(t, patch, "-form")
	assert.NotContains(t, patch, "+button")
	assert.NotContains(t, patch, "-button")
	// Target-side differences between main and production do not leak in.
	assert.NotContains(t, patch, "version.txt")
	assert.NotContains(t, patch, "feature.txt")
}

func TestIntegration_Summarize(t *testing.T) {
	r := testutil.LoginUIScenario(t)
	var stderr bytes.Buffer

	res, err := newGitComparator(r.Dir, &stderr).Summarize(context.Background(), docRefs)
	require.NoError(t, err, stderr.String())

	assert.Equal(t, []gitctx.Change{
		{Action: gitctx.Modified, Path: "login.txt", Deletions: 1},
		{Action: gitctx.Deleted, Path: "remember.txt", Deletions: 1},
	}, res.Changes)
	assert.Equal(t, Summary{Files: 2, Deletions: 2}, res.Summary)
}

func TestIntegration_Deterministic(t *testing.T) {
	r := testutil.LoginUIScenario(t)
	cmp := newGitComparator(r.Dir, &bytes.Buffer{})

	var first, second bytes.Buffer
	require.NoError(t, cmp.Compare(context.Background(), docRefs, &first))
	require.NoError(t, cmp.Compare(context.Background(), docRefs, &second))
	assert.NotEmpty(t, first.Bytes())
	assert.Equal(t, first.Bytes(), second.Bytes())
}

func TestIntegration_SwapMirrorsDiff(t *testing.T) {
	r := testutil.LoginUIScenario(t)
	cmp := newGitComparator(r.Dir, &bytes.Buffer{})

	forward, err := cmp.Summarize(context.Background(), docRefs)
	require.NoError(t, err)
	backward, err := cmp.Summarize(context.Background(), docRefs.Swap())
	require.NoError(t, err)

	assert.Equal(t, forward.Trees.A, backward.Trees.B)
	assert.Equal(t, forward.Trees.B, backward.Trees.A)
	assert.Equal(t, forward.Summary.Additions, backward.Summary.Deletions)
	assert.Equal(t, forward.Summary.Deletions, backward.Summary.Additions)

	var patch bytes.Buffer
	require.NoError(t, cmp.Compare(context.Background(), docRefs.Swap(), &patch))
	assert.Contains(t, patch.String(), "+forgot password")
	assert.Contains(t, patch.String(), "new file mode")
}

func TestIntegration_SharedPatchOnly(t *testing.T) {
	r := testutil.NewRepo(t)
	r.Write("app.txt", "app\n")
	r.Commit("T0")
	r.Checkout("side-a", true)
	r.Write("shared.txt", "P\n")
	r.Commit("P on a")
	r.Checkout("main", false)
	r.Checkout("side-b", true)
	r.Write("shared.txt", "P\n")
	r.Commit("P on b")
	r.Checkout("main", false)
	r.Write("app.txt", "app v2\n")
	r.Commit("T1")

	var stdout, stderr bytes.Buffer
	refs := Refs{Target: "main", BaseA: "side-a~1", TipA: "side-a", BaseB: "side-b~1", TipB: "side-b"}
	require.NoError(t, newGitComparator(r.Dir, &stderr).Compare(context.Background(), refs, &stdout))
	assert.Empty(t, strings.TrimSpace(stdout.String()))
}

func TestIntegration_UnresolvableRef(t *testing.T) {
	r := testutil.LoginUIScenario(t)
	var stdout, stderr bytes.Buffer

	refs := docRefs
	refs.TipB = "no-such-branch"
	err := newGitComparator(r.Dir, &stderr).Compare(context.Background(), refs, &stdout)
	require.Error(t, err)
	code, ok := gitctx.ExitCode(err)
	assert.True(t, ok)
	assert.NotZero(t, code)
	assert.Empty(t, stdout.String())
	assert.NotEmpty(t, stderr.String())
}
