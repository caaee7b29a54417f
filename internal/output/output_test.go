package output

import (
	"bytes"
	"os"
	"testing"

	"github.com/dshills/compare-changesets/internal/compare"
	"github.com/dshills/compare-changesets/internal/gitctx"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testResult() *compare.Result {
	return &compare.Result{
		Refs: compare.Refs{
			Target: "main",
			BaseA:  "production",
			TipA:   "production-login-ui",
			BaseB:  "main",
			TipB:   "login-ui",
		},
		Trees: compare.Trees{A: "3f1c0e9a", B: "9b2d7e4c"},
		Changes: []gitctx.Change{
			{Action: gitctx.Added, Path: "fresh.txt", Additions: 3},
			{Action: gitctx.Modified, Path: "login.txt", Deletions: 1},
			{Action: gitctx.Renamed, Path: "new-name.txt", OldPath: "old-name.txt"},
			{Action: gitctx.Deleted, Path: "remember.txt", Deletions: 2},
		},
		Summary: compare.Summary{Files: 4, Additions: 3, Deletions: 3},
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestGetWriter(t *testing.T) {
	for _, format := range []string{"stat", "name-status", "json", "yaml"} {
		w, err := GetWriter(format, false)
		require.NoError(t, err, format)
		assert.NotNil(t, w, format)
	}
	_, err := GetWriter("patch", false)
	assert.Error(t, err)
	_, err = GetWriter("xml", false)
	assert.Error(t, err)
}

func TestStatWriter_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, testResult(), "stat", false))
	newGoldie(t).Assert(t, "stat", buf.Bytes())
}

func TestNameStatusWriter_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, testResult(), "name-status", false))
	newGoldie(t).Assert(t, "name_status", buf.Bytes())
}

func TestJSONWriter_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, testResult(), "json", false))
	newGoldie(t).Assert(t, "json", buf.Bytes())
}

func TestYAMLWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, testResult(), "yaml", false))

	var got compare.Result
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, *testResult(), got)
	assert.Contains(t, buf.String(), "oldPath: old-name.txt")
}

func TestStatWriter_Empty(t *testing.T) {
	var buf bytes.Buffer
	res := &compare.Result{Changes: []gitctx.Change{}}
	require.NoError(t, WriteResult(&buf, res, "stat", true))
	assert.Equal(t, " 0 files changed\n", buf.String())
}

func TestStatWriter_Color(t *testing.T) {
	var plain, colored bytes.Buffer
	require.NoError(t, WriteResult(&plain, testResult(), "stat", false))
	require.NoError(t, WriteResult(&colored, testResult(), "stat", true))
	assert.NotContains(t, plain.String(), "\x1b[")
	assert.Contains(t, colored.String(), "\x1b[")
}

func TestStatWriter_ScalesBar(t *testing.T) {
	res := &compare.Result{
		Changes: []gitctx.Change{
			{Action: gitctx.Modified, Path: "big.txt", Additions: 400},
			{Action: gitctx.Modified, Path: "small.txt", Deletions: 1},
		},
		Summary: compare.Summary{Files: 2, Additions: 400, Deletions: 1},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, res, "stat", false))
	assert.Equal(t, ""+
		" big.txt   | 400 ++++++++++++++++++++++++++++++++++++++++\n"+
		" small.txt |   1 -\n"+
		" 2 files changed, 400 insertions(+), 1 deletion(-)\n", buf.String())
}

func TestSummaryLine(t *testing.T) {
	assert.Equal(t, " 1 file changed, 2 insertions(+)", summaryLine(compare.Summary{Files: 1, Additions: 2}))
	assert.Equal(t, " 2 files changed, 1 deletion(-)", summaryLine(compare.Summary{Files: 2, Deletions: 1}))
	assert.Equal(t, " 1 file changed, 0 insertions(+), 0 deletions(-)", summaryLine(compare.Summary{Files: 1}))
}

func TestColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, ColorEnabled("always", &buf))
	assert.False(t, ColorEnabled("never", &buf))
	assert.False(t, ColorEnabled("auto", &buf))

	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, ColorEnabled("auto", f))
}
