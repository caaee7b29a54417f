package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/hashicorp/go-version"
	"github.com/stretchr/testify/require"
)

// minGit is the oldest git whose merge-tree accepts --merge-base.
var minGit = version.Must(version.NewVersion("2.40.0"))

var gitVersionPattern = regexp.MustCompile(`\d+(\.\d+)*`)

// RequireGit skips the test unless git with merge-tree --merge-base support
// is on PATH.
func RequireGit(t *testing.T) {
	t.Helper()
	out, err := exec.Command("git", "version").Output()
	if err != nil {
		t.Skipf("git not available: %v", err)
	}
	v, err := version.NewVersion(gitVersionPattern.FindString(string(out)))
	if err != nil {
		t.Skipf("cannot parse %q: %v", strings.TrimSpace(string(out)), err)
	}
	if v.LessThan(minGit) {
		t.Skipf("git %s is older than %s", v, minGit)
	}
}

// Repo is a throwaway git repository rooted in a test temp dir.
type Repo struct {
	t   *testing.T
	Dir string
}

// NewRepo initializes an empty repository whose first branch is main.
func NewRepo(t *testing.T) *Repo {
	t.Helper()
	RequireGit(t)
	r := &Repo{t: t, Dir: t.TempDir()}
	r.Git("init", "-q")
	r.Git("checkout", "-q", "-b", "main")
	return r
}

// Git runs git in the repository and returns trimmed combined output.
func (r *Repo) Git(args ...string) string {
	r.t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.Dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test",
		"GIT_AUTHOR_EMAIL=test@test.com",
		"GIT_AUTHOR_DATE=2024-01-01T00:00:00Z",
		"GIT_COMMITTER_NAME=test",
		"GIT_COMMITTER_EMAIL=test@test.com",
		"GIT_COMMITTER_DATE=2024-01-01T00:00:00Z",
		"GIT_CONFIG_NOSYSTEM=1",
		"HOME="+r.Dir,
	)
	out, err := cmd.CombinedOutput()
	require.NoError(r.t, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

// Write creates or replaces a file relative to the repository root.
func (r *Repo) Write(path, content string) {
	r.t.Helper()
	full := filepath.Join(r.Dir, path)
	require.NoError(r.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(r.t, os.WriteFile(full, []byte(content), 0o644))
}

// Append adds content to the end of a file.
func (r *Repo) Append(path, content string) {
	r.t.Helper()
	f, err := os.OpenFile(filepath.Join(r.Dir, path), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(r.t, err)
	_, err = f.WriteString(content)
	require.NoError(r.t, err)
	require.NoError(r.t, f.Close())
}

// Remove deletes a file relative to the repository root.
func (r *Repo) Remove(path string) {
	r.t.Helper()
	require.NoError(r.t, os.Remove(filepath.Join(r.Dir, path)))
}

// Commit stages everything and commits, returning the new HEAD.
func (r *Repo) Commit(msg string) string {
	r.t.Helper()
	r.Git("add", "-A")
	r.Git("commit", "-q", "-m", msg)
	return r.Git("rev-parse", "HEAD")
}

// Checkout switches to branch, creating it from the current HEAD when create is set.
func (r *Repo) Checkout(branch string, create bool) {
	r.t.Helper()
	if create {
		r.Git("checkout", "-q", "-b", branch)
		return
	}
	r.Git("checkout", "-q", branch)
}

// LoginUIScenario builds the login-ui history described in the usage docs:
//
//	main:                M0 - M1
//	login-ui:            M1 - C1 - C2
//	production:          M0 - P1
//	production-login-ui: P1 - C1' - C2' - D1 - D2
//
// C1'/C2' carry the same content changes as C1/C2. D1 adds remember.txt and
// D2 adds a third line to login.txt.
func LoginUIScenario(t *testing.T) *Repo {
	t.Helper()
	r := NewRepo(t)
	r.Write("README.md", "app\n")
	r.Write("version.txt", "1.0\n")
	r.Commit("M0")

	r.Checkout("production", true)
	r.Write("version.txt", "1.0.1\n")
	r.Commit("P1 hotfix release")

	r.Checkout("main", false)
	r.Write("feature.txt", "next\n")
	r.Commit("M1")

	r.Checkout("login-ui", true)
	r.Write("login.txt", "form\n")
	r.Commit("C1")
	r.Append("login.txt", "button\n")
	r.Commit("C2")

	r.Checkout("production", false)
	r.Checkout("production-login-ui", true)
	r.Write("login.txt", "form\n")
	r.Commit("C1'")
	r.Append("login.txt", "button\n")
	r.Commit("C2'")
	r.Write("remember.txt", "remember me\n")
	r.Commit("D1")
	r.Append("login.txt", "forgot password\n")
	r.Commit("D2")

	r.Checkout("main", false)
	return r
}
