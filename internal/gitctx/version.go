package gitctx

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"
)

// MinGitVersion is the first git release whose merge-tree accepts --merge-base.
const MinGitVersion = "2.40.0"

var versionPattern = regexp.MustCompile(`\d+(\.\d+)*`)

// GitVersion returns the version of the git binary on PATH.
func (c *Client) GitVersion(ctx context.Context) (*version.Version, error) {
	out, err := c.gitOutput(ctx, "version")
	if err != nil {
		return nil, err
	}
	return ParseGitVersion(out)
}

// ParseGitVersion parses `git version` output such as
// "git version 2.39.2 (Apple Git-143)" or "git version 2.45.1.windows.1".
func ParseGitVersion(out string) (*version.Version, error) {
	raw := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(out), "git version"))
	num := versionPattern.FindString(raw)
	if num == "" {
		return nil, fmt.Errorf("unrecognized git version %q", strings.TrimSpace(out))
	}
	return version.NewVersion(num)
}

// SupportsMergeBase reports whether v can run `merge-tree --merge-base`.
func SupportsMergeBase(v *version.Version) bool {
	return v.GreaterThanOrEqual(version.Must(version.NewVersion(MinGitVersion)))
}
