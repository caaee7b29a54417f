package gitctx

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
)

// Diff streams the rename-aware unified diff between two trees to w.
// With Options.ExitCode set, differences surface as a CommandError with exit
// status 1, matching `git diff --exit-code`.
func (c *Client) Diff(ctx context.Context, from, to Tree, w io.Writer) error {
	args := append([]string{"diff"}, buildDiffArgs(c.Options, from, to)...)
	return c.run(ctx, w, args...)
}

func buildDiffArgs(opts Options, from, to Tree) []string {
	var args []string
	if opts.FindRenames > 0 {
		args = append(args, fmt.Sprintf("--find-renames=%d%%", opts.FindRenames))
	} else {
		args = append(args, "--find-renames")
	}
	if opts.Color != "" && opts.Color != "auto" {
		args = append(args, "--color="+opts.Color)
	}
	if opts.ContextLines > 0 {
		args = append(args, fmt.Sprintf("-U%d", opts.ContextLines))
	}
	if opts.ExitCode {
		args = append(args, "--exit-code")
	}
	args = append(args, string(from), string(to), "--")
	return append(args, pathspecs(opts)...)
}

// pathspecs converts include/exclude globs into git pathspec magic anchored
// at the repository root.
func pathspecs(opts Options) []string {
	var specs []string
	for _, p := range opts.Include {
		if p != "**/*" {
			specs = append(specs, ":(top,glob)"+p)
		}
	}
	for _, p := range opts.Exclude {
		specs = append(specs, ":(top,glob,exclude)"+p)
	}
	return specs
}

// MatchesAny reports whether name matches any of the patterns with git's
// glob pathspec rules: `*` never crosses a slash, a `**` segment matches zero
// or more directories, and a pattern without wildcards also matches every
// path below it.
func MatchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if matchPathspec(pattern, name) {
			return true
		}
	}
	return false
}

func matchPathspec(pattern, name string) bool {
	pattern = strings.TrimSuffix(pattern, "/")
	if pattern == "" {
		return false
	}
	if !strings.ContainsAny(pattern, "*?[") {
		return name == pattern || strings.HasPrefix(name, pattern+"/")
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(name, "/"))
}

func matchSegments(pattern, segs []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			if len(rest) == 0 {
				// trailing /** matches everything inside
				return len(segs) > 0
			}
			for i := 0; i <= len(segs); i++ {
				if matchSegments(rest, segs[i:]) {
					return true
				}
			}
			return false
		}
		if len(segs) == 0 {
			return false
		}
		if ok, err := path.Match(pattern[0], segs[0]); err != nil || !ok {
			return false
		}
		pattern, segs = pattern[1:], segs[1:]
	}
	return len(segs) == 0
}

// selected reports whether name passes the include and exclude filters.
func selected(name string, opts Options) bool {
	if len(opts.Include) > 0 && !MatchesAny(name, opts.Include) && !includesAll(opts.Include) {
		return false
	}
	return !MatchesAny(name, opts.Exclude)
}

func includesAll(include []string) bool {
	for _, p := range include {
		if p == "**/*" {
			return true
		}
	}
	return false
}
