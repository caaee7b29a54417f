// Package gitctx drives the git backend that synthesizes and diffs trees.
//
// Trees are synthesized with `git merge-tree --write-tree --merge-base`, which
// replays a change-set onto another commit without touching the index or the
// working tree. The resulting tree objects are compared either as a unified
// patch streamed from `git diff --find-renames`, or as a structured list of
// [Change] values computed with go-git's rename-aware tree diff.
//
// Git's own stderr is passed through unmodified; failures surface as
// [*CommandError] or [*ConflictError] so callers can inherit git's exit status.
package gitctx
