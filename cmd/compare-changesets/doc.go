// Compare-changesets compares two change-sets by replaying each onto a
// common target and diffing the results.
//
// A change-set is the range of commits BASE..TIP. Both ranges are replayed
// onto TARGET with git merge-tree, entirely in the object database, so the
// working tree, index, and refs are never touched. The resulting trees are
// then diffed with rename detection.
//
// Usage:
//
//	compare-changesets main production production-login-ui main login-ui
//	compare-changesets --format stat main production production-login-ui main login-ui
//	compare-changesets --reverse --exclude 'vendor/**' TARGET BASE_A TIP_A BASE_B TIP_B
//	compare-changesets config set format name-status
//	compare-changesets version
//
// Requires git 2.40 or newer.
package main
