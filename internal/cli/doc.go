// Package cli implements the compare-changesets command tree.
//
// The root command takes five refs, TARGET BASE_A TIP_A BASE_B TIP_B, and
// prints the difference between BASE_A..TIP_A and BASE_B..TIP_B once each has
// been replayed onto TARGET. Standard output carries only the result; git's
// own diagnostics pass through to standard error unchanged and its exit
// status becomes the process exit status.
package cli
