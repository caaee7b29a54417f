// Package output renders structured comparison results.
//
// Supported formats: stat (aligned per-file summary with optional color),
// name-status (git-compatible status letters), json, and yaml. The patch
// format is not rendered here; it is streamed directly from git.
package output
