// Package logging builds the zap logger used for diagnostics.
//
// Diagnostics always go to the error stream so that standard output carries
// nothing but the comparison result.
package logging
