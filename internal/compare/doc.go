// Package compare isolates the net effect of two change-sets that were
// developed against different bases.
//
// Each change-set (base..tip) is replayed onto a common target with the
// backend's three-way merge, using the change-set's own base as the merge
// base. Patches present in both change-sets produce identical content in
// both synthetic trees and cancel out; the diff of the two trees shows only
// what is unique to one side.
package compare
