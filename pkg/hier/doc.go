// Package hier walks the struct hierarchy of a stream-format library and
// edits it in place.
//
// # Overview
//
// Every operation in this package starts from the structs whose names begin
// with a root prefix and visits their elements. Struct references whose target
// name matches one of the caller's patterns are processed, and, while depth
// remains, the walk descends into every struct whose name begins with the
// reference target. References that match no pattern are neither processed
// nor followed.
//
// Three operations share this traversal:
//
//   - [Quantize] snaps every coordinate of the visited geometry, and the
//     origin of each matching reference, to a grid.
//   - [RewriteReferences] renames matching references through a rename table.
//   - [Extract] lists the matching references as [Placement] records.
//
// # Depth
//
// [Options.MaxDepth] bounds how many reference levels below the root structs
// are visited. Zero visits the root structs only. The walk remembers the
// depth each struct was visited with, so a struct reached through several
// references is processed once and is descended again only when a later
// path leaves more depth.
//
// # Cycles
//
// The depth bound keeps a walk finite even on a library whose references form
// a cycle. Set [Options.DetectCycles] to reject such libraries up front with
// [errors.ErrCodeReferenceCycle] instead.
//
// # Failure
//
// Invalid arguments (a non-positive grid, a bad pattern) are rejected before
// any struct is touched. Failures found during the walk, such as a reference
// with no rename entry, stop it immediately; edits made before that point are
// kept. Callers that need all-or-nothing behaviour should walk a copy or
// reload the library on error.
package hier
