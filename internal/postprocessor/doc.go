// Package postprocessor reshapes extracted entities before embedding.
//
// Two transformations run after extraction:
//
//   - Split breaks entities whose snippet exceeds a size limit into
//     ordered chunk entities along line boundaries. Chunk names carry a
//     "[chunk i/n]" suffix and their line spans stay inside the original
//     entity's span.
//
//   - Process merges small neighboring entities according to a
//     granularity level. Fine folds only same-kind runs of imports,
//     constants, and variables. Medium merges any adjacent entities up to
//     half the size limit. Coarse merges up to the full limit, or into a
//     single entity when no limit is set.
//
// Merged entities keep the common kind when constituents agree and fall
// back to "Merged Chunk" otherwise. Embeddings are never carried into a
// merged entity; merging happens before embedding generation.
package postprocessor
