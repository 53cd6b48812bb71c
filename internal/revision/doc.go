// Package revision renames static assets to content-derived filenames and rewrites every
// reference to a renamed asset.
//
// A run has two phases. The collect phase buffers every Descriptor supplied by the caller,
// because any asset's name can depend on an asset that arrives later. The compute phase then
//
//  1. builds a reference Graph (ExtractReferences per content class, then resolution
//     relative to the referencing asset or the root directory),
//  2. hashes every resource with a HashResolver, folding in the digests of everything it
//     references and breaking cycles with an own-content fallback digest,
//  3. names each resource through a NamingStrategy unless the IgnorePolicy matches it,
//  4. rewrites every resolved reference with the text produced by a PathStrategy.
//
// Nothing is emitted until the whole graph is known, and any error aborts the run with
// nothing emitted.
package revision
