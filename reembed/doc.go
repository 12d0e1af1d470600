// Package reembed backfills embeddings for pages that were stored before an
// embedding credential was configured, or regenerates them for every page.
//
// This package supports batch iteration over stored content, progress tracking
// and per-page failure accounting: one failed page never stops the backfill.
package reembed
