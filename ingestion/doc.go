// Package ingestion provides pipeline orchestration for extracted page content.
//
// The Pipeline type manages the ingestion workflow for a visited page, including:
//   - Storing the extracted text and any screenshot
//   - Updating running statistics and enforcing retention
//   - Generating embeddings asynchronously for eligible pages
//
// Embedding generation runs on a worker pool. Its failures are logged but do
// not fail the ingestion: a page without an embedding stays lexically searchable.
package ingestion
