// Package extract turns a fetched HTML page into the cleaned text stored for
// search. It is the server-side counterpart of the in-page extractor: the
// article body is located with go-readability, normalized, and bounded in
// length before it reaches the ingestion pipeline.
package extract
