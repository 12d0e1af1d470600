// Package lifecycle decides which extracted pages get embeddings and how long
// stored pages and screenshots are kept.
package lifecycle
