// Package gateway wraps the embedding provider behind a single interface.
//
// The gateway owns the credential lifecycle (not ready until a key is set),
// input truncation, request pacing, retries with exponential backoff and a
// small cache of recent query embeddings. Callers never see provider
// errors directly; they get core.ErrNotReady, core.ErrEmptyInput,
// core.ErrRequestFailed, core.ErrInvalidKey or core.ErrNetwork.
package gateway
