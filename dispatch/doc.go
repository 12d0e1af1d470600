// Package dispatch routes typed commands from clients (the browser extension,
// the HTTP surface, the CLI) to the search, ingestion and settings components.
//
// Every command is answered with a Result; failures are reported in the
// result rather than as Go errors, so a transport can forward it unchanged.
package dispatch
