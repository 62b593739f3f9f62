// Package cli provides the interactive RentFinder terminal client.
//
// It wires configuration, the HTTP API client and a read-eval-print loop.
// Renters browse and search listings; owners also manage their own. The
// session lives in memory only and is dropped on logout or exit.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
