// Package client contains the CLI-side transport for the vault daemon.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) covering
//     unit submission, account seeding, vault and balance reads, raw account
//     reads and a reachability probe.
//  2. A concrete HTTP implementation (see HTTPClient) that attaches the
//     operator token to every request and maps daemon responses to errors.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound. Remaining
// rejections surface as *APIError, carrying the HTTP status, the daemon's
// message and, for ledger rejections, the numeric program error code.
//
// Concurrency & Contexts
//
// Implementations should be safe for concurrent use unless stated otherwise.
// All operations accept context.Context and must honor cancellation/timeouts.
package client
