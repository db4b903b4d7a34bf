// Package cli provides the interactive vault command-line client.
//
// It wires configuration, the sealed keystore, the daemon API client and an
// interactive REPL. Typical flow: mint an operator token from the shared
// secret, start a background connectivity watcher, and execute user commands.
//
// Key features:
//   - Sealed signing keys: keygen / keys / pubkey
//   - Ledger operations: init, deposit, withdraw, sweep, close
//   - Queries: vaults, vault, balances, account
//   - Address derivation: vaultaddr, balanceaddr
//   - Dev seeding of wallets, mints and token accounts
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
