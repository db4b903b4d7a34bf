package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Keygen(ctx context.Context, args []string) error
	Keys(ctx context.Context, args []string) error
	Pubkey(ctx context.Context, args []string) error
	VaultAddr(ctx context.Context, args []string) error
	BalanceAddr(ctx context.Context, args []string) error
	InitVault(ctx context.Context, args []string) error
	Deposit(ctx context.Context, args []string) error
	Withdraw(ctx context.Context, args []string) error
	Sweep(ctx context.Context, args []string) error
	CloseVault(ctx context.Context, args []string) error
	Vaults(ctx context.Context, args []string) error
	VaultInfo(ctx context.Context, args []string) error
	Balances(ctx context.Context, args []string) error
	AccountInfo(ctx context.Context, args []string) error
	Seed(ctx context.Context, args []string) error
}

// runREPL starts a simple read-eval-print loop for the vault CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a' with the remaining tokens as
// arguments. Unknown commands are reported back to the user. The loop exits
// on scanner EOF or when the user types "exit" or "quit".
//
// Commands
//
//	Keys:
//	  - keygen [name]                                        — create a sealed signing key
//	  - keys                                                 — list keystore entries
//	  - pubkey <key-name>                                    — print a key's address
//
//	Addresses:
//	  - vaultaddr <owner> <mint>                             — derive a vault record address
//	  - balanceaddr <user> <vault>                           — derive a balance record address
//
//	Ledger operations:
//	  - init <owner-key> <mint> <custody>                    — initialize a vault
//	  - deposit <vault> <user-key> <user-token-acct> <amt>   — deposit into a vault
//	  - withdraw <vault> <user-key> <user-token-acct> <amt>  — withdraw from a vault
//	  - sweep <vault> <owner-key> <owner-token-acct>         — owner sweep of custody
//	  - close <vault> <owner-key> <owner-token-acct>         — close a vault
//
//	Queries:
//	  - vaults                                               — list vault records
//	  - vault <address>                                      — show one vault
//	  - balances <vault-address>                             — list balances of a vault
//	  - account <address>                                    — show a raw ledger record
//	  - seed <file.json>                                     — seed accounts from a file
//
// Errors returned by command handlers are printed here; handlers only report
// them. This keeps the loop resilient and the handlers testable.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("vault %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		run := func(fn func(context.Context, []string) error) {
			if err := fn(ctx, args); err != nil {
				printlnFn("Error:", err.Error())
			}
		}

		switch cmd {
		case "help":
			printlnFn("Keys:       keygen, keys, pubkey")
			printlnFn("Addresses:  vaultaddr, balanceaddr")
			printlnFn("Operations: init, deposit, withdraw, sweep, close")
			printlnFn("Queries:    vaults, vault, balances, account, seed")
			printlnFn("Other:      help, exit")

		case "keygen":
			run(a.Keygen)

		case "keys":
			run(a.Keys)

		case "pubkey":
			run(a.Pubkey)

		case "vaultaddr":
			run(a.VaultAddr)

		case "balanceaddr":
			run(a.BalanceAddr)

		case "init":
			run(a.InitVault)

		case "deposit":
			run(a.Deposit)

		case "withdraw":
			run(a.Withdraw)

		case "sweep":
			run(a.Sweep)

		case "close":
			run(a.CloseVault)

		case "vaults":
			run(a.Vaults)

		case "vault":
			run(a.VaultInfo)

		case "balances":
			run(a.Balances)

		case "account":
			run(a.AccountInfo)

		case "seed":
			run(a.Seed)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
