package client

import (
	"context"

	"github.com/TanmayDhobale/splvault/internal/host"
)

// Client is the API contract the CLI uses to talk to the vault daemon.
type Client interface {
	Close() error
	Ping(ctx context.Context) error
	SubmitUnit(ctx context.Context, signed *host.SignedUnit) (*UnitResult, error)
	SeedAccounts(ctx context.Context, accounts []Account) (int, error)
	ListVaults(ctx context.Context) ([]Vault, error)
	GetVault(ctx context.Context, address string) (*Vault, error)
	ListBalances(ctx context.Context, address string) ([]Balance, error)
	GetAccount(ctx context.Context, address string) (*Account, error)
}

// UnitResult reports the outcome of a committed execution unit.
type UnitResult struct {
	UnitID string `json:"unit_id"`
	Status string `json:"status"`
}

// Vault mirrors the daemon's vault view. CustodyAmount is only present on
// single-vault reads, and only when the custody token account is readable.
type Vault struct {
	Address        string  `json:"address"`
	Owner          string  `json:"owner"`
	TokenMint      string  `json:"token_mint"`
	TokenAccount   string  `json:"token_account"`
	TotalDeposited uint64  `json:"total_deposited"`
	IsClosed       bool    `json:"is_closed"`
	Bump           uint8   `json:"bump"`
	CustodyAmount  *uint64 `json:"custody_amount,omitempty"`
}

// Balance mirrors the daemon's per-user balance view.
type Balance struct {
	Address string `json:"address"`
	User    string `json:"user"`
	Vault   string `json:"vault"`
	Balance uint64 `json:"balance"`
	Bump    uint8  `json:"bump"`
}

// Account is a raw ledger record, also used as the seeding payload.
type Account struct {
	Address  string `json:"address"`
	Owner    string `json:"owner"`
	Lamports uint64 `json:"lamports"`
	Data     []byte `json:"data,omitempty"`
}
