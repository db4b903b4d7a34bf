// Package store persists account snapshots durably between units of work.
// Three backends share one interface: an in-process map, an embedded sqlite
// file and postgres.
package store

import (
	"context"

	"github.com/gagliardetto/solana-go"

	"github.com/TanmayDhobale/splvault/internal/common"
)

// ErrNotFound reports an address with no stored account.
var ErrNotFound = common.ErrorNotFound

// Record is one persisted account: identity, owning-program tag, funding
// and raw data. The store treats Data as opaque bytes; the ledger record
// layouts belong to the engine.
type Record struct {
	Address  solana.PublicKey
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
}

// Clone returns a deep copy, so callers can hand records across the store
// boundary without aliasing.
func (r *Record) Clone() *Record {
	c := *r
	if r.Data != nil {
		c.Data = make([]byte, len(r.Data))
		copy(c.Data, r.Data)
	}
	return &c
}

// AccountStore is the durable boundary under the execution host.
type AccountStore interface {
	// Get returns the record at address, or ErrNotFound.
	Get(ctx context.Context, address solana.PublicKey) (*Record, error)

	// ListByOwner returns all records carrying the owning-program tag,
	// ordered by address.
	ListByOwner(ctx context.Context, owner solana.PublicKey) ([]*Record, error)

	// Put upserts all records atomically: either every record lands or none
	// do. The host commits one unit of work per call.
	Put(ctx context.Context, records ...*Record) error

	// Close releases the backend.
	Close() error
}
