package vault

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Fixed sizes of the external token program's account layouts.
const (
	// TokenAccountSize is the serialized size of a custody token account.
	TokenAccountSize = 165

	// MintSize is the serialized size of a token mint.
	MintSize = 82
)

// Token account states.
const (
	TokenStateUninitialized uint8 = iota
	TokenStateInitialized
	TokenStateFrozen
)

// TokenAccount is the decoded form of a custody account owned by the token
// program. Its Amount field is the authoritative source of truth for how
// much value the account actually holds.
type TokenAccount struct {
	Mint            solana.PublicKey
	Owner           solana.PublicKey
	Amount          uint64
	Delegate        *solana.PublicKey
	State           uint8
	IsNative        *uint64
	DelegatedAmount uint64
	CloseAuthority  *solana.PublicKey
}

// NewTokenAccount returns an initialized custody account for fixtures and
// host-side account seeding.
func NewTokenAccount(mint, owner solana.PublicKey, amount uint64) *TokenAccount {
	return &TokenAccount{
		Mint:   mint,
		Owner:  owner,
		Amount: amount,
		State:  TokenStateInitialized,
	}
}

// IsFrozen reports whether the token program would reject transfers.
func (t *TokenAccount) IsFrozen() bool {
	return t.State == TokenStateFrozen
}

// DecodeTokenAccount parses the fixed 165-byte custody account layout.
// Structural faults, a wrong length and the uninitialized state all report
// ErrInvalidTokenAccount; the layout is never partially parsed.
func DecodeTokenAccount(data []byte) (*TokenAccount, error) {
	if len(data) != TokenAccountSize {
		return nil, fmt.Errorf("token account is %d bytes, want %d: %w", len(data), TokenAccountSize, ErrInvalidTokenAccount)
	}

	decoder := bin.NewBinDecoder(data)
	t := &TokenAccount{}

	pk, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return nil, fmt.Errorf("token account mint: %v: %w", err, ErrInvalidTokenAccount)
	}
	copy(t.Mint[:], pk)

	pk, err = decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return nil, fmt.Errorf("token account owner: %v: %w", err, ErrInvalidTokenAccount)
	}
	copy(t.Owner[:], pk)

	if t.Amount, err = decoder.ReadUint64(bin.LE); err != nil {
		return nil, fmt.Errorf("token account amount: %v: %w", err, ErrInvalidTokenAccount)
	}

	t.Delegate, err = readOptionKey(decoder)
	if err != nil {
		return nil, fmt.Errorf("token account delegate: %v: %w", err, ErrInvalidTokenAccount)
	}

	if t.State, err = decoder.ReadByte(); err != nil {
		return nil, fmt.Errorf("token account state: %v: %w", err, ErrInvalidTokenAccount)
	}
	if t.State > TokenStateFrozen {
		return nil, fmt.Errorf("token account state byte 0x%02x: %w", t.State, ErrInvalidTokenAccount)
	}

	t.IsNative, err = readOptionUint64(decoder)
	if err != nil {
		return nil, fmt.Errorf("token account native flag: %v: %w", err, ErrInvalidTokenAccount)
	}

	if t.DelegatedAmount, err = decoder.ReadUint64(bin.LE); err != nil {
		return nil, fmt.Errorf("token account delegated amount: %v: %w", err, ErrInvalidTokenAccount)
	}

	t.CloseAuthority, err = readOptionKey(decoder)
	if err != nil {
		return nil, fmt.Errorf("token account close authority: %v: %w", err, ErrInvalidTokenAccount)
	}

	if t.State == TokenStateUninitialized {
		return nil, fmt.Errorf("token account is uninitialized: %w", ErrInvalidTokenAccount)
	}
	return t, nil
}

// Marshal writes the fixed 165-byte layout.
func (t *TokenAccount) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	encoder := bin.NewBinEncoder(buf)

	if err := encoder.WriteBytes(t.Mint[:], false); err != nil {
		return nil, err
	}
	if err := encoder.WriteBytes(t.Owner[:], false); err != nil {
		return nil, err
	}
	if err := encoder.WriteUint64(t.Amount, bin.LE); err != nil {
		return nil, err
	}
	if err := writeOptionKey(encoder, t.Delegate); err != nil {
		return nil, err
	}
	if err := encoder.WriteByte(t.State); err != nil {
		return nil, err
	}
	if err := writeOptionUint64(encoder, t.IsNative); err != nil {
		return nil, err
	}
	if err := encoder.WriteUint64(t.DelegatedAmount, bin.LE); err != nil {
		return nil, err
	}
	if err := writeOptionKey(encoder, t.CloseAuthority); err != nil {
		return nil, err
	}

	if buf.Len() != TokenAccountSize {
		return nil, fmt.Errorf("token account encoded to %d bytes, want %d", buf.Len(), TokenAccountSize)
	}
	return buf.Bytes(), nil
}

// Mint is the decoded form of a token mint.
type Mint struct {
	MintAuthority   *solana.PublicKey
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority *solana.PublicKey
}

// NewMint returns an initialized mint for fixtures and host-side seeding.
func NewMint(authority *solana.PublicKey, supply uint64, decimals uint8) *Mint {
	return &Mint{
		MintAuthority: authority,
		Supply:        supply,
		Decimals:      decimals,
		IsInitialized: true,
	}
}

// DecodeMint parses the fixed 82-byte mint layout. Structural faults, a
// wrong length and the uninitialized state all report ErrInvalidMint.
func DecodeMint(data []byte) (*Mint, error) {
	if len(data) != MintSize {
		return nil, fmt.Errorf("mint is %d bytes, want %d: %w", len(data), MintSize, ErrInvalidMint)
	}

	decoder := bin.NewBinDecoder(data)
	m := &Mint{}

	var err error
	m.MintAuthority, err = readOptionKey(decoder)
	if err != nil {
		return nil, fmt.Errorf("mint authority: %v: %w", err, ErrInvalidMint)
	}

	if m.Supply, err = decoder.ReadUint64(bin.LE); err != nil {
		return nil, fmt.Errorf("mint supply: %v: %w", err, ErrInvalidMint)
	}
	if m.Decimals, err = decoder.ReadByte(); err != nil {
		return nil, fmt.Errorf("mint decimals: %v: %w", err, ErrInvalidMint)
	}
	if m.IsInitialized, err = readStrictBool(decoder); err != nil {
		return nil, fmt.Errorf("mint initialized flag: %v: %w", err, ErrInvalidMint)
	}

	m.FreezeAuthority, err = readOptionKey(decoder)
	if err != nil {
		return nil, fmt.Errorf("mint freeze authority: %v: %w", err, ErrInvalidMint)
	}

	if !m.IsInitialized {
		return nil, fmt.Errorf("mint is uninitialized: %w", ErrInvalidMint)
	}
	return m, nil
}

// Marshal writes the fixed 82-byte layout.
func (m *Mint) Marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	encoder := bin.NewBinEncoder(buf)

	if err := writeOptionKey(encoder, m.MintAuthority); err != nil {
		return nil, err
	}
	if err := encoder.WriteUint64(m.Supply, bin.LE); err != nil {
		return nil, err
	}
	if err := encoder.WriteByte(m.Decimals); err != nil {
		return nil, err
	}
	if err := encoder.WriteBool(m.IsInitialized); err != nil {
		return nil, err
	}
	if err := writeOptionKey(encoder, m.FreezeAuthority); err != nil {
		return nil, err
	}

	if buf.Len() != MintSize {
		return nil, fmt.Errorf("mint encoded to %d bytes, want %d", buf.Len(), MintSize)
	}
	return buf.Bytes(), nil
}

// readOptionKey decodes the token program's 4-byte-tagged optional key. Any
// tag other than 0 or 1 is corruption.
func readOptionKey(decoder *bin.Decoder) (*solana.PublicKey, error) {
	tag, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return nil, err
	}
	pk, err := decoder.ReadBytes(solana.PublicKeyLength)
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		key := solana.PublicKeyFromBytes(pk)
		return &key, nil
	default:
		return nil, fmt.Errorf("invalid option tag %d", tag)
	}
}

func writeOptionKey(encoder *bin.Encoder, key *solana.PublicKey) error {
	var tag uint32
	var body [solana.PublicKeyLength]byte
	if key != nil {
		tag = 1
		body = *key
	}
	if err := encoder.WriteUint32(tag, bin.LE); err != nil {
		return err
	}
	return encoder.WriteBytes(body[:], false)
}

// readOptionUint64 decodes the token program's 4-byte-tagged optional u64.
func readOptionUint64(decoder *bin.Decoder) (*uint64, error) {
	tag, err := decoder.ReadUint32(bin.LE)
	if err != nil {
		return nil, err
	}
	v, err := decoder.ReadUint64(bin.LE)
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		return &v, nil
	default:
		return nil, fmt.Errorf("invalid option tag %d", tag)
	}
}

func writeOptionUint64(encoder *bin.Encoder, v *uint64) error {
	var tag uint32
	var body uint64
	if v != nil {
		tag = 1
		body = *v
	}
	if err := encoder.WriteUint32(tag, bin.LE); err != nil {
		return err
	}
	return encoder.WriteUint64(body, bin.LE)
}
