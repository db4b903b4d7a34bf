package host

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/TanmayDhobale/splvault/internal/vault"
)

// Wire limits for unit envelopes.
const (
	maxUnitIDLength        = 64
	maxUnitInstructions    = 16
	maxInstructionAccounts = 32
	maxInstructionData     = 1024
)

// UnitAccount references one account slot with its access flags.
type UnitAccount struct {
	Address  solana.PublicKey
	Signer   bool
	Writable bool
}

// UnitInstruction is one program invocation inside a unit.
type UnitInstruction struct {
	Program  solana.PublicKey
	Accounts []UnitAccount
	Data     []byte
}

// Unit is one atomically-executed batch of instructions. Either every
// instruction succeeds and the touched accounts commit together, or the
// whole unit is discarded.
type Unit struct {
	ID           string
	Instructions []UnitInstruction
}

// NewUnit wraps program instructions in a fresh envelope with a generated id.
func NewUnit(instructions ...*vault.ProgramInstruction) *Unit {
	u := &Unit{ID: uuid.NewString()}
	for _, ix := range instructions {
		ui := UnitInstruction{Program: ix.ProgramID, Data: ix.Data}
		for _, meta := range ix.Accounts {
			ui.Accounts = append(ui.Accounts, UnitAccount{
				Address:  meta.PublicKey,
				Signer:   meta.IsSigner,
				Writable: meta.IsWritable,
			})
		}
		u.Instructions = append(u.Instructions, ui)
	}
	return u
}

// Marshal encodes the unit with explicit little-endian lengths. The result
// is the exact byte string signers sign.
func (u *Unit) Marshal() ([]byte, error) {
	id := []byte(u.ID)
	if len(id) > maxUnitIDLength {
		return nil, fmt.Errorf("unit id %d bytes long: %w", len(id), ErrMalformedUnit)
	}
	if len(u.Instructions) == 0 || len(u.Instructions) > maxUnitInstructions {
		return nil, fmt.Errorf("%d instructions: %w", len(u.Instructions), ErrMalformedUnit)
	}

	buf := new(bytes.Buffer)
	out := bin.NewBinEncoder(buf)

	if err := out.WriteUint32(uint32(len(id)), bin.LE); err != nil {
		return nil, err
	}
	if err := out.WriteBytes(id, false); err != nil {
		return nil, err
	}
	if err := out.WriteUint32(uint32(len(u.Instructions)), bin.LE); err != nil {
		return nil, err
	}
	for _, ix := range u.Instructions {
		if len(ix.Accounts) > maxInstructionAccounts {
			return nil, fmt.Errorf("%d accounts: %w", len(ix.Accounts), ErrMalformedUnit)
		}
		if len(ix.Data) > maxInstructionData {
			return nil, fmt.Errorf("%d data bytes: %w", len(ix.Data), ErrMalformedUnit)
		}
		if err := out.WriteBytes(ix.Program.Bytes(), false); err != nil {
			return nil, err
		}
		if err := out.WriteUint32(uint32(len(ix.Accounts)), bin.LE); err != nil {
			return nil, err
		}
		for _, a := range ix.Accounts {
			if err := out.WriteBytes(a.Address.Bytes(), false); err != nil {
				return nil, err
			}
			if err := out.WriteBool(a.Signer); err != nil {
				return nil, err
			}
			if err := out.WriteBool(a.Writable); err != nil {
				return nil, err
			}
		}
		if err := out.WriteUint32(uint32(len(ix.Data)), bin.LE); err != nil {
			return nil, err
		}
		if err := out.WriteBytes(ix.Data, false); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeUnit parses a unit envelope, enforcing the wire limits.
func DecodeUnit(data []byte) (*Unit, error) {
	dec := bin.NewBinDecoder(data)

	idLen, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return nil, fmt.Errorf("unit id length: %w", ErrMalformedUnit)
	}
	if idLen > maxUnitIDLength {
		return nil, fmt.Errorf("unit id %d bytes long: %w", idLen, ErrMalformedUnit)
	}
	idBytes, err := dec.ReadBytes(int(idLen))
	if err != nil {
		return nil, fmt.Errorf("unit id: %w", ErrMalformedUnit)
	}

	count, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return nil, fmt.Errorf("instruction count: %w", ErrMalformedUnit)
	}
	if count == 0 || count > maxUnitInstructions {
		return nil, fmt.Errorf("%d instructions: %w", count, ErrMalformedUnit)
	}

	unit := &Unit{ID: string(idBytes)}
	for i := uint32(0); i < count; i++ {
		var ix UnitInstruction

		program, err := dec.ReadBytes(solana.PublicKeyLength)
		if err != nil {
			return nil, fmt.Errorf("instruction %d program: %w", i, ErrMalformedUnit)
		}
		ix.Program = solana.PublicKeyFromBytes(program)

		accounts, err := dec.ReadUint32(bin.LE)
		if err != nil {
			return nil, fmt.Errorf("instruction %d account count: %w", i, ErrMalformedUnit)
		}
		if accounts > maxInstructionAccounts {
			return nil, fmt.Errorf("instruction %d has %d accounts: %w", i, accounts, ErrMalformedUnit)
		}
		for j := uint32(0); j < accounts; j++ {
			addr, err := dec.ReadBytes(solana.PublicKeyLength)
			if err != nil {
				return nil, fmt.Errorf("instruction %d account %d: %w", i, j, ErrMalformedUnit)
			}
			signer, err := readUnitFlag(dec)
			if err != nil {
				return nil, fmt.Errorf("instruction %d account %d signer flag: %w", i, j, err)
			}
			writable, err := readUnitFlag(dec)
			if err != nil {
				return nil, fmt.Errorf("instruction %d account %d writable flag: %w", i, j, err)
			}
			ix.Accounts = append(ix.Accounts, UnitAccount{
				Address:  solana.PublicKeyFromBytes(addr),
				Signer:   signer,
				Writable: writable,
			})
		}

		dataLen, err := dec.ReadUint32(bin.LE)
		if err != nil {
			return nil, fmt.Errorf("instruction %d data length: %w", i, ErrMalformedUnit)
		}
		if dataLen > maxInstructionData {
			return nil, fmt.Errorf("instruction %d carries %d data bytes: %w", i, dataLen, ErrMalformedUnit)
		}
		ixData, err := dec.ReadBytes(int(dataLen))
		if err != nil {
			return nil, fmt.Errorf("instruction %d data: %w", i, ErrMalformedUnit)
		}
		ix.Data = ixData

		unit.Instructions = append(unit.Instructions, ix)
	}

	if dec.Remaining() != 0 {
		return nil, fmt.Errorf("%d trailing bytes: %w", dec.Remaining(), ErrMalformedUnit)
	}
	return unit, nil
}

func readUnitFlag(dec *bin.Decoder) (bool, error) {
	b, err := dec.ReadByte()
	if err != nil {
		return false, ErrMalformedUnit
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("flag byte %#x: %w", b, ErrMalformedUnit)
	}
}

// UnitSignature is one detached signature over the unit payload.
type UnitSignature struct {
	Signer    solana.PublicKey `json:"signer"`
	Signature []byte           `json:"signature"`
}

// SignedUnit carries the encoded unit plus a signature for every account
// the unit flags as signer.
type SignedUnit struct {
	Payload    []byte          `json:"payload"`
	Signatures []UnitSignature `json:"signatures"`
}

// NewSignedUnit encodes the unit into a fresh, unsigned envelope.
func NewSignedUnit(u *Unit) (*SignedUnit, error) {
	payload, err := u.Marshal()
	if err != nil {
		return nil, err
	}
	return &SignedUnit{Payload: payload}, nil
}

// Sign appends a detached signature over the payload.
func (su *SignedUnit) Sign(key solana.PrivateKey) error {
	sig, err := key.Sign(su.Payload)
	if err != nil {
		return fmt.Errorf("sign unit: %w", err)
	}
	su.Signatures = append(su.Signatures, UnitSignature{
		Signer:    key.PublicKey(),
		Signature: sig[:],
	})
	return nil
}

// Verify decodes the payload and checks that every declared signer carries
// a valid signature. It returns the unit and the verified signer set.
func (su *SignedUnit) Verify() (*Unit, map[solana.PublicKey]bool, error) {
	unit, err := DecodeUnit(su.Payload)
	if err != nil {
		return nil, nil, err
	}

	verified := make(map[solana.PublicKey]bool, len(su.Signatures))
	for _, s := range su.Signatures {
		if len(s.Signature) != ed25519.SignatureSize {
			return nil, nil, fmt.Errorf("signer %s: %w", s.Signer, ErrBadSignature)
		}
		if !ed25519.Verify(ed25519.PublicKey(s.Signer.Bytes()), su.Payload, s.Signature) {
			return nil, nil, fmt.Errorf("signer %s: %w", s.Signer, ErrBadSignature)
		}
		verified[s.Signer] = true
	}

	for _, ix := range unit.Instructions {
		for _, a := range ix.Accounts {
			if a.Signer && !verified[a.Address] {
				return nil, nil, fmt.Errorf("account %s: %w", a.Address, ErrMissingSignature)
			}
		}
	}
	return unit, verified, nil
}
