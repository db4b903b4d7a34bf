package vault

import (
	"bytes"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Instruction kinds, in wire declaration order. The tag byte is part of the
// instruction encoding and must not be reordered.
const (
	InstructionInitialize uint8 = iota
	InstructionDeposit
	InstructionWithdraw
	InstructionWithdrawAll
	InstructionClose
)

// InstructionKindName returns a human-readable name for logs.
func InstructionKindName(kind uint8) string {
	switch kind {
	case InstructionInitialize:
		return "Initialize"
	case InstructionDeposit:
		return "Deposit"
	case InstructionWithdraw:
		return "Withdraw"
	case InstructionWithdrawAll:
		return "WithdrawAll"
	case InstructionClose:
		return "Close"
	default:
		return fmt.Sprintf("Unknown(%d)", kind)
	}
}

// Instruction is the decoded tagged union consumed by the engine. Amount is
// meaningful for Deposit and Withdraw only.
type Instruction struct {
	Kind   uint8
	Amount uint64
}

// UnpackInstruction decodes one tag byte followed by little-endian fields.
// An empty buffer, an unknown tag and trailing bytes all report
// ErrInvalidInput.
func UnpackInstruction(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return Instruction{}, fmt.Errorf("empty instruction data: %w", ErrInvalidInput)
	}

	decoder := bin.NewBinDecoder(data)
	tag, err := decoder.ReadByte()
	if err != nil {
		return Instruction{}, fmt.Errorf("instruction tag: %v: %w", err, ErrInvalidInput)
	}

	ix := Instruction{Kind: tag}
	switch tag {
	case InstructionInitialize, InstructionWithdrawAll, InstructionClose:
	case InstructionDeposit, InstructionWithdraw:
		if ix.Amount, err = decoder.ReadUint64(bin.LE); err != nil {
			return Instruction{}, fmt.Errorf("instruction amount: %v: %w", err, ErrInvalidInput)
		}
	default:
		return Instruction{}, fmt.Errorf("unknown instruction tag %d: %w", tag, ErrInvalidInput)
	}

	if decoder.Remaining() != 0 {
		return Instruction{}, fmt.Errorf("%d trailing bytes after instruction: %w", decoder.Remaining(), ErrInvalidInput)
	}
	return ix, nil
}

// Pack encodes the instruction into its wire form.
func (ix Instruction) Pack() ([]byte, error) {
	buf := new(bytes.Buffer)
	encoder := bin.NewBinEncoder(buf)

	if err := encoder.WriteByte(ix.Kind); err != nil {
		return nil, err
	}
	switch ix.Kind {
	case InstructionInitialize, InstructionWithdrawAll, InstructionClose:
	case InstructionDeposit, InstructionWithdraw:
		if err := encoder.WriteUint64(ix.Amount, bin.LE); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown instruction tag %d: %w", ix.Kind, ErrInvalidInput)
	}
	return buf.Bytes(), nil
}

// ValidateInstructionData checks encoded data before submission: it must
// decode, and value-moving instructions must carry a non-zero amount.
func ValidateInstructionData(data []byte) error {
	ix, err := UnpackInstruction(data)
	if err != nil {
		return err
	}
	switch ix.Kind {
	case InstructionDeposit, InstructionWithdraw:
		if ix.Amount == 0 {
			return fmt.Errorf("zero amount: %w", ErrInvalidInput)
		}
	}
	return nil
}

// ProgramInstruction is the client-side form of one instruction: the program
// to invoke, the ordered account list with signer/writable flags, and the
// encoded data.
type ProgramInstruction struct {
	ProgramID solana.PublicKey
	Accounts  []*solana.AccountMeta
	Data      []byte
}

// NewInitializeInstruction builds the Initialize instruction. Account order:
// owner, vault record, vault custody account, mint, token program, system
// program, rent sysvar.
func NewInitializeInstruction(params Params, owner, vaultAddress, vaultTokenAccount, tokenMint solana.PublicKey) (*ProgramInstruction, error) {
	data, err := Instruction{Kind: InstructionInitialize}.Pack()
	if err != nil {
		return nil, err
	}
	return &ProgramInstruction{
		ProgramID: params.ProgramID,
		Accounts: []*solana.AccountMeta{
			solana.NewAccountMeta(owner, true, true),
			solana.NewAccountMeta(vaultAddress, true, false),
			solana.NewAccountMeta(vaultTokenAccount, true, false),
			solana.NewAccountMeta(tokenMint, false, false),
			solana.NewAccountMeta(params.TokenProgramID, false, false),
			solana.NewAccountMeta(params.SystemProgramID, false, false),
			solana.NewAccountMeta(params.RentSysvarID, false, false),
		},
		Data: data,
	}, nil
}

// NewDepositInstruction builds the Deposit instruction. Account order: user,
// user custody account, vault custody account, vault record, user balance
// record, token program, system program.
func NewDepositInstruction(params Params, user, userTokenAccount, vaultTokenAccount, vaultAddress, userBalanceAddress solana.PublicKey, amount uint64) (*ProgramInstruction, error) {
	data, err := Instruction{Kind: InstructionDeposit, Amount: amount}.Pack()
	if err != nil {
		return nil, err
	}
	return &ProgramInstruction{
		ProgramID: params.ProgramID,
		Accounts: []*solana.AccountMeta{
			solana.NewAccountMeta(user, true, true),
			solana.NewAccountMeta(userTokenAccount, true, false),
			solana.NewAccountMeta(vaultTokenAccount, true, false),
			solana.NewAccountMeta(vaultAddress, true, false),
			solana.NewAccountMeta(userBalanceAddress, true, false),
			solana.NewAccountMeta(params.TokenProgramID, false, false),
			solana.NewAccountMeta(params.SystemProgramID, false, false),
		},
		Data: data,
	}, nil
}

// NewWithdrawInstruction builds the Withdraw instruction. Account order:
// user, user custody account, vault custody account, vault record, user
// balance record, token program.
func NewWithdrawInstruction(params Params, user, userTokenAccount, vaultTokenAccount, vaultAddress, userBalanceAddress solana.PublicKey, amount uint64) (*ProgramInstruction, error) {
	data, err := Instruction{Kind: InstructionWithdraw, Amount: amount}.Pack()
	if err != nil {
		return nil, err
	}
	return &ProgramInstruction{
		ProgramID: params.ProgramID,
		Accounts: []*solana.AccountMeta{
			solana.NewAccountMeta(user, true, true),
			solana.NewAccountMeta(userTokenAccount, true, false),
			solana.NewAccountMeta(vaultTokenAccount, true, false),
			solana.NewAccountMeta(vaultAddress, true, false),
			solana.NewAccountMeta(userBalanceAddress, true, false),
			solana.NewAccountMeta(params.TokenProgramID, false, false),
		},
		Data: data,
	}, nil
}

// NewWithdrawAllInstruction builds the owner-sweep instruction. Account
// order: owner, owner custody account, vault custody account, vault record,
// token program.
func NewWithdrawAllInstruction(params Params, owner, ownerTokenAccount, vaultTokenAccount, vaultAddress solana.PublicKey) (*ProgramInstruction, error) {
	data, err := Instruction{Kind: InstructionWithdrawAll}.Pack()
	if err != nil {
		return nil, err
	}
	return &ProgramInstruction{
		ProgramID: params.ProgramID,
		Accounts: []*solana.AccountMeta{
			solana.NewAccountMeta(owner, true, true),
			solana.NewAccountMeta(ownerTokenAccount, true, false),
			solana.NewAccountMeta(vaultTokenAccount, true, false),
			solana.NewAccountMeta(vaultAddress, true, false),
			solana.NewAccountMeta(params.TokenProgramID, false, false),
		},
		Data: data,
	}, nil
}

// NewCloseInstruction builds the Close instruction. Account order: owner,
// owner custody account, vault custody account, vault record, token program.
func NewCloseInstruction(params Params, owner, ownerTokenAccount, vaultTokenAccount, vaultAddress solana.PublicKey) (*ProgramInstruction, error) {
	data, err := Instruction{Kind: InstructionClose}.Pack()
	if err != nil {
		return nil, err
	}
	return &ProgramInstruction{
		ProgramID: params.ProgramID,
		Accounts: []*solana.AccountMeta{
			solana.NewAccountMeta(owner, true, true),
			solana.NewAccountMeta(ownerTokenAccount, true, false),
			solana.NewAccountMeta(vaultTokenAccount, true, false),
			solana.NewAccountMeta(vaultAddress, true, false),
			solana.NewAccountMeta(params.TokenProgramID, false, false),
		},
		Data: data,
	}, nil
}
