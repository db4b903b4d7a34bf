package vault

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
)

func pk(fill byte) solana.PublicKey {
	return solana.PublicKeyFromBytes(bytes.Repeat([]byte{fill}, solana.PublicKeyLength))
}

// ---------- VaultState ----------

func TestVaultStateLayout(t *testing.T) {
	s := NewVaultState(pk(0x11), pk(0x22), pk(0x33), 254)
	s.TotalDeposited = 0x0807060504030201
	s.IsClosed = true

	raw, err := s.Marshal()
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if len(raw) != VaultStateSize {
		t.Fatalf("expected %d bytes, got %d", VaultStateSize, len(raw))
	}

	if !bytes.Equal(raw[0:32], bytes.Repeat([]byte{0x11}, 32)) {
		t.Fatalf("owner not at offset 0")
	}
	if !bytes.Equal(raw[32:64], bytes.Repeat([]byte{0x22}, 32)) {
		t.Fatalf("token mint not at offset 32")
	}
	if !bytes.Equal(raw[64:96], bytes.Repeat([]byte{0x33}, 32)) {
		t.Fatalf("token account not at offset 64")
	}
	if got := binary.LittleEndian.Uint64(raw[96:104]); got != 0x0807060504030201 {
		t.Fatalf("total at offset 96: got %#x", got)
	}
	if raw[104] != 1 {
		t.Fatalf("is_closed at offset 104: got %d", raw[104])
	}
	if raw[105] != 254 {
		t.Fatalf("bump at offset 105: got %d", raw[105])
	}
}

func TestVaultStateRoundTrip(t *testing.T) {
	s := NewVaultState(pk(0xAA), pk(0xBB), pk(0xCC), 253)
	s.TotalDeposited = 42

	raw, err := s.Marshal()
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	got, err := DecodeVaultState(raw)
	if err != nil {
		t.Fatalf("DecodeVaultState error: %v", err)
	}
	if *got != *s {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, s)
	}
}

func TestDecodeVaultState_WrongSize(t *testing.T) {
	for _, n := range []int{0, 1, VaultStateSize - 1, VaultStateSize + 1, UserBalanceSize} {
		if _, err := DecodeVaultState(make([]byte, n)); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("size %d: want ErrInvalidInput, got %v", n, err)
		}
	}
}

func TestDecodeVaultState_BadBoolByte(t *testing.T) {
	s := NewVaultState(pk(1), pk(2), pk(3), 255)
	raw, err := s.Marshal()
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	raw[104] = 2
	if _, err := DecodeVaultState(raw); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput for bool byte 2, got %v", err)
	}
}

func TestVaultStateValidate(t *testing.T) {
	tests := []struct {
		name  string
		state *VaultState
		ok    bool
	}{
		{name: "all keys set", state: NewVaultState(pk(1), pk(2), pk(3), 255), ok: true},
		{name: "zero owner", state: NewVaultState(solana.PublicKey{}, pk(2), pk(3), 255)},
		{name: "zero mint", state: NewVaultState(pk(1), solana.PublicKey{}, pk(3), 255)},
		{name: "zero token account", state: NewVaultState(pk(1), pk(2), solana.PublicKey{}, 255)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("want ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestVaultStateAddDeposit(t *testing.T) {
	s := NewVaultState(pk(1), pk(2), pk(3), 255)

	if err := s.AddDeposit(100); err != nil {
		t.Fatalf("AddDeposit error: %v", err)
	}
	if err := s.AddDeposit(math.MaxUint64 - 100); err != nil {
		t.Fatalf("AddDeposit to max error: %v", err)
	}
	if s.TotalDeposited != math.MaxUint64 {
		t.Fatalf("expected max total, got %d", s.TotalDeposited)
	}

	if err := s.AddDeposit(1); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("want ErrArithmeticOverflow, got %v", err)
	}
	if s.TotalDeposited != math.MaxUint64 {
		t.Fatalf("failed add must not change total, got %d", s.TotalDeposited)
	}
}

func TestVaultStateSubtractWithdrawal(t *testing.T) {
	s := NewVaultState(pk(1), pk(2), pk(3), 255)
	s.TotalDeposited = 50

	if err := s.SubtractWithdrawal(20); err != nil {
		t.Fatalf("SubtractWithdrawal error: %v", err)
	}
	if s.TotalDeposited != 30 {
		t.Fatalf("expected 30, got %d", s.TotalDeposited)
	}

	if err := s.SubtractWithdrawal(31); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	if s.TotalDeposited != 30 {
		t.Fatalf("failed subtract must not change total, got %d", s.TotalDeposited)
	}
}

func TestVaultStateCloseAndReset(t *testing.T) {
	s := NewVaultState(pk(1), pk(2), pk(3), 255)
	s.TotalDeposited = 7

	if !s.IsOperational() {
		t.Fatalf("new vault must be operational")
	}

	s.ResetTotalDeposited()
	if s.TotalDeposited != 0 {
		t.Fatalf("reset left total %d", s.TotalDeposited)
	}

	s.Close()
	if s.IsOperational() {
		t.Fatalf("closed vault reported operational")
	}
}

// ---------- UserBalance ----------

func TestUserBalanceLayout(t *testing.T) {
	b := NewUserBalance(pk(0x44), pk(0x55), 251)
	b.Balance = 0x1122334455667788

	raw, err := b.Marshal()
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if len(raw) != UserBalanceSize {
		t.Fatalf("expected %d bytes, got %d", UserBalanceSize, len(raw))
	}

	if !bytes.Equal(raw[0:32], bytes.Repeat([]byte{0x44}, 32)) {
		t.Fatalf("user not at offset 0")
	}
	if !bytes.Equal(raw[32:64], bytes.Repeat([]byte{0x55}, 32)) {
		t.Fatalf("vault not at offset 32")
	}
	if got := binary.LittleEndian.Uint64(raw[64:72]); got != 0x1122334455667788 {
		t.Fatalf("balance at offset 64: got %#x", got)
	}
	if raw[72] != 251 {
		t.Fatalf("bump at offset 72: got %d", raw[72])
	}
}

func TestUserBalanceRoundTrip(t *testing.T) {
	b := NewUserBalance(pk(0xDD), pk(0xEE), 250)
	b.Balance = 9001

	raw, err := b.Marshal()
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	got, err := DecodeUserBalance(raw)
	if err != nil {
		t.Fatalf("DecodeUserBalance error: %v", err)
	}
	if *got != *b {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, b)
	}
}

func TestDecodeUserBalance_WrongSize(t *testing.T) {
	for _, n := range []int{0, UserBalanceSize - 1, UserBalanceSize + 1, VaultStateSize} {
		if _, err := DecodeUserBalance(make([]byte, n)); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("size %d: want ErrInvalidInput, got %v", n, err)
		}
	}
}

func TestUserBalanceValidate(t *testing.T) {
	if err := NewUserBalance(pk(1), pk(2), 255).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := NewUserBalance(solana.PublicKey{}, pk(2), 255).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero user: want ErrInvalidInput, got %v", err)
	}
	if err := NewUserBalance(pk(1), solana.PublicKey{}, 255).Validate(); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero vault: want ErrInvalidInput, got %v", err)
	}
}

func TestUserBalanceArithmetic(t *testing.T) {
	b := NewUserBalance(pk(1), pk(2), 255)

	if err := b.AddBalance(10); err != nil {
		t.Fatalf("AddBalance error: %v", err)
	}
	if !b.HasSufficientBalance(10) || b.HasSufficientBalance(11) {
		t.Fatalf("HasSufficientBalance wrong around %d", b.Balance)
	}

	if err := b.SubtractBalance(11); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("want ErrInsufficientFunds, got %v", err)
	}
	if err := b.SubtractBalance(10); err != nil {
		t.Fatalf("SubtractBalance error: %v", err)
	}
	if b.Balance != 0 {
		t.Fatalf("expected zero balance, got %d", b.Balance)
	}

	b.Balance = math.MaxUint64
	if err := b.AddBalance(1); !errors.Is(err, ErrArithmeticOverflow) {
		t.Fatalf("want ErrArithmeticOverflow, got %v", err)
	}
}

// ---------- error codes ----------

func TestErrorCodeOrder(t *testing.T) {
	want := []error{
		ErrInsufficientFunds,
		ErrUnauthorizedAccess,
		ErrInvalidInput,
		ErrVaultClosed,
		ErrInvalidTokenAccount,
		ErrInvalidMint,
		ErrArithmeticOverflow,
		ErrAccountNotInitialized,
	}
	for i, e := range want {
		code, ok := ErrorCode(e)
		if !ok {
			t.Fatalf("ErrorCode(%v) not recognized", e)
		}
		if code != uint32(i) {
			t.Fatalf("ErrorCode(%v) = %d, want %d", e, code, i)
		}
	}
	if _, ok := ErrorCode(errors.New("other")); ok {
		t.Fatalf("foreign error must not map to a code")
	}
}
