package vault

import (
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
)

func TestDeriveVaultAddress_Deterministic(t *testing.T) {
	program := pk(0x90)
	owner := pk(0x01)
	mint := pk(0x02)

	a1, b1, err := DeriveVaultAddress(program, owner, mint)
	if err != nil {
		t.Fatalf("derive error: %v", err)
	}
	a2, b2, err := DeriveVaultAddress(program, owner, mint)
	if err != nil {
		t.Fatalf("derive error: %v", err)
	}
	if !a1.Equals(a2) || b1 != b2 {
		t.Fatalf("derivation not deterministic: (%s,%d) vs (%s,%d)", a1, b1, a2, b2)
	}

	a3, _, err := DeriveVaultAddress(program, pk(0x03), mint)
	if err != nil {
		t.Fatalf("derive error: %v", err)
	}
	if a1.Equals(a3) {
		t.Fatalf("different owners derived the same address %s", a1)
	}

	a4, _, err := DeriveVaultAddress(pk(0x91), owner, mint)
	if err != nil {
		t.Fatalf("derive error: %v", err)
	}
	if a1.Equals(a4) {
		t.Fatalf("different programs derived the same address %s", a1)
	}
}

func TestDeriveUserBalanceAddress_Deterministic(t *testing.T) {
	program := pk(0x90)
	user := pk(0x10)
	vaultAddr := pk(0x20)

	a1, b1, err := DeriveUserBalanceAddress(program, user, vaultAddr)
	if err != nil {
		t.Fatalf("derive error: %v", err)
	}
	a2, b2, err := DeriveUserBalanceAddress(program, user, vaultAddr)
	if err != nil {
		t.Fatalf("derive error: %v", err)
	}
	if !a1.Equals(a2) || b1 != b2 {
		t.Fatalf("derivation not deterministic")
	}

	a3, _, err := DeriveUserBalanceAddress(program, user, pk(0x21))
	if err != nil {
		t.Fatalf("derive error: %v", err)
	}
	if a1.Equals(a3) {
		t.Fatalf("different vaults derived the same address %s", a1)
	}
}

func TestVerifyVaultAddress(t *testing.T) {
	program := pk(0x90)
	owner := pk(0x01)
	mint := pk(0x02)

	addr, bump, err := DeriveVaultAddress(program, owner, mint)
	if err != nil {
		t.Fatalf("derive error: %v", err)
	}

	if err := VerifyVaultAddress(program, addr, owner, mint, bump); err != nil {
		t.Fatalf("verify of derived address failed: %v", err)
	}
	if err := VerifyVaultAddress(program, pk(0x77), owner, mint, bump); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("substituted address: want ErrInvalidInput, got %v", err)
	}
	if err := VerifyVaultAddress(program, addr, pk(0x78), mint, bump); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("wrong owner seed: want ErrInvalidInput, got %v", err)
	}
}

func TestVerifyUserBalanceAddress(t *testing.T) {
	program := pk(0x90)
	user := pk(0x10)
	vaultAddr := pk(0x20)

	addr, bump, err := DeriveUserBalanceAddress(program, user, vaultAddr)
	if err != nil {
		t.Fatalf("derive error: %v", err)
	}

	if err := VerifyUserBalanceAddress(program, addr, user, vaultAddr, bump); err != nil {
		t.Fatalf("verify of derived address failed: %v", err)
	}
	if err := VerifyUserBalanceAddress(program, pk(0x77), user, vaultAddr, bump); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("substituted address: want ErrInvalidInput, got %v", err)
	}
}

func TestSeedAuthorityAddress(t *testing.T) {
	program := pk(0x90)
	owner := pk(0x01)
	mint := pk(0x02)

	vaultAddr, bump, err := DeriveVaultAddress(program, owner, mint)
	if err != nil {
		t.Fatalf("derive error: %v", err)
	}

	state := NewVaultState(owner, mint, pk(0x03), bump)
	got, err := VaultSeedAuthority(program, state).Address()
	if err != nil {
		t.Fatalf("seed authority address error: %v", err)
	}
	if !got.Equals(vaultAddr) {
		t.Fatalf("vault seed authority resolves to %s, want %s", got, vaultAddr)
	}

	creation, err := VaultRecordSeedAuthority(program, owner, mint, bump).Address()
	if err != nil {
		t.Fatalf("creation authority address error: %v", err)
	}
	if !creation.Equals(vaultAddr) {
		t.Fatalf("creation authority resolves to %s, want %s", creation, vaultAddr)
	}

	ubAddr, ubBump, err := DeriveUserBalanceAddress(program, pk(0x10), vaultAddr)
	if err != nil {
		t.Fatalf("derive error: %v", err)
	}
	ubGot, err := UserBalanceSeedAuthority(program, pk(0x10), vaultAddr, ubBump).Address()
	if err != nil {
		t.Fatalf("user balance authority address error: %v", err)
	}
	if !ubGot.Equals(ubAddr) {
		t.Fatalf("user balance authority resolves to %s, want %s", ubGot, ubAddr)
	}
}

func TestAuthorityConstructors(t *testing.T) {
	acc := &Account{Address: pk(1), IsSigner: true}
	a := SignerAuthority(acc)
	if a.Account != acc || a.Seed != nil {
		t.Fatalf("signer authority malformed: %+v", a)
	}

	seed := UserBalanceSeedAuthority(pk(0x90), pk(0x10), pk(0x20), 255)
	d := DerivedAuthority(seed)
	if d.Account != nil || d.Seed == nil {
		t.Fatalf("derived authority malformed: %+v", d)
	}
	if !d.Seed.Program.Equals(pk(0x90)) {
		t.Fatalf("derived authority program %s", d.Seed.Program)
	}
}

func TestAccountClone(t *testing.T) {
	a := &Account{
		Address:    pk(1),
		Owner:      pk(2),
		Lamports:   10,
		Data:       []byte{1, 2, 3},
		IsSigner:   true,
		IsWritable: true,
	}
	c := a.Clone()
	c.Data[0] = 9
	c.Lamports = 99

	if a.Data[0] != 1 || a.Lamports != 10 {
		t.Fatalf("clone shares state with original: %+v", a)
	}
	if !c.Address.Equals(a.Address) || !c.IsSigner || !c.IsWritable {
		t.Fatalf("clone dropped fields: %+v", c)
	}
}

func TestAccountUnallocated(t *testing.T) {
	system := solana.SystemProgramID

	fresh := &Account{Address: pk(1), Owner: system}
	if !fresh.Unallocated(system) {
		t.Fatalf("system-owned empty account must be unallocated")
	}

	allocated := &Account{Address: pk(1), Owner: pk(0x90), Data: make([]byte, 8)}
	if allocated.Unallocated(system) {
		t.Fatalf("program-owned account must not be unallocated")
	}
}
