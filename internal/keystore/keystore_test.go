package keystore

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gagliardetto/solana-go"

	"github.com/TanmayDhobale/splvault/internal/common"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	passphrase := []byte("secret-passphrase")
	salt := []byte("fixed-salt")

	key1 := DeriveKey(passphrase, salt)
	key2 := DeriveKey(passphrase, salt)

	if !bytes.Equal(key1, key2) {
		t.Errorf("expected same result for same inputs, got different")
	}
	if len(key1) != 32 {
		t.Errorf("derived key is %d bytes, want 32", len(key1))
	}
}

func TestDeriveKey_DifferentSalts(t *testing.T) {
	passphrase := []byte("secret-passphrase")

	key1 := DeriveKey(passphrase, []byte("salt-1"))
	key2 := DeriveKey(passphrase, []byte("salt-2"))

	if bytes.Equal(key1, key2) {
		t.Errorf("expected different results for different salts, got same")
	}
}

func testKeystore(t *testing.T) *Keystore {
	t.Helper()
	ks, err := Open(filepath.Join(t.TempDir(), "keys"))
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	return ks
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	ks := testKeystore(t)

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("keygen error: %v", err)
	}
	passphrase := []byte("open sesame")

	if err := ks.Save("payer", key, passphrase); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	fi, err := os.Stat(ks.Path("payer"))
	if err != nil {
		t.Fatalf("stat key file: %v", err)
	}
	// salt + nonce + sealed key + GCM tag
	wantSize := int64(saltSize + nonceSize + ed25519PrivateKeySize + 16)
	if fi.Size() != wantSize {
		t.Fatalf("key file is %d bytes, want %d", fi.Size(), wantSize)
	}
	if runtime.GOOS != "windows" && fi.Mode().Perm() != 0o600 {
		t.Fatalf("key file mode = %v, want 0600", fi.Mode().Perm())
	}

	got, err := ks.Load("payer", passphrase)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Fatalf("loaded key differs from saved key")
	}
}

func TestLoad_WrongPassphrase(t *testing.T) {
	ks := testKeystore(t)

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("keygen error: %v", err)
	}
	if err := ks.Save("payer", key, []byte("right")); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	_, err = ks.Load("payer", []byte("wrong"))
	if !errors.Is(err, common.ErrorIncorrectPassphrase) {
		t.Fatalf("expected ErrorIncorrectPassphrase, got %v", err)
	}
}

func TestSave_RefusesOverwrite(t *testing.T) {
	ks := testKeystore(t)

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("keygen error: %v", err)
	}
	if err := ks.Save("payer", key, []byte("pw")); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	err = ks.Save("payer", key, []byte("pw"))
	if !errors.Is(err, ErrKeyExists) {
		t.Fatalf("expected ErrKeyExists, got %v", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	ks := testKeystore(t)

	_, err := ks.Load("ghost", []byte("pw"))
	if !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestLoad_TruncatedFile(t *testing.T) {
	ks := testKeystore(t)

	if err := os.WriteFile(ks.Path("stub"), make([]byte, saltSize+nonceSize), 0o600); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	_, err := ks.Load("stub", []byte("pw"))
	if err == nil {
		t.Fatal("expected error for truncated file, got nil")
	}
}

func TestList(t *testing.T) {
	ks := testKeystore(t)

	for _, name := range []string{"zoe", "alice", "bob"} {
		key, err := solana.NewRandomPrivateKey()
		if err != nil {
			t.Fatalf("keygen error: %v", err)
		}
		if err := ks.Save(name, key, []byte("pw")); err != nil {
			t.Fatalf("Save %s error: %v", name, err)
		}
	}
	// stray files are not keypairs
	if err := os.WriteFile(filepath.Join(ks.dir, "notes.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("write stray file: %v", err)
	}

	names, err := ks.List()
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	want := []string{"alice", "bob", "zoe"}
	if len(names) != len(want) {
		t.Fatalf("List returned %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("List returned %v, want %v", names, want)
		}
	}
}

func TestBadNames(t *testing.T) {
	ks := testKeystore(t)

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("keygen error: %v", err)
	}

	for _, name := range []string{"", "a/b", `a\b`, "../escape"} {
		if err := ks.Save(name, key, []byte("pw")); err == nil {
			t.Errorf("Save(%q) accepted a bad name", name)
		}
		if _, err := ks.Load(name, []byte("pw")); err == nil {
			t.Errorf("Load(%q) accepted a bad name", name)
		}
	}
}
