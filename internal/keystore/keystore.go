// Package keystore keeps ed25519 keypairs on disk, each sealed with a
// passphrase. A key file is salt || nonce || ciphertext where the cipher key
// is derived from the passphrase with argon2id and the private key bytes are
// sealed with AES-GCM.
package keystore

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/crypto/argon2"

	"github.com/TanmayDhobale/splvault/internal/common"
	"github.com/TanmayDhobale/splvault/internal/filex"
)

const (
	saltSize  = 16
	nonceSize = 12
	keyExt    = ".key"
)

var (
	// ErrKeyExists is returned when saving under a name that is taken.
	ErrKeyExists = errors.New("keypair already exists")

	// ErrKeyNotFound is returned when loading a name with no key file.
	ErrKeyNotFound = errors.New("keypair not found")
)

// DeriveKey stretches a passphrase into a 32-byte AES key.
func DeriveKey(passphrase, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// Keystore is a directory of sealed key files.
type Keystore struct {
	dir string
}

// Open ensures dir exists and returns a keystore over it.
func Open(dir string) (*Keystore, error) {
	path, err := filex.EnsureDir(dir)
	if err != nil {
		return nil, err
	}
	return &Keystore{dir: path}, nil
}

// Path returns the file a named keypair lives in.
func (k *Keystore) Path(name string) string {
	return filepath.Join(k.dir, name+keyExt)
}

// Save seals key under name. An existing file is never overwritten.
func (k *Keystore) Save(name string, key solana.PrivateKey, passphrase []byte) error {
	if err := validateName(name); err != nil {
		return err
	}
	if _, err := os.Stat(k.Path(name)); err == nil {
		return fmt.Errorf("keypair %s: %w", name, ErrKeyExists)
	}

	salt := common.GenerateRandByteArray(saltSize)
	nonce := common.GenerateRandByteArray(nonceSize)

	derived := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(derived)

	aead, err := newAEAD(derived)
	if err != nil {
		return err
	}
	sealed := aead.Seal(nil, nonce, key, nil)

	blob := make([]byte, 0, saltSize+nonceSize+len(sealed))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)

	if err := filex.WriteFileAtomic(k.Path(name), blob, 0o600); err != nil {
		return fmt.Errorf("write keypair %s: %w", name, err)
	}
	return nil
}

// Load unseals the named keypair. A wrong passphrase surfaces as
// common.ErrorIncorrectPassphrase.
func (k *Keystore) Load(name string, passphrase []byte) (solana.PrivateKey, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	blob, err := os.ReadFile(k.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("keypair %s: %w", name, ErrKeyNotFound)
	}
	if err != nil {
		return nil, err
	}
	if len(blob) <= saltSize+nonceSize {
		return nil, fmt.Errorf("keypair %s: file truncated", name)
	}

	salt := blob[:saltSize]
	nonce := blob[saltSize : saltSize+nonceSize]
	sealed := blob[saltSize+nonceSize:]

	derived := DeriveKey(passphrase, salt)
	defer common.WipeByteArray(derived)

	aead, err := newAEAD(derived)
	if err != nil {
		return nil, err
	}
	raw, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, common.ErrorIncorrectPassphrase
	}
	if len(raw) != ed25519PrivateKeySize {
		return nil, fmt.Errorf("keypair %s: %d raw bytes", name, len(raw))
	}
	return solana.PrivateKey(raw), nil
}

// List names every stored keypair, sorted.
func (k *Keystore) List() ([]string, error) {
	entries, err := os.ReadDir(k.dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), keyExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), keyExt))
	}
	sort.Strings(names)
	return names, nil
}

const ed25519PrivateKeySize = 64

func newAEAD(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func validateName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("bad keypair name %q", name)
	}
	return nil
}
