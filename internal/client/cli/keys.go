package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"

	"github.com/TanmayDhobale/splvault/internal/common"
)

// loadSigner prompts for the passphrase and unseals the named key.
func (a *App) loadSigner(name string) (solana.PrivateKey, error) {
	pass, err := GetPassword(fmt.Sprintf("Passphrase for %s: ", name), os.Stdout)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(pass)

	return a.keys.Load(name, pass)
}

// Keygen creates a fresh ed25519 signing key and seals it into the keystore.
// The name is taken from the first argument or prompted for.
func (a *App) Keygen(ctx context.Context, args []string) error {
	name := ""
	if len(args) > 0 {
		name = args[0]
	} else {
		n, err := GetSimpleText(a.reader, "Key name?", os.Stdout)
		if err != nil {
			return err
		}
		name = n
	}

	pass, err := GetPassword("Enter passphrase: ", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pass)

	confirm, err := GetPassword("Confirm passphrase: ", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(pass, confirm) {
		return errors.New("passphrases do not match")
	}

	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	if err := a.keys.Save(name, key, pass); err != nil {
		return err
	}

	fmt.Printf("created key %s with address %s\n", name, key.PublicKey())
	return nil
}

// Keys lists the keystore entries.
func (a *App) Keys(ctx context.Context, _ []string) error {
	names, err := a.keys.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("keystore is empty")
		return nil
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

// Pubkey unseals the named key and prints its address.
func (a *App) Pubkey(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: pubkey <key-name>")
	}

	key, err := a.loadSigner(args[0])
	if err != nil {
		return err
	}
	defer common.WipeByteArray(key)

	fmt.Println(key.PublicKey().String())
	return nil
}
