package signing

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
	"github.com/pkg/errors"

	"github.com/hundredx/go100x/hundredx/types"
)

// DefaultDerivationPath is the first account of the standard Ethereum BIP-44 path.
const DefaultDerivationPath = "m/44'/60'/0'/0/0"

// PrivateKeyFromHex parses a 32-byte hex key. The 0x prefix is optional.
func PrivateKeyFromHex(hexKey string) (*ecdsa.PrivateKey, error) {
	hexKey = strings.TrimSpace(hexKey)
	if hexKey == "" {
		return nil, types.ErrMissingKey
	}
	hexKey = strings.TrimPrefix(strings.TrimPrefix(hexKey, "0x"), "0X")
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, errors.Wrap(err, "parse private key")
	}
	return key, nil
}

// PrivateKeyFromMnemonic derives the key at path from a BIP-39 mnemonic.
// An empty path means DefaultDerivationPath.
func PrivateKeyFromMnemonic(mnemonic, path string) (*ecdsa.PrivateKey, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	if mnemonic == "" {
		return nil, types.ErrMissingKey
	}
	if path == "" {
		path = DefaultDerivationPath
	}
	w, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		return nil, errors.Wrap(err, "invalid mnemonic")
	}
	dp, err := hdwallet.ParseDerivationPath(path)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid derivation path %q", path)
	}
	acct, err := w.Derive(dp, false)
	if err != nil {
		return nil, errors.Wrap(err, "derive account")
	}
	key, err := w.PrivateKey(acct)
	if err != nil {
		return nil, errors.Wrap(err, "export private key")
	}
	return key, nil
}
