package signing

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/pkg/errors"

	"github.com/hundredx/go100x/hundredx/types"
)

// Signer produces EIP-712 signatures with one secp256k1 key.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSigner wraps key. A nil key yields types.ErrMissingKey.
func NewSigner(key *ecdsa.PrivateKey) (*Signer, error) {
	if key == nil {
		return nil, types.ErrMissingKey
	}
	return &Signer{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// NewSignerFromHex parses a hex private key, with or without 0x.
func NewSignerFromHex(hexKey string) (*Signer, error) {
	key, err := PrivateKeyFromHex(hexKey)
	if err != nil {
		return nil, err
	}
	return NewSigner(key)
}

func (s *Signer) Address() common.Address { return s.address }

// PrivateKey is exposed for signing chain transactions.
func (s *Signer) PrivateKey() *ecdsa.PrivateKey { return s.key }

// HashTypedData returns keccak256("\x19\x01" || domainSeparator || hashStruct(msg)).
func HashTypedData(d Domain, msg *TypedMessage) (common.Hash, error) {
	if msg == nil {
		return common.Hash{}, types.NewValidationError("message", "is nil")
	}
	digest, _, err := apitypes.TypedDataAndHash(msg.typedData(d))
	if err != nil {
		return common.Hash{}, errors.Wrapf(err, "hash %s", msg.schema.Name)
	}
	return common.BytesToHash(digest), nil
}

// Sign signs msg under domain d. The recovery byte is 27 or 28.
// Signatures are deterministic (RFC 6979).
func (s *Signer) Sign(d Domain, msg *TypedMessage) (*SignedMessage, error) {
	if s == nil || s.key == nil {
		return nil, types.ErrMissingKey
	}
	digest, err := HashTypedData(d, msg)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(digest.Bytes(), s.key)
	if err != nil {
		return nil, errors.Wrapf(err, "sign %s", msg.schema.Name)
	}
	sig[64] += 27
	return &SignedMessage{Message: msg, Signature: hexutil.Encode(sig)}, nil
}

// Recover returns the address that produced signature over msg under domain d.
func Recover(d Domain, msg *TypedMessage, signature string) (common.Address, error) {
	digest, err := HashTypedData(d, msg)
	if err != nil {
		return common.Address{}, err
	}
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return common.Address{}, types.WrapValidation(err, "signature", "not 0x-prefixed hex")
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, types.NewValidationError("signature", "want %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	if sig[64] >= 27 {
		sig[64] -= 27
	}
	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return common.Address{}, errors.Wrap(err, "recover signer")
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify reports whether signature over msg was produced by want.
func Verify(d Domain, msg *TypedMessage, signature string, want common.Address) bool {
	got, err := Recover(d, msg, signature)
	return err == nil && got == want
}
