// Package codec converts externally supplied text into keys and signatures,
// reporting failures against the request field they came from.
package codec

import (
	"crypto/ed25519"
	"encoding/base64"

	"github.com/mr-tron/base58"

	"github.com/code-payments/solana-http-server/pkg/apierror"
	"github.com/code-payments/solana-http-server/pkg/keypair"
	"github.com/code-payments/solana-http-server/pkg/solana/token"
)

const (
	maxAddressLength   = 44
	maxSignatureLength = 88
)

// DecodeAddress parses a base58 encoded 32 byte address.
func DecodeAddress(field, text string) (ed25519.PublicKey, error) {
	if len(text) > maxAddressLength {
		return nil, apierror.InvalidInput(field, "invalid public key: string too long")
	}

	decoded, err := base58.Decode(text)
	if err != nil {
		return nil, apierror.InvalidInput(field, "invalid public key: invalid base58 string")
	}
	if len(decoded) != ed25519.PublicKeySize {
		return nil, apierror.InvalidInput(field, "invalid public key: expected %d bytes, got %d", ed25519.PublicKeySize, len(decoded))
	}

	return decoded, nil
}

// DecodeSignature parses a base58 encoded 64 byte signature.
func DecodeSignature(field, text string) ([]byte, error) {
	if len(text) > maxSignatureLength {
		return nil, apierror.InvalidInput(field, "invalid signature: string too long")
	}

	decoded, err := base58.Decode(text)
	if err != nil {
		return nil, apierror.InvalidInput(field, "invalid signature: invalid base58 string")
	}
	if len(decoded) != ed25519.SignatureSize {
		return nil, apierror.InvalidInput(field, "invalid signature: expected %d bytes, got %d", ed25519.SignatureSize, len(decoded))
	}

	return decoded, nil
}

// DecodePrivateKey parses a base58 encoded 64 byte secret into a key pair.
func DecodePrivateKey(field, text string) (*keypair.KeyPair, error) {
	decoded, err := base58.Decode(text)
	if err != nil {
		return nil, apierror.Keypair(field, err, "invalid base58 private key")
	}

	kp, err := keypair.FromBytes(decoded)
	if err != nil {
		return nil, apierror.Keypair(field, err, "invalid keypair bytes: %s", err.Error())
	}
	return kp, nil
}

func EncodeAddress(address ed25519.PublicKey) string {
	return base58.Encode(address)
}

// EncodeSignature renders a signature the way responses carry it, as base64.
func EncodeSignature(signature []byte) string {
	return base64.StdEncoding.EncodeToString(signature)
}

// DeriveAssociatedAccount returns the associated token account of owner for
// mint under tokenProgram.
func DeriveAssociatedAccount(owner, mint, tokenProgram ed25519.PublicKey) (ed25519.PublicKey, error) {
	addr, err := token.GetAssociatedAccountForProgram(owner, mint, tokenProgram)
	if err != nil {
		return nil, apierror.Transaction(err, "failed to derive associated token account: %s", err.Error())
	}
	return addr, nil
}
