package keypair

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"io"

	"github.com/mr-tron/base58"
	"github.com/pkg/errors"
)

var (
	ErrInvalidSize       = errors.New("keypair must be 64 bytes")
	ErrInconsistentKey   = errors.New("public key does not match secret")
	ErrInvalidSeedLength = errors.New("seed must be 32 bytes")
)

// KeyPair is an ed25519 signing key. Private holds the 32 byte seed followed
// by the public key, matching the layout Solana wallets export.
type KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// Generator creates key pairs from an entropy source.
type Generator struct {
	rand io.Reader
}

// NewGenerator returns a Generator reading from r. A nil reader uses
// crypto/rand.
func NewGenerator(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{rand: r}
}

func (g *Generator) Generate() (*KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(g.rand)
	if err != nil {
		return nil, errors.Wrap(err, "error generating keypair")
	}

	return &KeyPair{
		Public:  pub,
		Private: priv,
	}, nil
}

func FromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, ErrInvalidSeedLength
	}

	priv := ed25519.NewKeyFromSeed(seed)
	return &KeyPair{
		Public:  priv.Public().(ed25519.PublicKey),
		Private: priv,
	}, nil
}

// FromBytes parses a 64 byte secret. The embedded public key must be the one
// derived from the seed.
func FromBytes(b []byte) (*KeyPair, error) {
	if len(b) != ed25519.PrivateKeySize {
		return nil, ErrInvalidSize
	}

	kp, err := FromSeed(b[:ed25519.SeedSize])
	if err != nil {
		return nil, err
	}

	if !bytes.Equal(kp.Public, b[ed25519.SeedSize:]) {
		return nil, ErrInconsistentKey
	}
	return kp, nil
}

// Sign returns the deterministic ed25519 signature of message.
func (k *KeyPair) Sign(message []byte) []byte {
	return ed25519.Sign(k.Private, message)
}

func (k *KeyPair) PublicKeyBase58() string {
	return base58.Encode(k.Public)
}

func (k *KeyPair) SecretBase58() string {
	return base58.Encode(k.Private)
}

// Verify reports whether signature is a valid signature of message by public.
// Wrongly sized inputs are reported as invalid rather than as an error.
func Verify(message, signature []byte, public ed25519.PublicKey) bool {
	if len(public) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(public, message, signature)
}
