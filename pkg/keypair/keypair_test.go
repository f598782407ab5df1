package keypair

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_SignVerify(t *testing.T) {
	g := NewGenerator(nil)

	for i := 0; i < 16; i++ {
		kp, err := g.Generate()
		require.NoError(t, err)
		require.Len(t, kp.Public, ed25519.PublicKeySize)
		require.Len(t, kp.Private, ed25519.PrivateKeySize)

		for _, message := range [][]byte{nil, []byte("hello"), bytes.Repeat([]byte{0xff}, 1024)} {
			sig := kp.Sign(message)
			require.Len(t, sig, ed25519.SignatureSize)
			assert.True(t, Verify(message, sig, kp.Public))

			assert.Equal(t, sig, kp.Sign(message))
		}
	}
}

func TestGenerate_DeterministicSource(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, ed25519.SeedSize)

	a, err := NewGenerator(bytes.NewReader(seed)).Generate()
	require.NoError(t, err)
	b, err := NewGenerator(bytes.NewReader(seed)).Generate()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	fromSeed, err := FromSeed(seed)
	require.NoError(t, err)
	assert.Equal(t, a, fromSeed)

	_, err = NewGenerator(bytes.NewReader(seed[:4])).Generate()
	assert.Error(t, err)
}

func TestSign_Rfc8032Vector(t *testing.T) {
	// RFC 8032 section 7.1, test 2.
	seed, _ := hex.DecodeString("4ccd089b28ff96da9db6c346ec114e0f5b8a319f35aba624da8cf6ed4fb8a6fb")
	expectedPublic, _ := hex.DecodeString("3d4017c3e843895a92b70aa74d1b7ebc9c982ccf2ec4968cc0cd55f12af4660c")
	expectedSig, _ := hex.DecodeString("92a009a9f0d4cab8720e820b5f642540a2b27b5416503f8fb3762223ebdb69da085ac1e43e15996e458f3613d0f11d8c387b2eaeb4302aeeb00d291612bb0c00")

	kp, err := FromSeed(seed)
	require.NoError(t, err)
	assert.EqualValues(t, expectedPublic, kp.Public)
	assert.Equal(t, expectedSig, kp.Sign([]byte{0x72}))
	assert.True(t, Verify([]byte{0x72}, expectedSig, kp.Public))
}

func TestVerify_Mismatch(t *testing.T) {
	g := NewGenerator(nil)
	signer, err := g.Generate()
	require.NoError(t, err)
	other, err := g.Generate()
	require.NoError(t, err)

	message := []byte("hello")
	sig := signer.Sign(message)

	assert.False(t, Verify(message, sig, other.Public))
	assert.False(t, Verify([]byte("hellO"), sig, signer.Public))

	tampered := append([]byte{}, sig...)
	tampered[0] ^= 0x01
	assert.False(t, Verify(message, tampered, signer.Public))

	// A key pair whose secret differs but whose public key is correct
	// produces signatures that don't verify.
	forged := &KeyPair{Public: signer.Public, Private: append(append([]byte{}, other.Private[:32]...), signer.Public...)}
	assert.False(t, Verify(message, forged.Sign(message), signer.Public))

	assert.False(t, Verify(message, sig[:10], signer.Public))
	assert.False(t, Verify(message, sig, signer.Public[:10]))
	assert.False(t, Verify(message, nil, nil))
}

func TestFromBytes(t *testing.T) {
	kp, err := NewGenerator(nil).Generate()
	require.NoError(t, err)

	parsed, err := FromBytes(kp.Private)
	require.NoError(t, err)
	assert.Equal(t, kp, parsed)

	decoded, err := base58.Decode(kp.SecretBase58())
	require.NoError(t, err)
	assert.EqualValues(t, kp.Private, decoded)

	decoded, err = base58.Decode(kp.PublicKeyBase58())
	require.NoError(t, err)
	assert.EqualValues(t, kp.Public, decoded)

	_, err = FromBytes(kp.Private[:32])
	assert.Equal(t, ErrInvalidSize, err)

	inconsistent := append([]byte{}, kp.Private...)
	inconsistent[63] ^= 0xff
	_, err = FromBytes(inconsistent)
	assert.Equal(t, ErrInconsistentKey, err)

	_, err = FromSeed(kp.Private[:31])
	assert.Equal(t, ErrInvalidSeedLength, err)
}
