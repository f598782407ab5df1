package apierror

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Messages(t *testing.T) {
	for _, tc := range []struct {
		err      *Error
		expected string
		public   string
	}{
		{
			err:      InvalidInput("mint", "invalid public key: %s", "wrong size"),
			expected: "Invalid input: mint: invalid public key: wrong size",
		},
		{
			err:      Keypair("secret", errors.New("bad"), "invalid keypair bytes"),
			expected: "Keypair error: secret: invalid keypair bytes",
		},
		{
			err:      Remote(errors.New("account not found")),
			expected: "Solana RPC error: account not found",
		},
		{
			err:      Transaction(nil, "instruction too large"),
			expected: "Transaction failed: instruction too large",
		},
		{
			err:      MalformedBody(errors.New("unexpected EOF")),
			expected: "JSON error: unexpected EOF",
		},
		{
			err:      MissingField("amount"),
			expected: "JSON error: missing field `amount`",
		},
		{
			err:      Internal(errors.New("nil pointer in handler")),
			expected: "Internal server error: nil pointer in handler",
			public:   "Internal server error",
		},
	} {
		assert.Equal(t, tc.expected, tc.err.Error())

		public := tc.public
		if public == "" {
			public = tc.expected
		}
		assert.Equal(t, public, tc.err.Public())
	}
}

func TestFrom(t *testing.T) {
	assert.Nil(t, From(nil))

	original := InvalidInput("to", "invalid public key")
	wrapped := errors.Wrap(original, "building transfer")

	classified := From(wrapped)
	require.NotNil(t, classified)
	assert.Equal(t, original, classified)
	assert.Equal(t, KindInvalidInput, KindOf(wrapped))

	unknown := errors.New("boom")
	assert.Equal(t, KindInternal, KindOf(unknown))
	assert.True(t, errors.Is(From(unknown), unknown))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "remote", KindRemote.String())
	assert.Equal(t, "malformed_body", KindMalformedBody.String())
	assert.Equal(t, "internal", Kind(200).String())
}
