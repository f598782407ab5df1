package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommitment(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected Commitment
	}{
		{"processed", CommitmentProcessed},
		{"confirmed", CommitmentConfirmed},
		{"finalized", CommitmentFinalized},
		{" Finalized ", CommitmentFinalized},
		{"", CommitmentConfirmed},
		{"max", CommitmentConfirmed},
		{"recent", CommitmentConfirmed},
	} {
		assert.Equal(t, tc.expected, ParseCommitment(tc.in), tc.in)
	}

	assert.Equal(t, "finalized", CommitmentFinalized.String())
}
