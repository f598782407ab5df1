package token

import (
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/solana-http-server/pkg/solana"
	"github.com/code-payments/solana-http-server/pkg/solana/system"
	"github.com/code-payments/solana-http-server/pkg/testutil"
)

func TestGetAssociatedAccount(t *testing.T) {
	// Values taken from the spl documentation.
	wallet, err := base58.Decode("4uQeVj5tqViQh7yWWGStvkEG1Zmhx6uasJtWCJziofM")
	require.NoError(t, err)
	mint, err := base58.Decode("8opHzTAnfzRpPEx21XtnrVTX28YQuCpAjcn1PczScKh")
	require.NoError(t, err)

	addr, err := GetAssociatedAccount(wallet, mint)
	require.NoError(t, err)
	assert.Equal(t, "H7MQwEzt97tUJryocn3qaEoy2ymWstwyEk1i9Yv3EmuZ", base58.Encode(addr))

	again, err := GetAssociatedAccountForProgram(wallet, mint, ProgramKey)
	require.NoError(t, err)
	assert.Equal(t, addr, again)

	assert.Equal(t, "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL", base58.Encode(AssociatedTokenAccountProgramKey))
}

func TestCreateAssociatedAccount(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	expectedAddr, err := GetAssociatedAccount(keys[1], keys[2])
	require.NoError(t, err)

	instruction, addr, err := CreateAssociatedTokenAccount(keys[0], keys[1], keys[2])
	require.NoError(t, err)
	assert.Equal(t, expectedAddr, addr)
	assert.Equal(t, []byte{0}, instruction.Data)

	require.Len(t, instruction.Accounts, 7)
	assert.True(t, instruction.Accounts[0].IsSigner)
	assert.True(t, instruction.Accounts[0].IsWritable)
	for i := 1; i < len(instruction.Accounts); i++ {
		assert.False(t, instruction.Accounts[i].IsSigner)
	}
	assert.True(t, instruction.Accounts[1].IsWritable)
	for i := 2; i < len(instruction.Accounts); i++ {
		assert.False(t, instruction.Accounts[i].IsWritable)
	}

	decompiled, err := DecompileCreateAssociatedAccount(instruction)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.Subsidizer)
	assert.Equal(t, expectedAddr, decompiled.Address)
	assert.Equal(t, keys[1], decompiled.Owner)
	assert.Equal(t, keys[2], decompiled.Mint)
	assert.False(t, decompiled.Idempotent)

	instruction.Accounts[6].PublicKey = keys[0]
	_, err = DecompileCreateAssociatedAccount(instruction)
	assert.EqualError(t, err, "rent sysvar mismatch")
}

func TestCreateAssociatedAccountIdempotent(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	instruction, addr, err := CreateAssociatedTokenAccountIdempotent(keys[0], keys[1], keys[2])
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, instruction.Data)
	assert.EqualValues(t, AssociatedTokenAccountProgramKey, instruction.Program)
	assert.EqualValues(t, system.ProgramKey[:], instruction.Accounts[4].PublicKey)
	assert.EqualValues(t, ProgramKey, instruction.Accounts[5].PublicKey)

	decompiled, err := DecompileCreateAssociatedAccount(instruction)
	require.NoError(t, err)
	assert.Equal(t, addr, decompiled.Address)
	assert.True(t, decompiled.Idempotent)

	instruction.Data = []byte{2}
	_, err = DecompileCreateAssociatedAccount(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)

	instruction.Program = ProgramKey
	_, err = DecompileCreateAssociatedAccount(instruction)
	assert.Equal(t, solana.ErrIncorrectProgram, err)
}
