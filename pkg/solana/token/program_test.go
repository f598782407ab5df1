package token

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/solana-http-server/pkg/solana"
	"github.com/code-payments/solana-http-server/pkg/solana/system"
	"github.com/code-payments/solana-http-server/pkg/testutil"
)

func TestProgramKey(t *testing.T) {
	assert.Equal(t, "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA", base58.Encode(ProgramKey))
}

func TestInitializeMint(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)
	mint, authority := keys[0], keys[1]

	instruction := InitializeMint(mint, authority, authority, 9)
	assert.EqualValues(t, ProgramKey, instruction.Program)

	require.Len(t, instruction.Data, 67)
	assert.EqualValues(t, CommandInitializeMint, instruction.Data[0])
	assert.EqualValues(t, 9, instruction.Data[1])
	assert.EqualValues(t, authority, instruction.Data[2:34])
	assert.EqualValues(t, 1, instruction.Data[34])
	assert.EqualValues(t, authority, instruction.Data[35:67])

	require.Len(t, instruction.Accounts, 2)
	assert.Equal(t, solana.NewAccountMeta(mint, false), instruction.Accounts[0])
	assert.Equal(t, solana.NewReadonlyAccountMeta(system.RentSysVar, false), instruction.Accounts[1])

	command, err := GetCommand(instruction)
	require.NoError(t, err)
	assert.Equal(t, CommandInitializeMint, command)

	decompiled, err := DecompileInitializeMint(instruction)
	require.NoError(t, err)
	assert.Equal(t, mint, decompiled.Mint)
	assert.EqualValues(t, authority, decompiled.MintAuthority)
	assert.EqualValues(t, authority, decompiled.FreezeAuthority)
	assert.EqualValues(t, 9, decompiled.Decimals)
}

func TestInitializeMint_NoFreezeAuthority(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 2)

	instruction := InitializeMint(keys[0], keys[1], nil, 0)
	require.Len(t, instruction.Data, 35)
	assert.EqualValues(t, 0, instruction.Data[34])

	decompiled, err := DecompileInitializeMint(instruction)
	require.NoError(t, err)
	assert.Nil(t, decompiled.FreezeAuthority)
	assert.EqualValues(t, 0, decompiled.Decimals)

	instruction.Data[34] = 2
	_, err = DecompileInitializeMint(instruction)
	assert.Error(t, err)

	instruction.Data[34] = 1
	_, err = DecompileInitializeMint(instruction)
	assert.Error(t, err)
}

func TestMintTo(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 3)

	instruction := MintTo(keys[0], keys[1], keys[2], 123456789)

	expectedAmount := make([]byte, 8)
	binary.LittleEndian.PutUint64(expectedAmount, 123456789)

	require.Len(t, instruction.Data, 9)
	assert.EqualValues(t, 7, instruction.Data[0])
	assert.Equal(t, expectedAmount, instruction.Data[1:])

	require.Len(t, instruction.Accounts, 3)
	assert.Equal(t, solana.NewAccountMeta(keys[0], false), instruction.Accounts[0])
	assert.Equal(t, solana.NewAccountMeta(keys[1], false), instruction.Accounts[1])
	assert.Equal(t, solana.NewReadonlyAccountMeta(keys[2], true), instruction.Accounts[2])

	decompiled, err := DecompileMintTo(instruction)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.Mint)
	assert.Equal(t, keys[1], decompiled.Destination)
	assert.Equal(t, keys[2], decompiled.Authority)
	assert.EqualValues(t, 123456789, decompiled.Amount)

	_, err = DecompileTransfer(instruction)
	assert.Equal(t, solana.ErrIncorrectInstruction, err)
}

func TestTransfer(t *testing.T) {
	keys := testutil.GenerateSolanaKeys(t, 4)

	instruction := Transfer(keys[0], keys[1], keys[2], 123456789)

	expectedAmount := make([]byte, 8)
	binary.LittleEndian.PutUint64(expectedAmount, 123456789)

	assert.Equal(t, CommandTransfer, Command(instruction.Data[0]))
	assert.Equal(t, expectedAmount, instruction.Data[1:])

	assert.True(t, instruction.Accounts[0].IsWritable)
	assert.True(t, instruction.Accounts[1].IsWritable)
	assert.False(t, instruction.Accounts[2].IsWritable)
	assert.False(t, instruction.Accounts[0].IsSigner)
	assert.False(t, instruction.Accounts[1].IsSigner)
	assert.True(t, instruction.Accounts[2].IsSigner)

	decompiled, err := DecompileTransfer(instruction)
	require.NoError(t, err)
	assert.Equal(t, keys[0], decompiled.Source)
	assert.Equal(t, keys[1], decompiled.Destination)
	assert.Equal(t, keys[2], decompiled.Owner)
	assert.EqualValues(t, 123456789, decompiled.Amount)

	instruction.Accounts = instruction.Accounts[:2]
	_, err = DecompileTransfer(instruction)
	assert.True(t, strings.HasPrefix(err.Error(), "invalid number of accounts"))

	instruction.Program = keys[3]
	_, err = DecompileTransfer(instruction)
	assert.Equal(t, solana.ErrIncorrectProgram, err)

	_, err = GetCommand(instruction)
	assert.Equal(t, solana.ErrIncorrectProgram, err)
}
