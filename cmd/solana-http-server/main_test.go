package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeygenCommand(t *testing.T) {
	var out bytes.Buffer

	root := newRootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"keygen"})
	require.NoError(t, root.Execute())

	var generated map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &generated))

	pub, err := base58.Decode(generated["pubkey"])
	require.NoError(t, err)
	assert.Len(t, pub, 32)

	secret, err := base58.Decode(generated["secret"])
	require.NoError(t, err)
	require.Len(t, secret, 64)
	assert.Equal(t, pub, secret[32:])
}

func TestServeCommand_RejectsArgs(t *testing.T) {
	root := newRootCommand()
	root.SetArgs([]string{"serve", "extra"})
	assert.Error(t, root.Execute())
}
