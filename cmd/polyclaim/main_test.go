package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyoungcy/polyclaim/internal/config"
	"github.com/alanyoungcy/polyclaim/internal/crypto"
)

func TestWriteEncryptedKey(t *testing.T) {
	const keyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

	cfg := config.Defaults()
	cfg.Wallet.PrivateKey = keyHex
	cfg.Wallet.KeyPassword = "hunter2"

	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, writeEncryptedKey(&cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// The written file must decrypt back through the key loader.
	got, err := crypto.LoadKey(crypto.KeyConfig{
		EncryptedKeyPath: path,
		KeyPassword:      "hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, keyHex, got)
}

func TestWriteEncryptedKeyMissingInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.json")

	cfg := config.Defaults()
	cfg.Wallet.KeyPassword = "hunter2"
	require.Error(t, writeEncryptedKey(&cfg, path))

	cfg = config.Defaults()
	cfg.Wallet.PrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	require.Error(t, writeEncryptedKey(&cfg, path))
}
