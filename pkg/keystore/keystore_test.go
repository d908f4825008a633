package keystore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Ubaid-developer/keta-chain/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAndLoadKey(t *testing.T) {
	ks := NewKeyStore(t.TempDir())

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.AddressFromKey(key)

	path, err := ks.StoreKey(key, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, ks.KeyFilePath(address), path)

	loaded, err := ks.LoadKey(path, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, crypto.KeyToHex(key), crypto.KeyToHex(loaded))
	assert.Equal(t, address, crypto.AddressFromKey(loaded))
}

func TestLoadKeyWrongPassword(t *testing.T) {
	ks := NewKeyStore(t.TempDir())

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	path, err := ks.StoreKey(key, "correct")
	require.NoError(t, err)

	_, err = ks.LoadKey(path, "incorrect")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestLoadKeyTamperedCiphertext(t *testing.T) {
	ks := NewKeyStore(t.TempDir())

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	path, err := ks.StoreKey(key, "correct")
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	// Flip the first hex digit of the ciphertext field
	marker := `"ciphertext": "`
	i := strings.Index(string(raw), marker)
	require.GreaterOrEqual(t, i, 0)
	pos := i + len(marker)
	if raw[pos] == '0' {
		raw[pos] = '1'
	} else {
		raw[pos] = '0'
	}
	require.NoError(t, os.WriteFile(path, raw, 0600))

	_, err = ks.LoadKey(path, "correct")
	assert.Error(t, err)
}

func TestLoadKeyMissingFile(t *testing.T) {
	ks := NewKeyStore(t.TempDir())
	_, err := ks.LoadKey(filepath.Join(t.TempDir(), "nope.json"), "pw")
	assert.Error(t, err)
}

func TestKeyFilePermissions(t *testing.T) {
	ks := NewKeyStore(t.TempDir())

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	path, err := ks.StoreKey(key, "pw")
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
