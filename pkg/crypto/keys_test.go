package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressDerivation(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	address := AddressFromKey(key)
	assert.Len(t, address, AddressLength)
	assert.True(t, strings.HasPrefix(address, AddressPrefix))
	assert.NoError(t, ValidateAddress(address))

	// Same key, same address
	assert.Equal(t, address, AddressFromPubKey(&key.PublicKey))
}

func TestValidateAddressRejectsCorruption(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	address := AddressFromKey(key)

	t.Run("flipped checksum", func(t *testing.T) {
		corrupted := []byte(address)
		last := corrupted[len(corrupted)-1]
		if last == '0' {
			corrupted[len(corrupted)-1] = '1'
		} else {
			corrupted[len(corrupted)-1] = '0'
		}
		assert.Error(t, ValidateAddress(string(corrupted)))
	})

	t.Run("wrong length", func(t *testing.T) {
		assert.Error(t, ValidateAddress(address[:AddressLength-1]))
		assert.Error(t, ValidateAddress(address+"00"))
	})

	t.Run("missing prefix", func(t *testing.T) {
		assert.Error(t, ValidateAddress("X"+address[1:]))
	})

	t.Run("not hex", func(t *testing.T) {
		assert.Error(t, ValidateAddress(address[:1]+"zz"+address[3:]))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Error(t, ValidateAddress(""))
	})
}

func TestKeyHexRoundTrip(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	restored, err := KeyFromHex(KeyToHex(key))
	require.NoError(t, err)
	assert.Equal(t, AddressFromKey(key), AddressFromKey(restored))
}

func TestSignProducesHexSignature(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	digest := Hash([]byte("message"))
	sig, err := Sign(key, digest)
	require.NoError(t, err)
	assert.NotEmpty(t, sig)

	// 65-byte recoverable signature, hex encoded
	assert.Len(t, sig, 130)
}

func TestHexHashDeterministic(t *testing.T) {
	a := HexHash([]byte("one"), []byte("two"))
	b := HexHash([]byte("one"), []byte("two"))
	c := HexHash([]byte("onetwo"))

	assert.Equal(t, a, b)
	assert.Equal(t, a, c, "hashing is over concatenated input")
	assert.Len(t, a, 64)
}
