package core

import (
	"crypto/ecdsa"
	"testing"

	"github.com/Ubaid-developer/keta-chain/pkg/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAccount(t *testing.T) (*ecdsa.PrivateKey, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key, crypto.AddressFromKey(key)
}

func TestNewTransaction(t *testing.T) {
	_, from := newTestAccount(t)
	_, to := newTestAccount(t)

	t.Run("valid", func(t *testing.T) {
		tx, err := NewTransaction(from, to, 12.345, "payload")
		require.NoError(t, err)
		assert.NotEmpty(t, tx.ID)
		assert.Equal(t, 12.35, tx.Amount, "amount rounds to two decimals")
		assert.NotZero(t, tx.Timestamp)
		assert.Empty(t, tx.Signature)
	})

	t.Run("unique ids", func(t *testing.T) {
		a, err := NewTransaction(from, to, 1, "")
		require.NoError(t, err)
		b, err := NewTransaction(from, to, 1, "")
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("bad to address", func(t *testing.T) {
		_, err := NewTransaction(from, "Knotavalidaddress", 1, "")
		assert.ErrorIs(t, err, ErrInvalidAddress)
	})

	t.Run("bad from address", func(t *testing.T) {
		_, err := NewTransaction("Knotavalidaddress", to, 1, "")
		assert.ErrorIs(t, err, ErrInvalidAddress)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		_, err := NewTransaction(from, to, 0, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
		_, err = NewTransaction(from, to, -3, "")
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("oversized data", func(t *testing.T) {
		big := make([]byte, MaxDataSize+1)
		_, err := NewTransaction(from, to, 1, string(big))
		assert.ErrorIs(t, err, ErrDataTooLarge)
	})
}

func TestTransactionSign(t *testing.T) {
	key, from := newTestAccount(t)
	_, to := newTestAccount(t)

	t.Run("signs with matching key", func(t *testing.T) {
		tx, err := NewTransaction(from, to, 5, "")
		require.NoError(t, err)
		require.NoError(t, tx.Sign(key))
		assert.NotEmpty(t, tx.Signature)
	})

	t.Run("missing key", func(t *testing.T) {
		tx, err := NewTransaction(from, to, 5, "")
		require.NoError(t, err)
		assert.ErrorIs(t, tx.Sign(nil), ErrMissingKey)
	})

	t.Run("key mismatch", func(t *testing.T) {
		otherKey, _ := newTestAccount(t)
		tx, err := NewTransaction(from, to, 5, "")
		require.NoError(t, err)
		assert.ErrorIs(t, tx.Sign(otherKey), ErrKeyMismatch)
	})
}

func TestTransactionIsValid(t *testing.T) {
	key, from := newTestAccount(t)
	_, to := newTestAccount(t)

	t.Run("mint is always valid", func(t *testing.T) {
		tx := NewRewardTransaction("Kaddr1", 10)
		assert.NoError(t, tx.IsValid())
		assert.Empty(t, tx.Signature)
	})

	t.Run("unsigned transfer is invalid", func(t *testing.T) {
		tx, err := NewTransaction(from, to, 5, "")
		require.NoError(t, err)
		assert.ErrorIs(t, tx.IsValid(), ErrUnsigned)
	})

	t.Run("signed transfer is valid", func(t *testing.T) {
		tx, err := NewTransaction(from, to, 5, "")
		require.NoError(t, err)
		require.NoError(t, tx.Sign(key))
		assert.NoError(t, tx.IsValid())
	})

	t.Run("any non-empty signature passes", func(t *testing.T) {
		// The validity check is structural: it does not re-verify the
		// signature against the sender's key.
		tx, err := NewTransaction(from, to, 5, "")
		require.NoError(t, err)
		tx.Signature = "deadbeef"
		assert.NoError(t, tx.IsValid())
	})
}

func TestRewardTransactionRounding(t *testing.T) {
	tx := NewRewardTransaction("Kaddr1", 3.14159)
	assert.Equal(t, 3.14, tx.Amount)
	assert.Empty(t, tx.From)
}
