package keeta

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccountIsDeterministic(t *testing.T) {
	a := NewClient("test", "seed-1").GenerateAccount("alice")
	b := NewClient("test", "seed-1").GenerateAccount("alice")

	assert.Equal(t, a.Address, b.Address)
	assert.Equal(t, a.PublicKey, b.PublicKey)
	assert.True(t, strings.HasPrefix(a.Address, "keeta_"))
}

func TestGenerateAccountVariesByInputs(t *testing.T) {
	c := NewClient("test", "seed-1")

	alice := c.GenerateAccount("alice")
	bob := c.GenerateAccount("bob")
	assert.NotEqual(t, alice.Address, bob.Address)

	otherSeed := NewClient("test", "seed-2").GenerateAccount("alice")
	assert.NotEqual(t, alice.Address, otherSeed.Address)

	otherNetwork := NewClient("main", "seed-1").GenerateAccount("alice")
	assert.NotEqual(t, alice.Address, otherNetwork.Address)
}

func TestGetAccountInfo(t *testing.T) {
	c := NewClient("test", "seed-1")
	alice := c.GenerateAccount("alice")

	got, err := c.GetAccountInfo(alice.Address)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Alias)

	_, err = c.GetAccountInfo("keeta_deadbeef")
	assert.ErrorIs(t, err, ErrUnknownAccount)
}

func TestListAccounts(t *testing.T) {
	c := NewClient("test", "seed-1")
	assert.Empty(t, c.ListAccounts())

	c.GenerateAccount("alice")
	c.GenerateAccount("bob")
	assert.Len(t, c.ListAccounts(), 2)
}

func TestGetBalanceIsStable(t *testing.T) {
	c := NewClient("test", "seed-1")
	alice := c.GenerateAccount("alice")

	first := c.GetBalance(alice.Address)
	assert.Equal(t, first, c.GetBalance(alice.Address))
	assert.GreaterOrEqual(t, first, 0.0)
}

func TestSubmitTransaction(t *testing.T) {
	c := NewClient("test", "seed-1")
	alice := c.GenerateAccount("alice")
	bob := c.GenerateAccount("bob")

	first, err := c.SubmitTransaction(alice.Address, bob.Address, 5)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.ID, "keeta_tx_"))
	assert.Equal(t, "confirmed", first.Status)
	assert.Equal(t, 5.0, first.Amount)

	// Identical submissions still get distinct receipt IDs
	second, err := c.SubmitTransaction(alice.Address, bob.Address, 5)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = c.SubmitTransaction(alice.Address, bob.Address, 0)
	assert.Error(t, err)
}
