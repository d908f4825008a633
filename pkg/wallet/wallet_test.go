package wallet

import (
	"path/filepath"
	"testing"

	"github.com/Ubaid-developer/keta-chain/pkg/crypto"
	"github.com/Ubaid-developer/keta-chain/pkg/keystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWallet(t *testing.T) (*Wallet, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallet.json")
	w, err := NewWallet(path)
	require.NoError(t, err)
	return w, path
}

func TestCreateAccount(t *testing.T) {
	w, _ := newTestWallet(t)

	account, err := w.CreateAccount("pw")
	require.NoError(t, err)

	require.NoError(t, crypto.ValidateAddress(account.Address))
	assert.NotNil(t, account.PrivateKey)
	assert.FileExists(t, account.KeyFile)

	// First account becomes the default
	def, err := w.GetDefaultAccount()
	require.NoError(t, err)
	assert.Equal(t, account.Address, def.Address)
}

func TestImportAccount(t *testing.T) {
	w, _ := newTestWallet(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexKey := crypto.KeyToHex(key)

	account, err := w.ImportAccount(hexKey, "pw")
	require.NoError(t, err)
	assert.Equal(t, crypto.AddressFromKey(key), account.Address)

	_, err = w.ImportAccount(hexKey, "pw")
	assert.ErrorIs(t, err, ErrAccountExists)

	_, err = w.ImportAccount("not hex", "pw")
	assert.Error(t, err)
}

func TestSetDefaultAccount(t *testing.T) {
	w, _ := newTestWallet(t)

	first, err := w.CreateAccount("pw")
	require.NoError(t, err)
	second, err := w.CreateAccount("pw")
	require.NoError(t, err)

	def, err := w.GetDefaultAccount()
	require.NoError(t, err)
	assert.Equal(t, first.Address, def.Address)

	require.NoError(t, w.SetDefaultAccount(second.Address))
	def, err = w.GetDefaultAccount()
	require.NoError(t, err)
	assert.Equal(t, second.Address, def.Address)

	assert.ErrorIs(t, w.SetDefaultAccount("Kmissing"), ErrAccountNotFound)
}

func TestWalletReloadAndUnlock(t *testing.T) {
	w, path := newTestWallet(t)
	created, err := w.CreateAccount("pw")
	require.NoError(t, err)

	reopened, err := NewWallet(path)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{created.Address}, reopened.ListAccounts())

	// Keys are not held in memory across a reload
	account, err := reopened.GetAccount(created.Address)
	require.NoError(t, err)
	assert.Nil(t, account.PrivateKey)

	_, err = reopened.UnlockAccount(created.Address, "wrong")
	assert.ErrorIs(t, err, keystore.ErrWrongPassword)

	unlocked, err := reopened.UnlockAccount(created.Address, "pw")
	require.NoError(t, err)
	require.NotNil(t, unlocked.PrivateKey)
	assert.Equal(t, created.Address, crypto.AddressFromKey(unlocked.PrivateKey))
}

func TestNewSignedTransaction(t *testing.T) {
	w, _ := newTestWallet(t)
	from, err := w.CreateAccount("pw")
	require.NoError(t, err)
	to, err := w.CreateAccount("pw")
	require.NoError(t, err)

	tx, err := w.NewSignedTransaction(from, to.Address, 3.25, "memo")
	require.NoError(t, err)
	assert.Equal(t, from.Address, tx.From)
	assert.Equal(t, 3.25, tx.Amount)
	assert.NotEmpty(t, tx.Signature)
	assert.NoError(t, tx.IsValid())

	locked := &Account{Address: from.Address}
	_, err = w.NewSignedTransaction(locked, to.Address, 1, "")
	assert.Error(t, err)
}

func TestGetAccountMissing(t *testing.T) {
	w, _ := newTestWallet(t)
	_, err := w.GetAccount("Kmissing")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	_, err = w.GetDefaultAccount()
	assert.Error(t, err)
}
