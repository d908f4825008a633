// Package wallet manages a set of named accounts backed by the encrypted
// keystore, and builds signed transactions for submission to a node.
package wallet

import (
	"crypto/ecdsa"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Ubaid-developer/keta-chain/pkg/core"
	"github.com/Ubaid-developer/keta-chain/pkg/crypto"
	"github.com/Ubaid-developer/keta-chain/pkg/keystore"
	"github.com/pkg/errors"
)

// ErrAccountNotFound is returned when an address is not in the wallet
var ErrAccountNotFound = errors.New("account not found")

// ErrAccountExists is returned when importing an address already present
var ErrAccountExists = errors.New("account already exists in wallet")

// Account is one keypair tracked by the wallet. The private key is only
// populated after the account is unlocked.
type Account struct {
	Address    string            `json:"address"`
	KeyFile    string            `json:"keyFile"`
	CreatedAt  time.Time         `json:"createdAt"`
	PrivateKey *ecdsa.PrivateKey `json:"-"`
}

type manifest struct {
	DefaultAccount string     `json:"defaultAccount"`
	Accounts       []*Account `json:"accounts"`
}

// Wallet manages multiple accounts
type Wallet struct {
	mu             sync.RWMutex
	accounts       map[string]*Account
	defaultAccount string
	walletPath     string
	keyStore       *keystore.KeyStore
}

// NewWallet opens or creates a wallet manifest at the given path, with its
// keystore directory alongside it
func NewWallet(walletPath string) (*Wallet, error) {
	w := &Wallet{
		accounts:   make(map[string]*Account),
		walletPath: walletPath,
		keyStore:   keystore.NewKeyStore(filepath.Join(filepath.Dir(walletPath), "keystore")),
	}

	if err := os.MkdirAll(filepath.Dir(walletPath), 0700); err != nil {
		return nil, errors.Wrap(err, "creating wallet directory")
	}

	if _, err := os.Stat(walletPath); err == nil {
		if err := w.load(); err != nil {
			return nil, err
		}
	}

	return w, nil
}

// CreateAccount generates a new keypair, stores it encrypted and adds it to
// the wallet. The first account becomes the default.
func (w *Wallet) CreateAccount(password string) (*Account, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, errors.Wrap(err, "generating key")
	}
	return w.addKey(key, password)
}

// ImportAccount adds an account from a hex-encoded private key
func (w *Wallet) ImportAccount(privateKeyHex, password string) (*Account, error) {
	key, err := crypto.KeyFromHex(privateKeyHex)
	if err != nil {
		return nil, err
	}

	address := crypto.AddressFromKey(key)
	w.mu.RLock()
	_, exists := w.accounts[address]
	w.mu.RUnlock()
	if exists {
		return nil, ErrAccountExists
	}

	return w.addKey(key, password)
}

func (w *Wallet) addKey(key *ecdsa.PrivateKey, password string) (*Account, error) {
	keyPath, err := w.keyStore.StoreKey(key, password)
	if err != nil {
		return nil, errors.Wrap(err, "storing key")
	}

	account := &Account{
		Address:    crypto.AddressFromKey(key),
		KeyFile:    keyPath,
		CreatedAt:  time.Now(),
		PrivateKey: key,
	}

	w.mu.Lock()
	w.accounts[account.Address] = account
	if len(w.accounts) == 1 {
		w.defaultAccount = account.Address
	}
	w.mu.Unlock()

	if err := w.save(); err != nil {
		return nil, err
	}
	return account, nil
}

// GetAccount returns an account by address
func (w *Wallet) GetAccount(address string) (*Account, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	account, exists := w.accounts[address]
	if !exists {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// GetDefaultAccount returns the default account
func (w *Wallet) GetDefaultAccount() (*Account, error) {
	w.mu.RLock()
	address := w.defaultAccount
	w.mu.RUnlock()

	if address == "" {
		return nil, errors.New("no default account set")
	}
	return w.GetAccount(address)
}

// SetDefaultAccount sets the default account
func (w *Wallet) SetDefaultAccount(address string) error {
	w.mu.Lock()
	if _, exists := w.accounts[address]; !exists {
		w.mu.Unlock()
		return ErrAccountNotFound
	}
	w.defaultAccount = address
	w.mu.Unlock()

	return w.save()
}

// ListAccounts returns the addresses of all accounts
func (w *Wallet) ListAccounts() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	addresses := make([]string, 0, len(w.accounts))
	for address := range w.accounts {
		addresses = append(addresses, address)
	}
	return addresses
}

// UnlockAccount decrypts an account's private key into memory
func (w *Wallet) UnlockAccount(address, password string) (*Account, error) {
	account, err := w.GetAccount(address)
	if err != nil {
		return nil, err
	}

	if account.PrivateKey != nil {
		return account, nil
	}

	key, err := w.keyStore.LoadKey(account.KeyFile, password)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	account.PrivateKey = key
	w.mu.Unlock()
	return account, nil
}

// NewSignedTransaction builds and signs a transfer from an unlocked account
func (w *Wallet) NewSignedTransaction(from *Account, to string, amount float64, data string) (*core.Transaction, error) {
	if from.PrivateKey == nil {
		return nil, errors.Errorf("account %s is locked", from.Address)
	}

	tx, err := core.NewTransaction(from.Address, to, amount, data)
	if err != nil {
		return nil, err
	}
	if err := tx.Sign(from.PrivateKey); err != nil {
		return nil, err
	}
	return tx, nil
}

func (w *Wallet) load() error {
	data, err := os.ReadFile(w.walletPath)
	if err != nil {
		return errors.Wrap(err, "reading wallet manifest")
	}

	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return errors.Wrap(err, "decoding wallet manifest")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.defaultAccount = m.DefaultAccount
	for _, account := range m.Accounts {
		w.accounts[account.Address] = account
	}
	return nil
}

func (w *Wallet) save() error {
	w.mu.RLock()
	m := manifest{
		DefaultAccount: w.defaultAccount,
		Accounts:       make([]*Account, 0, len(w.accounts)),
	}
	for _, account := range w.accounts {
		m.Accounts = append(m.Accounts, account)
	}
	w.mu.RUnlock()

	data, err := json.MarshalIndent(&m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(w.walletPath, data, 0600); err != nil {
		return errors.Wrap(err, "writing wallet manifest")
	}
	return nil
}
