// Package keeta is a self-contained SIMULATION of the Keeta Network SDK.
// Every account, transaction and balance is derived deterministically from
// BLAKE3 hashes of the inputs; nothing here performs network I/O, real
// cryptography or consensus, and nothing in the ledger or gossip core
// depends on this package.
package keeta

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/Ubaid-developer/keta-chain/pkg/crypto"
	"github.com/pkg/errors"
)

// ErrUnknownAccount is returned for addresses the client never generated
var ErrUnknownAccount = errors.New("keeta: unknown account")

// Account is a simulated Keeta account
type Account struct {
	Alias     string `json:"alias"`
	Address   string `json:"address"`
	PublicKey string `json:"publicKey"`
	CreatedAt int64  `json:"createdAt"`
}

// Receipt is a simulated transaction receipt
type Receipt struct {
	ID        string  `json:"id"`
	From      string  `json:"from"`
	To        string  `json:"to"`
	Amount    float64 `json:"amount"`
	BlockHash string  `json:"blockHash"`
	Timestamp int64   `json:"timestamp"`
	Status    string  `json:"status"`
}

// Client fabricates SDK-shaped responses from a network name and seed
type Client struct {
	network string
	seed    []byte

	mu       sync.RWMutex
	accounts map[string]*Account
	sequence uint64
}

// NewClient creates a simulation client. The same network and seed always
// produce the same accounts and receipts.
func NewClient(network, seed string) *Client {
	return &Client{
		network:  network,
		seed:     []byte(seed),
		accounts: make(map[string]*Account),
	}
}

// GenerateAccount derives a deterministic account from an alias
func (c *Client) GenerateAccount(alias string) *Account {
	digest := crypto.HashMultiple(c.seed, []byte(c.network), []byte(alias))

	account := &Account{
		Alias:     alias,
		Address:   "keeta_" + hex.EncodeToString(digest[:20]),
		PublicKey: hex.EncodeToString(crypto.HashMultiple(digest, []byte("pub"))),
		CreatedAt: time.Now().Unix(),
	}

	c.mu.Lock()
	c.accounts[account.Address] = account
	c.mu.Unlock()
	return account
}

// GetAccountInfo returns a previously generated account
func (c *Client) GetAccountInfo(address string) (*Account, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	account, ok := c.accounts[address]
	if !ok {
		return nil, errors.Wrap(ErrUnknownAccount, address)
	}
	return account, nil
}

// ListAccounts returns every account this client generated
func (c *Client) ListAccounts() []*Account {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*Account, 0, len(c.accounts))
	for _, account := range c.accounts {
		out = append(out, account)
	}
	return out
}

// GetBalance fabricates a stable balance for an address
func (c *Client) GetBalance(address string) float64 {
	digest := crypto.HashMultiple(c.seed, []byte(address), []byte("balance"))
	cents := binary.LittleEndian.Uint64(digest[:8]) % 10_000_000
	return float64(cents) / 100
}

// SubmitTransaction fabricates a confirmed transfer receipt. Receipt IDs
// are unique per client instance via an internal sequence counter.
func (c *Client) SubmitTransaction(from, to string, amount float64) (*Receipt, error) {
	if amount <= 0 {
		return nil, errors.New("keeta: amount must be positive")
	}

	c.mu.Lock()
	c.sequence++
	seq := c.sequence
	c.mu.Unlock()

	seqBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(seqBytes, seq)

	id := crypto.HexHash(c.seed, []byte(from), []byte(to), seqBytes)
	blockHash := crypto.HexHash([]byte(id), []byte("block"))

	return &Receipt{
		ID:        fmt.Sprintf("keeta_tx_%s", id[:32]),
		From:      from,
		To:        to,
		Amount:    amount,
		BlockHash: blockHash,
		Timestamp: time.Now().Unix(),
		Status:    "confirmed",
	}, nil
}
