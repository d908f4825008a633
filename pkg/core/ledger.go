package core

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Ubaid-developer/keta-chain/pkg/crypto"
	"github.com/pkg/errors"
)

// Store persists the chain and pending pool as opaque blobs. A nil Store
// leaves the ledger in-memory only. Load failures must be reported so the
// ledger can fall back to a genesis-only chain.
type Store interface {
	SaveChain(chain []*Block) error
	LoadChain() ([]*Block, error)
	SavePool(pool []*Transaction) error
	LoadPool() ([]*Transaction, error)
}

// ChainStats is a point-in-time summary of the ledger
type ChainStats struct {
	Height            int     `json:"height"`
	Difficulty        int     `json:"difficulty"`
	PendingCount      int     `json:"pendingCount"`
	TotalTransactions int     `json:"totalTransactions"`
	Valid             bool    `json:"valid"`
	MiningReward      float64 `json:"miningReward"`
}

// Ledger owns the chain and the pending transaction pool. All mutation
// funnels through its methods under a single mutex, which keeps the state
// effectively serial: the mining loop, gossip handlers and the API surface
// never interleave a partial mutation.
type Ledger struct {
	mu           sync.RWMutex
	chain        []*Block
	pending      []*Transaction
	difficulty   int
	miningReward float64
	maxBlockTxs  int
	store        Store
}

// NewLedger creates a ledger seeded from the store, or from the canonical
// genesis block when the store is empty or unreadable
func NewLedger(difficulty int, miningReward float64, maxBlockTxs int, store Store) *Ledger {
	if difficulty < 1 {
		difficulty = 1
	}
	if maxBlockTxs < 1 {
		maxBlockTxs = 1
	}

	l := &Ledger{
		chain:        []*Block{GenesisBlock()},
		pending:      []*Transaction{},
		difficulty:   difficulty,
		miningReward: miningReward,
		maxBlockTxs:  maxBlockTxs,
		store:        store,
	}

	if store != nil {
		chain, err := store.LoadChain()
		switch {
		case err != nil:
			slog.Warn("loading chain from store failed, starting from genesis", "err", err)
		case len(chain) > 0:
			l.chain = chain
		}

		pool, err := store.LoadPool()
		if err != nil {
			slog.Warn("loading pending pool from store failed, starting empty", "err", err)
		} else if pool != nil {
			l.pending = pool
		}
	}

	return l
}

// Height returns the number of blocks in the chain
func (l *Ledger) Height() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.chain)
}

// Difficulty returns the proof-of-work target in leading zero hex characters
func (l *Ledger) Difficulty() int {
	return l.difficulty
}

// MiningReward returns the amount minted per mined block
func (l *Ledger) MiningReward() float64 {
	return l.miningReward
}

// Tip returns the latest block
func (l *Ledger) Tip() *Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chain[len(l.chain)-1]
}

// Chain returns a copy of the block sequence
func (l *Ledger) Chain() []*Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Block, len(l.chain))
	copy(out, l.chain)
	return out
}

// BlockByIndex returns the block at the given height, or nil
func (l *Ledger) BlockByIndex(index uint64) *Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index >= uint64(len(l.chain)) {
		return nil
	}
	return l.chain[index]
}

// Pending returns a copy of the pending pool in insertion order
func (l *Ledger) Pending() []*Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*Transaction, len(l.pending))
	copy(out, l.pending)
	return out
}

// AddTransaction admits a transaction into the pending pool. Both addresses
// must be present and well-formed, the transaction must pass its validity
// check, the amount must be positive and the sender must be able to cover
// it. Mint transactions are never admitted here: rewards enter the chain
// only through mining.
func (l *Ledger) AddTransaction(tx *Transaction) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tx.From == "" || tx.To == "" {
		return ErrMissingAddress
	}
	if err := crypto.ValidateAddress(tx.To); err != nil {
		return errors.Wrapf(ErrInvalidAddress, "to address %q", tx.To)
	}
	if err := crypto.ValidateAddress(tx.From); err != nil {
		return errors.Wrapf(ErrInvalidAddress, "from address %q", tx.From)
	}
	if err := tx.IsValid(); err != nil {
		return errors.Wrap(ErrInvalidTransaction, err.Error())
	}
	if tx.Amount <= 0 {
		return ErrNonPositiveAmount
	}
	if l.balanceOf(tx.From) < tx.Amount {
		return errors.Wrapf(ErrInsufficientBalance, "address %q", tx.From)
	}

	l.pending = append(l.pending, tx)
	l.persistPool()
	return nil
}

// GetBalance computes an address balance by scanning every transaction in
// every block. Deliberately uncached: each call is O(chain size) and callers
// needing frequent reads should cache externally.
func (l *Ledger) GetBalance(address string) float64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceOf(address)
}

func (l *Ledger) balanceOf(address string) float64 {
	var balance float64
	for _, block := range l.chain {
		for _, tx := range block.Transactions {
			if tx.From == address {
				balance -= tx.Amount
			}
			if tx.To == address {
				balance += tx.Amount
			}
		}
	}
	return roundAmount(balance)
}

// GetAllTransactionsForWallet returns every chained transaction that sends
// from or pays to the given address
func (l *Ledger) GetAllTransactionsForWallet(address string) []*Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	txs := []*Transaction{}
	for _, block := range l.chain {
		for _, tx := range block.Transactions {
			if tx.From == address || tx.To == address {
				txs = append(txs, tx)
			}
		}
	}
	return txs
}

// MinePendingTransactions drains up to the per-block cap of pool entries
// (oldest first) plus a freshly minted reward transaction into a new block,
// mines it against the current tip and appends it. Pool entries beyond the
// cap stay pooled for a future block. Returns the mined block and the number
// of hash attempts. The ledger lock is held for the whole operation, so no
// other mutation interleaves with an in-flight mining attempt; cancelling
// the context abandons the attempt without touching the chain.
func (l *Ledger) MinePendingTransactions(ctx context.Context, rewardAddress string) (*Block, uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	take := len(l.pending)
	if take > l.maxBlockTxs {
		take = l.maxBlockTxs
	}

	txs := make([]*Transaction, 0, take+1)
	txs = append(txs, l.pending[:take]...)
	txs = append(txs, NewRewardTransaction(rewardAddress, l.miningReward))

	tip := l.chain[len(l.chain)-1]
	block := NewBlock(uint64(len(l.chain)), txs, tip.Hash, time.Now().UnixMilli())

	attempts, err := block.Mine(ctx, l.difficulty)
	if err != nil {
		return nil, attempts, err
	}

	l.chain = append(l.chain, block)
	l.pending = append([]*Transaction{}, l.pending[take:]...)
	l.persistChain()
	l.persistPool()

	return block, attempts, nil
}

// AppendBlock appends a peer-sourced block whose index matches the current
// chain height. Used by the gossip layer; any other mutation path goes
// through mining or replacement.
func (l *Ledger) AppendBlock(block *Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if block.Index != uint64(len(l.chain)) {
		return errors.Wrapf(ErrOutOfSequence, "index %d, height %d", block.Index, len(l.chain))
	}

	l.chain = append(l.chain, block)
	l.persistChain()
	return nil
}

// ReplaceChain swaps the entire chain for a strictly longer candidate.
// Equal-length candidates are rejected; there is no tie-break by cumulative
// work and the candidate's internal integrity is not validated before the
// swap. Nil entries are rejected outright: a chain decoded from the wire
// can carry JSON nulls and every chain walk dereferences its blocks. The
// swap is atomic: readers never observe a partial chain.
func (l *Ledger) ReplaceChain(candidate []*Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(candidate) <= len(l.chain) {
		return errors.Wrapf(ErrChainTooShort, "candidate %d, current %d", len(candidate), len(l.chain))
	}
	for i, block := range candidate {
		if block == nil {
			return errors.Wrapf(ErrNilBlock, "index %d", i)
		}
	}

	l.chain = candidate
	l.persistChain()
	return nil
}

// IsChainValid recomputes the canonical genesis and every block's links and
// content hashes. Any mismatch anywhere makes the whole chain invalid; there
// is no partial reporting.
func (l *Ledger) IsChainValid() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.chainValid()
}

func (l *Ledger) chainValid() bool {
	genesis := GenesisBlock()
	first := l.chain[0]
	if first.Index != genesis.Index ||
		first.Timestamp != genesis.Timestamp ||
		first.PrevHash != genesis.PrevHash ||
		first.Nonce != genesis.Nonce ||
		len(first.Transactions) != 0 ||
		first.Hash != genesis.Hash {
		return false
	}

	for i := 1; i < len(l.chain); i++ {
		block := l.chain[i]
		prev := l.chain[i-1]

		if block.PrevHash != prev.Hash {
			return false
		}
		if !block.HasValidTransactions() {
			return false
		}
		if block.Hash != block.CalculateHash() {
			return false
		}
	}

	return true
}

// GetChainStats summarizes the ledger. Computing the summary walks the whole
// chain, a cost callers accept.
func (l *Ledger) GetChainStats() ChainStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	total := 0
	for _, block := range l.chain {
		total += len(block.Transactions)
	}

	return ChainStats{
		Height:            len(l.chain),
		Difficulty:        l.difficulty,
		PendingCount:      len(l.pending),
		TotalTransactions: total,
		Valid:             l.chainValid(),
		MiningReward:      l.miningReward,
	}
}

// persistChain and persistPool degrade to in-memory operation on store
// failure: a warning is logged and the node keeps running.
func (l *Ledger) persistChain() {
	if l.store == nil {
		return
	}
	if err := l.store.SaveChain(l.chain); err != nil {
		slog.Warn("persisting chain failed, continuing in memory", "err", err)
	}
}

func (l *Ledger) persistPool() {
	if l.store == nil {
		return
	}
	if err := l.store.SavePool(l.pending); err != nil {
		slog.Warn("persisting pending pool failed, continuing in memory", "err", err)
	}
}
