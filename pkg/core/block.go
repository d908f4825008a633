package core

import (
	"context"
	"encoding/hex"
	"math"
	"strings"

	"github.com/zeebo/blake3"
)

// ctxCheckInterval is how many nonce attempts pass between cancellation checks
const ctxCheckInterval = 4096

// Block is an ordered container of transactions linked to its predecessor by
// hash. Blocks mutate only during mining (nonce search) and are immutable
// once appended to a chain.
type Block struct {
	Index        uint64         `json:"index"`
	Timestamp    int64          `json:"timestamp"`
	Transactions []*Transaction `json:"transactions"`
	PrevHash     string         `json:"previousHash"`
	Hash         string         `json:"hash"`
	Nonce        uint64         `json:"nonce"`
}

// NewBlock creates a block with its initial content hash computed
func NewBlock(index uint64, txs []*Transaction, prevHash string, timestamp int64) *Block {
	if txs == nil {
		txs = []*Transaction{}
	}
	b := &Block{
		Index:        index,
		Timestamp:    timestamp,
		Transactions: txs,
		PrevHash:     prevHash,
	}
	b.Hash = b.CalculateHash()
	return b
}

// CalculateHash computes the BLAKE3 content hash over the canonical field
// order: index, timestamp, transactions, previousHash, nonce.
func (b *Block) CalculateHash() string {
	hasher := blake3.New()

	hasher.Write(uint64ToBytes(b.Index))
	hasher.Write(int64ToBytes(b.Timestamp))
	for _, tx := range b.Transactions {
		hasher.Write(tx.hashBytes())
	}
	hasher.Write([]byte(b.PrevHash))
	hasher.Write(uint64ToBytes(b.Nonce))

	return hex.EncodeToString(hasher.Sum(nil))
}

// Mine searches for a nonce whose hash carries the required number of
// leading zero hex characters. Returns the number of hash attempts made.
// A cancelled context aborts the search; an exhausted nonce range is
// ErrNonceOverflow.
func (b *Block) Mine(ctx context.Context, difficulty int) (uint64, error) {
	prefix := strings.Repeat("0", difficulty)
	attempts := uint64(1)

	for !strings.HasPrefix(b.Hash, prefix) {
		if attempts%ctxCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return attempts, ctx.Err()
			default:
			}
		}
		if b.Nonce == math.MaxUint64 {
			return attempts, ErrNonceOverflow
		}
		b.Nonce++
		b.Hash = b.CalculateHash()
		attempts++
	}

	return attempts, nil
}

// MeetsDifficulty reports whether the block's hash satisfies the given
// leading-zero target
func (b *Block) MeetsDifficulty(difficulty int) bool {
	return strings.HasPrefix(b.Hash, strings.Repeat("0", difficulty))
}

// HasValidTransactions reports whether every contained transaction passes
// its validity check. Per-transaction failures are swallowed into false.
func (b *Block) HasValidTransactions() bool {
	for _, tx := range b.Transactions {
		if err := tx.IsValid(); err != nil {
			return false
		}
	}
	return true
}
