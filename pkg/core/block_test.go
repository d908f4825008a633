package core

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockHashRecomputation(t *testing.T) {
	tx := NewRewardTransaction("Kaddr1", 10)
	block := NewBlock(1, []*Transaction{tx}, "abc123", time.Now().UnixMilli())

	assert.Equal(t, block.Hash, block.CalculateHash())

	// Any field change invalidates the stored hash
	block.Nonce++
	assert.NotEqual(t, block.Hash, block.CalculateHash())
}

func TestMineMeetsDifficulty(t *testing.T) {
	for _, difficulty := range []int{1, 2} {
		tx := NewRewardTransaction("Kaddr1", 10)
		block := NewBlock(1, []*Transaction{tx}, GenesisBlock().Hash, time.Now().UnixMilli())

		attempts, err := block.Mine(context.Background(), difficulty)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(block.Hash, strings.Repeat("0", difficulty)))
		assert.True(t, block.MeetsDifficulty(difficulty))
		assert.Equal(t, block.Hash, block.CalculateHash(), "hash matches content after mining")
		assert.GreaterOrEqual(t, attempts, uint64(1))
	}
}

func TestMineNonceOverflow(t *testing.T) {
	tx := NewRewardTransaction("Kaddr1", 10)
	block := NewBlock(1, []*Transaction{tx}, GenesisBlock().Hash, time.Now().UnixMilli())
	block.Nonce = math.MaxUint64
	block.Hash = block.CalculateHash()
	require.False(t, block.MeetsDifficulty(8))

	attempts, err := block.Mine(context.Background(), 8)
	assert.ErrorIs(t, err, ErrNonceOverflow)
	assert.Equal(t, uint64(1), attempts)
	assert.Equal(t, uint64(math.MaxUint64), block.Nonce, "an exhausted search leaves the block untouched")
}

func TestMineCancellation(t *testing.T) {
	tx := NewRewardTransaction("Kaddr1", 10)
	block := NewBlock(1, []*Transaction{tx}, GenesisBlock().Hash, time.Now().UnixMilli())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// A 12-zero target is unreachable in the timeout window
	_, err := block.Mine(ctx, 12)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHasValidTransactions(t *testing.T) {
	key, from := newTestAccount(t)
	_, to := newTestAccount(t)

	signed, err := NewTransaction(from, to, 1, "")
	require.NoError(t, err)
	require.NoError(t, signed.Sign(key))

	unsigned, err := NewTransaction(from, to, 1, "")
	require.NoError(t, err)

	reward := NewRewardTransaction(to, 10)

	t.Run("all valid", func(t *testing.T) {
		block := NewBlock(1, []*Transaction{signed, reward}, "prev", time.Now().UnixMilli())
		assert.True(t, block.HasValidTransactions())
	})

	t.Run("unsigned transfer fails the whole block", func(t *testing.T) {
		block := NewBlock(1, []*Transaction{signed, unsigned}, "prev", time.Now().UnixMilli())
		assert.False(t, block.HasValidTransactions())
	})

	t.Run("empty block is valid", func(t *testing.T) {
		block := NewBlock(1, nil, "prev", time.Now().UnixMilli())
		assert.True(t, block.HasValidTransactions())
	})
}

func TestGenesisBlockIsCanonical(t *testing.T) {
	a := GenesisBlock()
	b := GenesisBlock()

	assert.Equal(t, a.Hash, b.Hash, "every node reproduces the same genesis")
	assert.Equal(t, uint64(0), a.Index)
	assert.Equal(t, GenesisPrevHash, a.PrevHash)
	assert.Empty(t, a.Transactions)
	assert.Zero(t, a.Nonce)
}
