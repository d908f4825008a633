package store

import (
	"context"
	"testing"

	"github.com/Ubaid-developer/keta-chain/pkg/core"
	"github.com/Ubaid-developer/keta-chain/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *ChainStore {
	t.Helper()
	database := db.NewMemoryDB()
	require.NoError(t, database.Open(""))
	return New(database)
}

func TestChainRoundTrip(t *testing.T) {
	s := newTestStore(t)

	ledger := core.NewLedger(1, 10, 10, nil)
	_, _, err := ledger.MinePendingTransactions(context.Background(), "Kaddr1")
	require.NoError(t, err)
	require.NoError(t, s.SaveChain(ledger.Chain()))

	loaded, err := s.LoadChain()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, ledger.Tip().Hash, loaded[1].Hash)
	assert.Equal(t, core.GenesisBlock().Hash, loaded[0].Hash)
}

func TestPoolRoundTrip(t *testing.T) {
	s := newTestStore(t)

	pool := []*core.Transaction{
		core.NewRewardTransaction("Kaddr1", 10),
		core.NewRewardTransaction("Kaddr2", 2.5),
	}
	require.NoError(t, s.SavePool(pool))

	loaded, err := s.LoadPool()
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, pool[0].ID, loaded[0].ID)
	assert.Equal(t, 2.5, loaded[1].Amount)
}

func TestLoadEmptyStore(t *testing.T) {
	s := newTestStore(t)

	chain, err := s.LoadChain()
	require.NoError(t, err)
	assert.Nil(t, chain)

	pool, err := s.LoadPool()
	require.NoError(t, err)
	assert.Nil(t, pool)
}

func TestLoadCorruptBlob(t *testing.T) {
	database := db.NewMemoryDB()
	require.NoError(t, database.Open(""))
	s := New(database)

	ledger := core.NewLedger(1, 10, 10, nil)
	require.NoError(t, s.SaveChain(ledger.Chain()))

	// Flip the blob under the digest
	require.NoError(t, database.Put(chainKey, []byte(`[]`)))

	_, err := s.LoadChain()
	assert.ErrorIs(t, err, ErrCorruptBlob)
}

func TestLedgerFallsBackOnCorruptStore(t *testing.T) {
	database := db.NewMemoryDB()
	require.NoError(t, database.Open(""))
	s := New(database)

	seeded := core.NewLedger(1, 10, 10, nil)
	_, _, err := seeded.MinePendingTransactions(context.Background(), "Kaddr1")
	require.NoError(t, err)
	require.NoError(t, s.SaveChain(seeded.Chain()))
	require.NoError(t, database.Put(chainDigestKey, []byte("bogus")))

	ledger := core.NewLedger(1, 10, 10, s)
	assert.Equal(t, 1, ledger.Height(), "corrupt store starts from genesis")
	assert.True(t, ledger.IsChainValid())
}

func TestLedgerResumesFromStore(t *testing.T) {
	s := newTestStore(t)

	first := core.NewLedger(1, 10, 10, s)
	_, _, err := first.MinePendingTransactions(context.Background(), "Kaddr1")
	require.NoError(t, err)

	second := core.NewLedger(1, 10, 10, s)
	assert.Equal(t, 2, second.Height())
	assert.Equal(t, first.Tip().Hash, second.Tip().Hash)
	assert.Equal(t, 10.0, second.GetBalance("Kaddr1"))
}
