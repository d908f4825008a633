// Package store persists the chain and pending pool as JSON blobs with a
// BLAKE3 integrity digest alongside each blob. A missing blob loads as
// empty; a digest mismatch or undecodable blob loads as an error so the
// ledger can fall back to a genesis-only start.
package store

import (
	"bytes"
	"encoding/json"

	"github.com/Ubaid-developer/keta-chain/pkg/core"
	"github.com/Ubaid-developer/keta-chain/pkg/crypto"
	"github.com/Ubaid-developer/keta-chain/pkg/db"
	"github.com/pkg/errors"
)

var (
	chainKey       = []byte("chain:data")
	chainDigestKey = []byte("chain:digest")
	poolKey        = []byte("pool:data")
	poolDigestKey  = []byte("pool:digest")
)

// ErrCorruptBlob indicates a stored blob whose integrity digest does not
// match its contents
var ErrCorruptBlob = errors.New("store: integrity digest mismatch")

// ChainStore implements core.Store over a db.Database
type ChainStore struct {
	db db.Database
}

// New creates a ChainStore over the given database
func New(database db.Database) *ChainStore {
	return &ChainStore{db: database}
}

// SaveChain persists the full chain blob
func (s *ChainStore) SaveChain(chain []*core.Block) error {
	return s.saveBlob(chainKey, chainDigestKey, chain)
}

// LoadChain loads the chain blob. Returns a nil chain when nothing has been
// saved yet.
func (s *ChainStore) LoadChain() ([]*core.Block, error) {
	var chain []*core.Block
	if err := s.loadBlob(chainKey, chainDigestKey, &chain); err != nil {
		return nil, err
	}
	return chain, nil
}

// SavePool persists the pending pool blob
func (s *ChainStore) SavePool(pool []*core.Transaction) error {
	return s.saveBlob(poolKey, poolDigestKey, pool)
}

// LoadPool loads the pending pool blob. Returns a nil pool when nothing has
// been saved yet.
func (s *ChainStore) LoadPool() ([]*core.Transaction, error) {
	var pool []*core.Transaction
	if err := s.loadBlob(poolKey, poolDigestKey, &pool); err != nil {
		return nil, err
	}
	return pool, nil
}

func (s *ChainStore) saveBlob(dataKey, digestKey []byte, v any) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding blob")
	}
	if err := s.db.Put(dataKey, blob); err != nil {
		return errors.Wrap(err, "writing blob")
	}
	if err := s.db.Put(digestKey, crypto.Hash(blob)); err != nil {
		return errors.Wrap(err, "writing digest")
	}
	return nil
}

func (s *ChainStore) loadBlob(dataKey, digestKey []byte, v any) error {
	blob, err := s.db.Get(dataKey)
	if err == db.ErrNotFound {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "reading blob")
	}

	digest, err := s.db.Get(digestKey)
	if err != nil {
		return errors.Wrap(err, "reading digest")
	}
	if !bytes.Equal(crypto.Hash(blob), digest) {
		return ErrCorruptBlob
	}

	if err := json.Unmarshal(blob, v); err != nil {
		return errors.Wrap(err, "decoding blob")
	}
	return nil
}
