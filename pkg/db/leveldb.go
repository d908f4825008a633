package db

import (
	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBDatabase is a LevelDB implementation of the Database interface
type LevelDBDatabase struct {
	db *leveldb.DB
}

// NewLevelDB creates a new LevelDB database
func NewLevelDB() Database {
	return &LevelDBDatabase{}
}

// Open opens the database
func (ldb *LevelDBDatabase) Open(path string) error {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return err
	}
	ldb.db = db
	return nil
}

// Close closes the database
func (ldb *LevelDBDatabase) Close() error {
	return ldb.db.Close()
}

// Put stores a key-value pair
func (ldb *LevelDBDatabase) Put(key, value []byte) error {
	return ldb.db.Put(key, value, nil)
}

// Get retrieves a value by key
func (ldb *LevelDBDatabase) Get(key []byte) ([]byte, error) {
	value, err := ldb.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return value, err
}

// Has checks if a key exists
func (ldb *LevelDBDatabase) Has(key []byte) (bool, error) {
	return ldb.db.Has(key, nil)
}

// Delete removes a key-value pair
func (ldb *LevelDBDatabase) Delete(key []byte) error {
	return ldb.db.Delete(key, nil)
}
