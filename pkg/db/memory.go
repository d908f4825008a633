package db

import "sync"

// MemoryDatabase is a volatile in-process implementation of the Database
// interface, used as the fallback when a disk backend cannot be opened and
// as the backend of choice in tests.
type MemoryDatabase struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryDB creates a new in-memory database
func NewMemoryDB() Database {
	return &MemoryDatabase{
		data: make(map[string][]byte),
	}
}

// Open is a no-op for the in-memory backend
func (mdb *MemoryDatabase) Open(path string) error {
	return nil
}

// Close discards all stored data
func (mdb *MemoryDatabase) Close() error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	mdb.data = make(map[string][]byte)
	return nil
}

// Put stores a key-value pair
func (mdb *MemoryDatabase) Put(key, value []byte) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	mdb.data[string(key)] = cp
	return nil
}

// Get retrieves a value by key
func (mdb *MemoryDatabase) Get(key []byte) ([]byte, error) {
	mdb.mu.RLock()
	defer mdb.mu.RUnlock()
	value, ok := mdb.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(value))
	copy(cp, value)
	return cp, nil
}

// Has checks if a key exists
func (mdb *MemoryDatabase) Has(key []byte) (bool, error) {
	mdb.mu.RLock()
	defer mdb.mu.RUnlock()
	_, ok := mdb.data[string(key)]
	return ok, nil
}

// Delete removes a key-value pair
func (mdb *MemoryDatabase) Delete(key []byte) error {
	mdb.mu.Lock()
	defer mdb.mu.Unlock()
	delete(mdb.data, string(key))
	return nil
}
