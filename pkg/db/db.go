package db

import "errors"

// ErrNotFound is returned by Get when a key does not exist
var ErrNotFound = errors.New("db: key not found")

// Database defines the interface for key-value persistence backends
type Database interface {
	// Open opens the database at the given path
	Open(path string) error

	// Close closes the database
	Close() error

	// Put stores a key-value pair
	Put(key, value []byte) error

	// Get retrieves a value by key
	Get(key []byte) ([]byte, error)

	// Has checks if a key exists
	Has(key []byte) (bool, error)

	// Delete removes a key-value pair
	Delete(key []byte) error
}

// Type selects a database backend
type Type string

const (
	// LevelDB is the on-disk backend
	LevelDB Type = "leveldb"

	// Memory is the volatile in-process backend
	Memory Type = "memory"
)

// New creates a new database of the specified type
func New(t Type) (Database, error) {
	switch t {
	case LevelDB:
		return NewLevelDB(), nil
	case Memory:
		return NewMemoryDB(), nil
	default:
		return nil, errors.New("unsupported database type")
	}
}
