package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// Key prefix for document snapshot records.
const prefixDocument = "d:"

// BadgerBackend is a BadgerDB-backed snapshot store.
type BadgerBackend struct {
	db            *badger.DB
	mu            sync.RWMutex
	documentCount int
}

// NewBadgerBackend creates a new BadgerDB backend.
func NewBadgerBackend() *BadgerBackend {
	return &BadgerBackend{}
}

// Initialize opens or creates the BadgerDB database at the given path.
func (b *BadgerBackend) Initialize(path string, readOnly bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	opts := badger.DefaultOptions(path).
		WithNumCompactors(2).
		WithNumMemtables(5).
		WithLoggingLevel(badger.ERROR) // Suppress INFO/WARNING logs

	if readOnly {
		opts = opts.WithReadOnly(true)
	}

	var err error
	b.db, err = badger.Open(opts)
	if err != nil {
		return fmt.Errorf("opening badger DB: %w", err)
	}

	b.documentCount = b.countDocuments()
	return nil
}

func (b *BadgerBackend) countDocuments() int {
	count := 0
	txn := b.db.NewTransaction(false)
	defer txn.Discard()

	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefixDocument)
	opts.PrefetchValues = false
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		count++
	}
	return count
}

// Close releases all resources held by the backend.
func (b *BadgerBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}

// SaveDocument implements Backend.
func (b *BadgerBackend) SaveDocument(ctx context.Context, record DocumentRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshaling record for %s: %w", record.URI, err)
	}

	key := b.documentKey(record.URI)
	fresh := false
	err = b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			fresh = true
		}
		return txn.Set(key, value)
	})
	if err != nil {
		return fmt.Errorf("saving record for %s: %w", record.URI, err)
	}

	if fresh {
		b.documentCount++
	}
	return nil
}

// DeleteDocument implements Backend.
func (b *BadgerBackend) DeleteDocument(ctx context.Context, uri string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := b.documentKey(uri)
	existed := false
	err := b.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			existed = true
		}
		return txn.Delete(key)
	})
	if err != nil {
		return fmt.Errorf("deleting record for %s: %w", uri, err)
	}

	if existed {
		b.documentCount--
	}
	return nil
}

// LoadAll implements Backend.
func (b *BadgerBackend) LoadAll(ctx context.Context, fn func(DocumentRecord) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefixDocument)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var record DocumentRecord
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return fmt.Errorf("decoding record %s: %w", it.Item().Key(), err)
			}
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	})
}

// DocumentCount implements Backend.
func (b *BadgerBackend) DocumentCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.documentCount
}

func (b *BadgerBackend) documentKey(uri string) []byte {
	return []byte(prefixDocument + uri)
}
