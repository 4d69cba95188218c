// Package badger provides a small key-value store on top of BadgerDB for random
// access to per-label index maps.
package badger

import (
	"bytes"
	"fmt"
	"os"

	"github.com/Rhoana/topological-thinning/thinning"

	"github.com/dgraph-io/badger/v3"
)

const (
	// DefaultValueThreshold is the size of values in bytes that if exceeded get stored in
	// value log instead of the LSM tree.
	DefaultValueThreshold = 1 * thinning.Kilo

	// DefaultSyncWrites is true if all writes are synced to disk, thereby making db resilient
	// at cost of speed.  Indices can always be rebuilt from the map files.
	DefaultSyncWrites = false
)

// DB is a BadgerDB opened at a directory.
type DB struct {
	directory string
	bdp       *badger.DB
}

// badgerLogger routes badger messages through the package log.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{}) {
	thinning.Errorf("badger: "+format, args...)
}

func (badgerLogger) Warningf(format string, args ...interface{}) {
	thinning.Warningf("badger: "+format, args...)
}

func (badgerLogger) Infof(format string, args ...interface{}) {
	thinning.Debugf("badger: "+format, args...)
}

func (badgerLogger) Debugf(format string, args ...interface{}) {
	thinning.Debugf("badger: "+format, args...)
}

// Open returns a badger DB, creating one at path if it doesn't exist.
func Open(path string, o Options) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("path must be specified for badger index")
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		thinning.Infof("Database not already at path (%s). Creating directory...\n", path)
		if err := os.MkdirAll(path, 0744); err != nil {
			return nil, fmt.Errorf("can't make directory at %s: %v", path, err)
		}
	}

	timedLog := thinning.NewTimeLog()
	bdp, err := badger.Open(o.badgerOptions(path))
	if err != nil {
		return nil, err
	}
	timedLog.Infof("Opened badger @ path %s", path)
	return &DB{directory: path, bdp: bdp}, nil
}

func (db *DB) String() string {
	return fmt.Sprintf("badger @ %s", db.directory)
}

// Close closes the DB.
func (db *DB) Close() error {
	if db == nil || db.bdp == nil {
		return nil
	}
	err := db.bdp.Close()
	db.bdp = nil
	thinning.Infof("Closed badger @ %s\n", db.directory)
	return err
}

// Get returns the value for a key or nil if the key is not present.
func (db *DB) Get(key []byte) ([]byte, error) {
	var value []byte
	err := db.bdp.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	return value, err
}

// Put stores a value for a key.
func (db *DB) Put(key, value []byte) error {
	return db.bdp.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

// DeletePrefix removes all keys beginning with the prefix.
func (db *DB) DeletePrefix(prefix []byte) error {
	return db.bdp.DropPrefix(prefix)
}

// KeysWithPrefix returns all keys beginning with the prefix in sorted order.
func (db *DB) KeysWithPrefix(prefix []byte) ([][]byte, error) {
	var keys [][]byte
	err := db.bdp.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			if !bytes.HasPrefix(key, prefix) {
				break
			}
			keys = append(keys, key)
		}
		return nil
	})
	return keys, err
}

// Batch groups many writes into as few transactions as possible.
type Batch struct {
	wb *badger.WriteBatch
}

// NewBatch returns a batch that must be committed with Commit.
func (db *DB) NewBatch() *Batch {
	return &Batch{wb: db.bdp.NewWriteBatch()}
}

func (b *Batch) Put(key, value []byte) error {
	return b.wb.Set(key, value)
}

// Commit flushes all writes in the batch.
func (b *Batch) Commit() error {
	return b.wb.Flush()
}

// Cancel discards any unwritten entries.
func (b *Batch) Cancel() {
	b.wb.Cancel()
}
