package badger

import (
	"github.com/dgraph-io/badger/v3"
)

// Options are the tunable settings of the index database.
type Options struct {
	// ReadOnly opens an existing database without allowing writes.
	ReadOnly bool `toml:"read_only"`

	// ValueLogFileSize is the maximum size in bytes of each value log file.  Zero uses
	// the badger default.
	ValueLogFileSize int64 `toml:"value_log_file_size"`
}

func (o Options) badgerOptions(path string) badger.Options {
	opts := badger.DefaultOptions(path)
	opts.NumVersionsToKeep = 1
	opts.SyncWrites = DefaultSyncWrites
	opts.ValueThreshold = DefaultValueThreshold
	opts.Logger = badgerLogger{}
	opts.ReadOnly = o.ReadOnly
	if o.ValueLogFileSize > 0 {
		opts = opts.WithValueLogFileSize(o.ValueLogFileSize)
	}
	return opts
}
