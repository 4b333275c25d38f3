package bolt

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/prefKV/lib/db"
	"github.com/ValentinKolb/prefKV/lib/db/engines/internal"
	"github.com/ValentinKolb/prefKV/lib/db/serializer"
	"github.com/lni/dragonboat/v4/logger"
	bolt "go.etcd.io/bbolt"
)

var plog = logger.GetLogger("bolt")

var (
	entriesBucket = []byte("entries")
	metaBucket    = []byte("meta")
	serializerKey = []byte("serializer")
)

// --------------------------------------------------------------------------
// Core Bolt database structure
// --------------------------------------------------------------------------

// boltImpl implements db.KVDB on top of a bbolt file.
// Entries live in the "entries" bucket, the "meta" bucket records the serializer
// the values were written with.
type boltImpl struct {
	name       string
	path       string
	db         *bolt.DB
	serializer serializer.IValueSerializer
	closed     atomic.Bool
}

// DBOptions configures the boltImpl behavior during initialization
type DBOptions struct {
	Name       string                      // Name of the store (for info and logging)
	Path       string                      // Path of the bbolt file, created if missing
	Serializer serializer.IValueSerializer // Serializer for new files (nil = binary)
	Timeout    time.Duration               // How long to wait for the file lock (0 = 1s)
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewBoltDB opens or creates the bbolt file at opts.Path.
// An existing file keeps the serializer it was created with, even if opts names another one.
func NewBoltDB(opts DBOptions) (db.KVDB, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("bolt: missing path")
	}
	if opts.Serializer == nil {
		opts.Serializer = serializer.NewBinarySerializer()
	}
	if opts.Timeout == 0 {
		opts.Timeout = time.Second
	}

	bdb, err := bolt.Open(opts.Path, 0600, &bolt.Options{Timeout: opts.Timeout})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	newDB := &boltImpl{
		name:       opts.Name,
		path:       opts.Path,
		db:         bdb,
		serializer: opts.Serializer,
	}

	err = bdb.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(entriesBucket); err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}
		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return fmt.Errorf("creating bucket: %w", err)
		}

		stored := meta.Get(serializerKey)
		if stored == nil {
			return meta.Put(serializerKey, []byte(opts.Serializer.Name()))
		}
		if string(stored) != opts.Serializer.Name() {
			s, err := serializer.ByName(string(stored))
			if err != nil {
				return err
			}
			plog.Warningf("%s was written with serializer %s, ignoring configured %s", opts.Path, stored, opts.Serializer.Name())
			newDB.serializer = s
		}
		return nil
	})
	if err != nil {
		_ = bdb.Close()
		return nil, err
	}

	return newDB, nil
}

// FilePath returns the bbolt file used for the store with the given name in dir.
func FilePath(dir, name string) string {
	return filepath.Join(dir, name+".db")
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Write applies the batch in a single bbolt transaction.
//
// Thread-safety: This method is thread-safe, bbolt serializes writers.
func (b *boltImpl) Write(batch []db.Mutation) ([]string, error) {
	clear, ops, err := db.PrepareBatch(batch)
	if err != nil {
		return nil, err
	}
	if b.closed.Load() {
		return nil, db.ErrClosed
	}

	var changed []string
	err = b.db.Update(func(tx *bolt.Tx) error {
		changed = changed[:0]
		bucket := tx.Bucket(entriesBucket)

		if clear {
			if err := tx.DeleteBucket(entriesBucket); err != nil {
				return err
			}
			var err error
			if bucket, err = tx.CreateBucket(entriesBucket); err != nil {
				return err
			}
			changed = append(changed, "")
		}

		for _, m := range ops {
			key := []byte(m.Key)
			old := bucket.Get(key)

			switch m.Op {
			case db.OpPut:
				if old != nil {
					var current db.Value
					if b.serializer.Deserialize(old, &current) == nil && current.Equal(m.Value) {
						continue
					}
				}
				data, err := b.serializer.Serialize(m.Value)
				if err != nil {
					return fmt.Errorf("encoding %s: %w", m.Key, err)
				}
				if err := bucket.Put(key, data); err != nil {
					return err
				}
			case db.OpRemove:
				if old == nil {
					continue
				}
				if err := bucket.Delete(key); err != nil {
					return err
				}
			}
			changed = append(changed, m.Key)
		}
		return nil
	})
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return nil, db.ErrClosed
	}
	if err != nil {
		return nil, err
	}
	return changed, nil
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Read Operations
// --------------------------------------------------------------------------

// view runs fn in a read transaction on the entries bucket.
// Errors are logged, reads of a closed database see an empty bucket.
func (b *boltImpl) view(fn func(bucket *bolt.Bucket) error) {
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(entriesBucket)
		if bucket == nil {
			return nil
		}
		return fn(bucket)
	})
	if err != nil && !errors.Is(err, bolt.ErrDatabaseNotOpen) {
		plog.Errorf("reading %s failed: %v", b.path, err)
	}
}

// Get retrieves and decodes the value for a key.
// Values that cannot be decoded are logged and reported as missing.
func (b *boltImpl) Get(key string) (value db.Value, loaded bool) {
	b.view(func(bucket *bolt.Bucket) error {
		data := bucket.Get([]byte(key))
		if data == nil {
			return nil
		}
		if err := b.serializer.Deserialize(data, &value); err != nil {
			return fmt.Errorf("decoding %s: %w", key, err)
		}
		loaded = true
		return nil
	})
	if !loaded {
		return db.Value{}, false
	}
	return value, loaded
}

func (b *boltImpl) Has(key string) (loaded bool) {
	b.view(func(bucket *bolt.Bucket) error {
		loaded = bucket.Get([]byte(key)) != nil
		return nil
	})
	return loaded
}

// GetAll decodes every entry. Entries that cannot be decoded are skipped and logged.
func (b *boltImpl) GetAll() map[string]db.Value {
	entries := make(map[string]db.Value)
	b.view(func(bucket *bolt.Bucket) error {
		return bucket.ForEach(func(k, data []byte) error {
			var v db.Value
			if err := b.serializer.Deserialize(data, &v); err != nil {
				plog.Warningf("skipping %s in %s: %v", k, b.path, err)
				return nil
			}
			entries[string(k)] = v
			return nil
		})
	})
	return entries
}

func (b *boltImpl) Len() (n int) {
	b.view(func(bucket *bolt.Bucket) error {
		n = bucket.Stats().KeyN
		return nil
	})
	return n
}

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

// Save writes a snapshot of one read transaction to w.
func (b *boltImpl) Save(w io.Writer) error {
	entries := make(map[string]db.Value)
	err := b.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(entriesBucket).ForEach(func(k, data []byte) error {
			var v db.Value
			if err := b.serializer.Deserialize(data, &v); err != nil {
				return fmt.Errorf("decoding %s: %w", k, err)
			}
			entries[string(k)] = v
			return nil
		})
	})
	if err != nil {
		return err
	}
	return internal.WriteSnapshot(w, entries, b.serializer)
}

// Load replaces all entries with the snapshot read from r in a single transaction.
func (b *boltImpl) Load(r io.Reader) error {
	entries, err := internal.ReadSnapshot(r)
	if err != nil {
		return err
	}
	if b.closed.Load() {
		return db.ErrClosed
	}

	err = b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(entriesBucket); err != nil {
			return err
		}
		bucket, err := tx.CreateBucket(entriesBucket)
		if err != nil {
			return err
		}
		for k, v := range entries {
			data, err := b.serializer.Serialize(v)
			if err != nil {
				return fmt.Errorf("encoding %s: %w", k, err)
			}
			if err := bucket.Put([]byte(k), data); err != nil {
				return err
			}
		}
		return nil
	})
	if errors.Is(err, bolt.ErrDatabaseNotOpen) {
		return db.ErrClosed
	}
	return err
}

// --------------------------------------------------------------------------
// KVDB Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the database
func (b *boltImpl) GetInfo() db.DatabaseInfo {
	var (
		entries int
		size    int64
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		entries = tx.Bucket(entriesBucket).Stats().KeyN
		size = tx.Size()
		return nil
	})
	if err != nil && !errors.Is(err, bolt.ErrDatabaseNotOpen) {
		plog.Errorf("reading info of %s failed: %v", b.path, err)
	}

	meta := &struct {
		Path       string `json:"path"`
		Serializer string `json:"serializer"`
	}{
		Path:       b.path,
		Serializer: b.serializer.Name(),
	}

	return db.DatabaseInfo{
		Name:      b.name,
		Entries:   entries,
		SizeBytes: int(size),
		DbType:    db.ImplBolt,
		SupportedFeatures: []db.Feature{
			db.FeatureGet, db.FeatureGetAll, db.FeatureWrite, db.FeatureDurable, db.FeatureSave, db.FeatureLoad,
		},
		Metadata: meta,
	}
}

// SupportsFeature checks if this implementation supports a specific KVDB feature.
func (b *boltImpl) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeatureGet |
		db.FeatureGetAll |
		db.FeatureWrite |
		db.FeatureDurable |
		db.FeatureSave |
		db.FeatureLoad
	return supportedFeatures&feature == feature
}

// Close releases the file lock. Closing twice is a no-op.
func (b *boltImpl) Close() error {
	if b.closed.Swap(true) {
		return nil
	}
	return b.db.Close()
}
