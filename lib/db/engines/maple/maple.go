package maple

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/prefKV/lib/db"
	"github.com/ValentinKolb/prefKV/lib/db/engines/internal"
	"github.com/ValentinKolb/prefKV/lib/db/serializer"
	"github.com/lni/dragonboat/v4/logger"
)

var plog = logger.GetLogger("maple")

// --------------------------------------------------------------------------
// Core Maple database structure
// --------------------------------------------------------------------------

// mapleImpl implements an in-memory database with copy-on-write state.
// Readers load the current state without locking, writers build the next
// state from a copy, persist it (if a snapshot path is set) and publish it.
type mapleImpl struct {
	name  string
	state atomic.Pointer[map[string]db.Value] // current published state (never mutated)

	writeMu      sync.Mutex // serializes writers
	snapshotPath string
	serializer   serializer.IValueSerializer
	closed       atomic.Bool
}

// DBOptions configures the mapleImpl behavior during initialization
type DBOptions struct {
	Name         string                      // Name of the store (for info and logging)
	SnapshotPath string                      // File the state is persisted to ("" = in-memory only)
	Serializer   serializer.IValueSerializer // Serializer for snapshot values (nil = binary)
}

// DefaultOptions returns the default mapleImpl options (in-memory only)
func DefaultOptions() *DBOptions {
	return &DBOptions{
		Serializer: serializer.NewBinarySerializer(),
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewMapleDB creates a new MapleDB instance with the specified options (optional).
// If a snapshot path is configured and the file exists, the state is loaded from it.
func NewMapleDB(opts *DBOptions) (db.KVDB, error) {

	// Generate default options if not provided
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Serializer == nil {
		opts.Serializer = serializer.NewBinarySerializer()
	}

	newDB := &mapleImpl{
		name:         opts.Name,
		snapshotPath: opts.SnapshotPath,
		serializer:   opts.Serializer,
	}
	empty := make(map[string]db.Value)
	newDB.state.Store(&empty)

	if newDB.snapshotPath == "" {
		return newDB, nil
	}

	f, err := os.Open(newDB.snapshotPath)
	if os.IsNotExist(err) {
		plog.Debugf("no snapshot for %s at %s, starting empty", newDB.name, newDB.snapshotPath)
		return newDB, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	entries, err := internal.ReadSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", newDB.snapshotPath, err)
	}
	newDB.state.Store(&entries)
	plog.Debugf("loaded %d entries for %s", len(entries), newDB.name)

	return newDB, nil
}

// current returns the published state. The map must not be modified.
func (maple *mapleImpl) current() map[string]db.Value {
	return *maple.state.Load()
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Write applies the batch to a copy of the current state, persists the copy
// and publishes it. If persisting fails, the published state stays unchanged.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Write(batch []db.Mutation) ([]string, error) {
	clear, ops, err := db.PrepareBatch(batch)
	if err != nil {
		return nil, err
	}

	maple.writeMu.Lock()
	defer maple.writeMu.Unlock()

	if maple.closed.Load() {
		return nil, db.ErrClosed
	}

	// copy the current state, values are immutable so a shallow copy is enough
	old := maple.current()
	next := make(map[string]db.Value, len(old)+len(ops))
	for k, v := range old {
		next[k] = v
	}

	changed := db.ApplyBatch(next, clear, ops)
	if len(changed) == 0 {
		return changed, nil
	}

	if maple.snapshotPath != "" {
		if err := maple.persist(next); err != nil {
			return nil, err
		}
	}

	maple.state.Store(&next)
	return changed, nil
}

// persist writes the entries to a temporary file next to the snapshot and renames it into place.
//
// Thread-safety: must be called with writeMu held.
func (maple *mapleImpl) persist(entries map[string]db.Value) error {
	tmpPath := maple.snapshotPath + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}

	if err := internal.WriteSnapshot(f, entries, maple.serializer); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("syncing snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, maple.snapshotPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Read Operations
// --------------------------------------------------------------------------

// Get retrieves a value for a key.
// The returned value is a copy of the stored data and therefore safe to use and modify.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Get(key string) (db.Value, bool) {
	v, ok := maple.current()[key]
	if !ok {
		return db.Value{}, false
	}
	return v.Clone(), true
}

// Has checks if a key exists in the database.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Has(key string) bool {
	_, ok := maple.current()[key]
	return ok
}

// GetAll returns a copy of all entries at the time of the call.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) GetAll() map[string]db.Value {
	state := maple.current()
	entries := make(map[string]db.Value, len(state))
	for k, v := range state {
		entries[k] = v.Clone()
	}
	return entries
}

func (maple *mapleImpl) Len() int {
	return len(maple.current())
}

// --------------------------------------------------------------------------
// Persistence Operations
// --------------------------------------------------------------------------

// Save writes the current state to the writer.
// Concurrent reading and writing is allowed during Save operation.
func (maple *mapleImpl) Save(w io.Writer) error {
	return internal.WriteSnapshot(w, maple.current(), maple.serializer)
}

// Load replaces the current state with the snapshot read from r.
// With a snapshot path configured, the loaded state is persisted before it is published.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Load(r io.Reader) error {
	entries, err := internal.ReadSnapshot(r)
	if err != nil {
		return err
	}

	maple.writeMu.Lock()
	defer maple.writeMu.Unlock()

	if maple.closed.Load() {
		return db.ErrClosed
	}
	if maple.snapshotPath != "" {
		if err := maple.persist(entries); err != nil {
			return err
		}
	}
	maple.state.Store(&entries)
	return nil
}

// --------------------------------------------------------------------------
// KVDB Interface Implementation - Features and Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the database
func (maple *mapleImpl) GetInfo() db.DatabaseInfo {
	state := maple.current()

	// estimate the size: key + string payload + set members + 8 bytes number
	size := 0
	for k, v := range state {
		size += len(k) + len(v.Str) + 8
		for _, m := range v.Set {
			size += len(m)
		}
	}

	meta := &struct {
		SnapshotPath string `json:"snapshot_path,omitempty"`
		Serializer   string `json:"serializer"`
	}{
		SnapshotPath: maple.snapshotPath,
		Serializer:   maple.serializer.Name(),
	}

	var supportedFeatures []db.Feature
	for _, f := range []db.Feature{db.FeatureGet, db.FeatureGetAll, db.FeatureWrite, db.FeatureDurable, db.FeatureSave, db.FeatureLoad} {
		if maple.SupportsFeature(f) {
			supportedFeatures = append(supportedFeatures, f)
		}
	}

	return db.DatabaseInfo{
		Name:              maple.name,
		Entries:           len(state),
		SizeBytes:         size,
		DbType:            db.ImplMaple,
		SupportedFeatures: supportedFeatures,
		Metadata:          meta,
	}
}

// SupportsFeature checks if this implementation supports a specific KVDB feature.
// Only instances with a snapshot path are durable.
func (maple *mapleImpl) SupportsFeature(feature db.Feature) bool {
	supportedFeatures := db.FeatureGet |
		db.FeatureGetAll |
		db.FeatureWrite |
		db.FeatureSave |
		db.FeatureLoad
	if maple.snapshotPath != "" {
		supportedFeatures |= db.FeatureDurable
	}
	return supportedFeatures&feature == feature
}

// Close rejects further writes. Reads keep working on the last published state.
func (maple *mapleImpl) Close() error {
	maple.writeMu.Lock()
	defer maple.writeMu.Unlock()
	maple.closed.Store(true)
	return nil
}

// SnapshotPath returns the snapshot file used for the store with the given name in dir.
func SnapshotPath(dir, name string) string {
	return filepath.Join(dir, name+".maple")
}
