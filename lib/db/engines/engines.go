// Package engines selects and opens the storage engine for a named store.
package engines

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/prefKV/lib/db"
	"github.com/ValentinKolb/prefKV/lib/db/engines/bolt"
	"github.com/ValentinKolb/prefKV/lib/db/engines/maple"
	"github.com/ValentinKolb/prefKV/lib/db/serializer"
)

// Engine names accepted by NewFactory
const (
	EngineBolt   = "bolt"   // one bbolt file per store
	EngineMaple  = "maple"  // in-memory with one snapshot file per store
	EngineMemory = "memory" // in-memory only, nothing survives the process
)

// Names lists the supported engines
var Names = []string{EngineBolt, EngineMaple, EngineMemory}

// NewFactory returns a db.Factory that opens stores with the given engine below dataDir.
// The data directory is created on first open. A nil serializer selects binary.
func NewFactory(engine, dataDir string, s serializer.IValueSerializer) (db.Factory, error) {
	if s == nil {
		s = serializer.NewBinarySerializer()
	}

	switch engine {
	case EngineMemory:
		return func(name string) (db.KVDB, error) {
			return maple.NewMapleDB(&maple.DBOptions{Name: name, Serializer: s})
		}, nil

	case EngineMaple:
		if dataDir == "" {
			return nil, fmt.Errorf("engine %s requires a data directory", engine)
		}
		return func(name string) (db.KVDB, error) {
			if err := os.MkdirAll(dataDir, 0700); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
			return maple.NewMapleDB(&maple.DBOptions{
				Name:         name,
				SnapshotPath: maple.SnapshotPath(dataDir, name),
				Serializer:   s,
			})
		}, nil

	case EngineBolt:
		if dataDir == "" {
			return nil, fmt.Errorf("engine %s requires a data directory", engine)
		}
		return func(name string) (db.KVDB, error) {
			if err := os.MkdirAll(dataDir, 0700); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
			return bolt.NewBoltDB(bolt.DBOptions{
				Name:       name,
				Path:       bolt.FilePath(dataDir, name),
				Serializer: s,
			})
		}, nil

	default:
		return nil, fmt.Errorf("invalid engine %s (expected one of: %s, %s, %s)", engine, EngineBolt, EngineMaple, EngineMemory)
	}
}
