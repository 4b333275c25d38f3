package db

import (
	"errors"
	"io"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplMaple Implementation = "maple"
	ImplBolt  Implementation = "bolt"
)

// ErrClosed is returned by write and persistence operations on a closed database.
var ErrClosed = errors.New("db: database is closed")

// Feature represents database features as bit flags
type Feature uint64

const (
	FeatureGet     Feature = 1 << iota // Support for Get and Has operations
	FeatureGetAll                      // Support for GetAll operations
	FeatureWrite                       // Support for batched Write operations
	FeatureDurable                     // Writes survive a process restart
	FeatureSave                        // Support for Save operations
	FeatureLoad                        // Support for Load operations
)

func (f Feature) String() string {
	switch f {
	case FeatureGet:
		return "Get"
	case FeatureGetAll:
		return "GetAll"
	case FeatureWrite:
		return "Write"
	case FeatureDurable:
		return "Durable"
	case FeatureSave:
		return "Save"
	case FeatureLoad:
		return "Load"
	default:
		return "Unknown"
	}
}

type DatabaseInfo struct {
	Name              string         `json:"name"`
	Entries           int            `json:"entries"`
	SizeBytes         int            `json:"size_bytes"`
	DbType            Implementation `json:"db_type"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Mutations
// --------------------------------------------------------------------------

// OpType is the kind of change a Mutation describes.
type OpType uint8

const (
	OpPut OpType = iota
	OpRemove
	OpClear
)

func (o OpType) String() string {
	switch o {
	case OpPut:
		return "Put"
	case OpRemove:
		return "Remove"
	case OpClear:
		return "Clear"
	default:
		return "Unknown"
	}
}

// Mutation is one pending change of a write batch.
// Key and Value are ignored for OpClear, Value is ignored for OpRemove.
type Mutation struct {
	Op    OpType
	Key   string
	Value Value
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// Factory opens the database holding the entries of the store with the given name.
// Opening the same name twice must give access to the same persisted data.
type Factory func(name string) (KVDB, error)

// KVDB defines the interface of a single named key-value container holding typed values.
// Implementations must be safe for concurrent use: any number of readers may run while
// one Write is in progress, and they observe either the state before or after the batch.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Write applies the batch atomically and persists it before returning.
	// A clear anywhere in the batch is applied before all other mutations of the batch.
	// On error, the database is unchanged.
	// The returned slice holds the keys that were changed in batch order,
	// a clear is reported as the empty key.
	Write(batch []Mutation) (changed []string, err error)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value for an exact key.
	// The boolean return value indicates whether a value for the key was found.
	// The returned value does not share memory with the database.
	Get(key string) (value Value, loaded bool)

	// Has checks whether a key exists in the database.
	Has(key string) (loaded bool)

	// GetAll returns a copy of every entry in the database.
	GetAll() (entries map[string]Value)

	// Len returns the number of entries.
	Len() int

	// --------------------------------------------------------------------------
	// Persistence Operations
	// --------------------------------------------------------------------------

	// Save writes a snapshot of the current state of the database to the provided io.Writer.
	Save(w io.Writer) (err error)

	// Load replaces the database state with the snapshot provided by an io.Reader.
	Load(r io.Reader) (err error)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the database implementation supports the specified feature.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// Close closes the database.
	Close() (err error)
}
