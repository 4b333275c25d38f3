// Package db provides a standardized interface for the storage engines behind a
// preference store. It defines the KVDB interface, the typed Value that every entry
// holds, and the batch helpers shared by all engines.
//
// The package focuses on:
//   - A unified interface for typed key-value containers
//   - Atomic batched writes that report the keys they changed
//   - Feature discovery through capability flags
//   - Standardized persistence operations and metadata reporting
//
// Key Components:
//
//   - Value: A tagged union of the supported value types (string, int, long, float,
//     bool and string set). Floats are stored as their IEEE-754 bit pattern so that every
//     float, including NaN and negative zero, survives a round trip bit-exactly. String
//     sets are kept sorted and free of duplicates, which makes equal sets compare equal.
//
//   - Mutation: One pending change of a write batch (put, remove or clear).
//
//   - KVDB Interface: The core interface that all database implementations must satisfy.
//     It provides reads (Get, Has, GetAll, Len), batched writes (Write), metadata
//     retrieval (GetInfo) and persistence operations (Save, Load).
//
//   - Factory: Opens the KVDB that holds the entries of a named store. The store layer
//     only knows factories, so engines can be swapped without code changes.
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     can advertise through the SupportsFeature method. FeatureDurable tells callers
//     whether entries survive a process restart.
//
// Note on Write Batches:
//   - A batch is validated completely before anything is applied. An empty key or an
//     invalid value type fails the whole batch and leaves the database unchanged.
//   - A clear anywhere in the batch is applied first, all puts and removes follow in
//     batch order. This mirrors an editor where Clear() wipes the state the edit
//     started from, independent of when it was called.
//   - Only real changes are reported: putting the value a key already holds or removing
//     a missing key is skipped. A clear is always reported as the empty key.
//
// Related Packages:
//
// The engines/maple package (github.com/ValentinKolb/prefKV/lib/db/engines/maple) provides
// a copy-on-write in-memory implementation with optional snapshot file persistence.
//
// The engines/bolt package (github.com/ValentinKolb/prefKV/lib/db/engines/bolt) provides a
// durable implementation backed by one bbolt database file per store.
//
// The serializer package (github.com/ValentinKolb/prefKV/lib/db/serializer) encodes
// values for the on-disk formats of both engines.
//
// The testing package (github.com/ValentinKolb/prefKV/lib/db/testing) provides
// standardized tests and benchmarks for database implementations that satisfy the db.KVDB interface.
//   - RunKVDBTests: Runs a standardized test suite to validate implementations
//   - RunKVDBReopenTests: Validates that durable implementations keep entries across restarts
//   - RunKVDBBenchmarks: Provides performance benchmarks for comparing implementations
package db
