// Package maple implements a copy-on-write in-memory key-value database (KVDB)
// with optional snapshot persistence. It provides a complete implementation of the
// db.KVDB interface with a focus on lock-free reads.
//
// The package focuses on:
//   - Lock-free reads through an atomically published, immutable state map
//   - Atomic batched writes: a batch is applied to a copy which replaces the state as a whole
//   - Optional durability through a snapshot file that is rewritten on every change
//
// Key Components:
//
//   - mapleImpl: The central database structure implementing db.KVDB. Readers load the
//     current state map through an atomic pointer and never block. Writers are serialized
//     by a mutex, copy the state, apply the batch with db.ApplyBatch and publish the copy.
//     Because the published map is never modified, a reader always sees a complete batch
//     or none of it.
//
//   - Snapshot file: When DBOptions.SnapshotPath is set, the new state is written to
//     "<path>.tmp", synced and renamed over the snapshot file before it is published. A
//     crash therefore leaves either the old or the new file behind, never a partial one.
//     The format is shared with Save and Load (see engines/internal) and records the
//     serializer used for the values, so a file written with the json serializer can be
//     read by an instance configured for binary.
//
// Internal Mechanisms:
//
//   - Change detection: db.ApplyBatch skips puts of equal values and removes of missing
//     keys. A batch without changes neither rewrites the snapshot nor publishes a new map.
//
//   - Close: After Close, Write and Load return db.ErrClosed. Reads keep serving the last
//     published state.
//
// Performance Characteristics:
//
//   - Reads: O(1) without locks or allocations (apart from copying set values)
//   - Writes: O(n) in the number of entries because of the state copy, plus the cost of
//     the snapshot file when persistence is enabled. This fits preference files, which are
//     small and read far more often than written.
//
// Usage Example:
//
//	// Create an in-memory database
//	database, _ := maple.NewMapleDB(nil)
//
//	// Create a persistent database
//	database, err := maple.NewMapleDB(&maple.DBOptions{
//		Name:         "settings",
//		SnapshotPath: maple.SnapshotPath("data", "settings"),
//	})
//
//	// Write a batch
//	changed, err := database.Write([]db.Mutation{
//		{Op: db.OpPut, Key: "volume", Value: db.IntValue(7)},
//		{Op: db.OpRemove, Key: "legacy"},
//	})
//
//	// Read it back
//	v, ok := database.Get("volume")
package maple
