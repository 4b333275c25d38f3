// Package testing provides standardised tests and benchmarks for
// database implementations that satisfy the db.KVDB interface.
//
// The package contains:
//   - testing: A conformance suite for the KVDB contract (batched writes, clear-first
//     ordering, changed key reporting, copy semantics, Save/Load, Close)
//   - reopen tests: Durability checks for engines that persist entries per name
//   - benchmark: Performance tests for measuring throughput of common database operations
//
// This package is particularly useful for:
//   - Applications that need to select the most appropriate database implementation
//     based on performance characteristics
//   - Database developers implementing the KVDB interface
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func() db.KVDB {
//		database, _ := NewMyDatabase()
//		return database
//	}
//
//	// Running the standard test suite
//	dbtesting.RunKVDBTests(t, "MyDatabase", factory)
//
//	// Running the durability tests against a fresh directory
//	dir := t.TempDir()
//	dbtesting.RunKVDBReopenTests(t, "MyDatabase", func(name string) (db.KVDB, error) {
//		return OpenMyDatabase(dir, name)
//	})
//
//	// Running performance benchmarks
//	dbtesting.RunKVDBBenchmarks(b, "MyDatabase", factory)
package testing
