// Package lstore implements the local store handle (store.IStore) on top of any db.KVDB.
// The database is opened by a db.Factory, one database per store name, and all writes
// of a handle are executed by one writer goroutine.
//
// Key Features:
//   - Deferred writes (Apply) that return immediately and keep their issue order
//   - Synchronous writes (Commit) that are ordered after all earlier deferred writes
//   - Change listeners notified once per changed key after every successful write
//   - VictoriaMetrics counters, histogram and gauge per store
//
// Implementation Details:
//
//   - Write Queue: A lock-free multi-producer single-consumer queue feeds the writer
//     goroutine. Producers append with compare-and-swap and never wait for each other.
//     Items of one goroutine are consumed in push order, which gives deferred writes of
//     one goroutine their ordering guarantee. Commit pushes its batch on the same queue
//     and waits for the result, Flush pushes a marker and waits until it is reached.
//
//   - Editors: An editor collects puts and removes (a later mutation of the same key
//     replaces the earlier one) and a clear flag. The terminal operation hands the batch
//     to the queue with the clear first. An empty key or a second terminal operation is
//     rejected: Commit returns false, Apply logs a warning and drops the batch.
//
//   - Listener Dispatch: The engine reports the keys a batch actually changed. The writer
//     goroutine calls every registered listener once per changed key, a clear is reported
//     as the empty key. A panic in a listener is recovered and logged.
//
//   - Failure Handling: A failed commit returns false and leaves the store unchanged. A
//     failed deferred write is logged at error level and counted in
//     prefkv_write_errors_total, the caller never learns about it.
//
// Metrics:
//
//	prefkv_writes_total{store,mode}         successful writes by mode (apply, commit)
//	prefkv_write_errors_total{store,mode}   failed or rejected writes by mode
//	prefkv_write_duration_seconds{store}    histogram of engine write latency
//	prefkv_pending_writes{store}            queued writes not yet executed
//
// Thread Safety:
//
//	All methods of the handle are thread-safe. Editors are meant to be used by the
//	goroutine that created them, but are internally synchronized.
//
// Usage Example:
//
//	factory, _ := engines.NewFactory(engines.EngineBolt, "data", nil)
//	registry := store.NewRegistry(lstore.Opener(factory))
//
//	s, err := registry.Resolve("settings")
//	s.Edit().Put("volume", db.IntValue(7)).Apply()
//	ok := s.Edit().Remove("legacy").Commit()
//	s.Flush()
package lstore
