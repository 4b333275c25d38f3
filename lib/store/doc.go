// Package store provides typed, named preference stores on top of the db.KVDB engines.
// It holds the registry that keeps one handle per store name, the typed accessor used
// by applications, and the write transaction abstraction with its two commit disciplines.
//
// The package focuses on:
//   - A unified handle interface (IStore) for reading and editing one named store
//   - Exactly one open handle per store name, also under concurrent first access
//   - Typed reads with fixed defaults and the double-as-long-bits encoding
//   - Deferred (Apply) and synchronous (Commit) writes
//
// Key Components:
//
//   - IStore Interface: The handle of one opened store. Reads go straight to the
//     underlying database and never fail; writes are collected by an IEditor and
//     executed by the handle. Implementations live in sub packages, see lstore.
//
//   - IEditor Interface: A write transaction. It accumulates puts, removes and a
//     clear and is consumed by exactly one of its terminal operations:
//     Apply returns immediately and writes eventually (failures are only logged),
//     Commit blocks until the batch is persisted and reports success as a bool.
//
//   - Registry: Caches one IStore per name. The fast path is a lock-free map lookup,
//     the first access to a name opens the store inside xsync.MapOf.Compute, which
//     serializes concurrent first accesses to the same name. A failed open is returned
//     as *Error with RetCOpenFailed and is not cached.
//
//   - Prefs: An immutable accessor bound to one store. Instead of a process-wide
//     "current store" that every call switches, callers hold one Prefs per store and
//     pass it around, which makes concurrent use of different stores safe.
//
//   - Editor: The typed builder on top of IEditor (PutString, PutInt, ..., Apply, Commit).
//
//   - Error System: A structured error reporting mechanism using typed error codes
//     and descriptive messages. Errors wrap sentinel values (ErrInvalidName, ...) so
//     that callers can use errors.Is as well as errors.As.
//
// Value Semantics:
//
//	Values are type-tagged by the engines. Reading a key with a getter of another type
//	returns the default instead of reinterpreting the stored payload. Doubles are the one
//	exception by construction: PutDouble stores the IEEE-754 bits as a long entry and
//	GetDouble checks presence first, then reinterprets the long bits. A key written with
//	PutDouble therefore also reads as a long.
//
// Usage Example:
//
//	registry := store.NewRegistry(lstore.Opener(factory))
//	prefs, err := registry.Prefs("settings")
//	if err != nil {
//		return err // RetCOpenFailed or RetCInvalidOperation
//	}
//
//	ok := prefs.Edit().PutString("theme", "dark").PutDouble("scale", 1.25).Commit()
//	prefs.ApplyBool("onboarded", true)
//	theme := prefs.GetStringOr("theme", "light")
package store
