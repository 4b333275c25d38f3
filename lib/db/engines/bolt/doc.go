// Package bolt implements the db.KVDB interface on top of bbolt (go.etcd.io/bbolt),
// an embedded B+ tree database with ACID transactions.
//
// Every store gets its own file (see FilePath). Inside the file the "entries" bucket
// maps keys to values encoded with a serializer.IValueSerializer, and the "meta" bucket
// records the name of that serializer. A file therefore always decodes with the
// serializer it was created with, even if the configuration changes later.
//
// A Write batch runs in a single bbolt update transaction: either all mutations are
// committed and synced, or none. A clear drops and recreates the entries bucket.
// Reads run in their own read transactions and never block writers.
//
// bbolt holds an exclusive file lock while a database is open. Opening the same file
// twice (from this or another process) waits for DBOptions.Timeout and then fails.
package bolt
