package bolt

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/prefKV/lib/db"
	"github.com/ValentinKolb/prefKV/lib/db/serializer"
	dbtesting "github.com/ValentinKolb/prefKV/lib/db/testing"
)

func Test(t *testing.T) {
	dir := t.TempDir()
	var counter atomic.Int64

	// every conformance run gets its own file
	dbtesting.RunKVDBTests(t, "BoltDB", func() db.KVDB {
		name := fmt.Sprintf("conformance-%d", counter.Add(1))
		database, err := NewBoltDB(DBOptions{Name: name, Path: FilePath(dir, name)})
		if err != nil {
			panic(err)
		}
		return database
	})

	reopenDir := t.TempDir()
	dbtesting.RunKVDBReopenTests(t, "BoltDB", func(name string) (db.KVDB, error) {
		return NewBoltDB(DBOptions{Name: name, Path: FilePath(reopenDir, name)})
	})
}

func TestKeepsSerializerOfExistingFile(t *testing.T) {
	path := FilePath(t.TempDir(), "serializer")

	database, err := NewBoltDB(DBOptions{Path: path, Serializer: serializer.NewJSONSerializer()})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := database.Write([]db.Mutation{{Op: db.OpPut, Key: "k", Value: db.FloatValue(1.5)}}); err != nil {
		t.Fatal(err)
	}
	if err := database.Close(); err != nil {
		t.Fatal(err)
	}

	// reopening with another serializer still decodes the json values
	reopened, err := NewBoltDB(DBOptions{Path: path, Serializer: serializer.NewBinarySerializer()})
	if err != nil {
		t.Fatalf("failed to reopen database: %v", err)
	}
	defer reopened.Close()

	v, ok := reopened.Get("k")
	if !ok || v.AsFloat() != 1.5 {
		t.Errorf("expected float 1.5, got %v (%v)", v, ok)
	}
}

func TestLockedFile(t *testing.T) {
	path := FilePath(t.TempDir(), "locked")

	first, err := NewBoltDB(DBOptions{Path: path})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer first.Close()

	if _, err := NewBoltDB(DBOptions{Path: path, Timeout: 50 * time.Millisecond}); err == nil {
		t.Errorf("expected error when the file is locked by another handle")
	}
}

func TestMissingPath(t *testing.T) {
	if _, err := NewBoltDB(DBOptions{}); err == nil {
		t.Errorf("expected error without path")
	}
}

func TestCloseTwice(t *testing.T) {
	database, err := NewBoltDB(DBOptions{Path: FilePath(t.TempDir(), "close")})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := database.Close(); err != nil {
		t.Fatal(err)
	}
	if err := database.Close(); err != nil {
		t.Errorf("second Close should be a no-op, got %v", err)
	}
	if _, ok := database.Get("k"); ok {
		t.Errorf("closed database must not report entries")
	}
}

func Benchmark(b *testing.B) {
	dir := b.TempDir()
	var counter atomic.Int64
	dbtesting.RunKVDBBenchmarks(b, "BoltDB", func() db.KVDB {
		name := fmt.Sprintf("bench-%d", counter.Add(1))
		database, err := NewBoltDB(DBOptions{Name: name, Path: FilePath(dir, name)})
		if err != nil {
			panic(err)
		}
		return database
	})
}
