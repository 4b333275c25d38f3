package maple

import (
	"os"
	"testing"

	"github.com/ValentinKolb/prefKV/lib/db"
	"github.com/ValentinKolb/prefKV/lib/db/serializer"
	dbtesting "github.com/ValentinKolb/prefKV/lib/db/testing"
)

func newInMemory() db.KVDB {
	database, err := NewMapleDB(nil)
	if err != nil {
		panic(err)
	}
	return database
}

func Test(t *testing.T) {
	dbtesting.RunKVDBTests(t, "MapleDB", newInMemory)

	dbtesting.RunKVDBTests(t, "MapleDB(snapshot)", func() db.KVDB {
		database, err := NewMapleDB(&DBOptions{
			Name:         "conformance",
			SnapshotPath: SnapshotPath(t.TempDir(), "conformance"),
		})
		if err != nil {
			panic(err)
		}
		return database
	})

	dir := t.TempDir()
	dbtesting.RunKVDBReopenTests(t, "MapleDB(snapshot)", func(name string) (db.KVDB, error) {
		return NewMapleDB(&DBOptions{
			Name:         name,
			SnapshotPath: SnapshotPath(dir, name),
			Serializer:   serializer.NewJSONSerializer(),
		})
	})
}

func TestFeatures(t *testing.T) {
	inMemory := newInMemory()
	if inMemory.SupportsFeature(db.FeatureDurable) {
		t.Errorf("in-memory instance must not report FeatureDurable")
	}

	persistent, err := NewMapleDB(&DBOptions{SnapshotPath: SnapshotPath(t.TempDir(), "features")})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if !persistent.SupportsFeature(db.FeatureDurable | db.FeatureWrite) {
		t.Errorf("persistent instance must report FeatureDurable")
	}
}

func TestCorruptSnapshot(t *testing.T) {
	path := SnapshotPath(t.TempDir(), "corrupt")
	if err := os.WriteFile(path, []byte("not a snapshot"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewMapleDB(&DBOptions{SnapshotPath: path}); err == nil {
		t.Errorf("expected error when opening a corrupt snapshot")
	}
}

func TestNoopWriteKeepsFile(t *testing.T) {
	path := SnapshotPath(t.TempDir(), "noop")
	database, err := NewMapleDB(&DBOptions{SnapshotPath: path})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	// nothing changed, so no snapshot is written
	if _, err := database.Write([]db.Mutation{{Op: db.OpRemove, Key: "missing"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no snapshot file after a write without changes, got %v", err)
	}

	if _, err := database.Write([]db.Mutation{{Op: db.OpPut, Key: "k", Value: db.BoolValue(true)}}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected snapshot file after a write, got %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file must not remain, got %v", err)
	}
}

func Benchmark(t *testing.B) {
	dbtesting.RunKVDBBenchmarks(t, "MapleDB", newInMemory)
}
