package testing

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"testing"

	"github.com/ValentinKolb/prefKV/lib/db"
)

// DBFactory is a function that creates a new, empty instance of a KVDB implementation
type DBFactory func() db.KVDB

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Write&Get", func(t *testing.T) {
			testWriteGet(t, factory())
		})

		t.Run("GetReturnsCopy", func(t *testing.T) {
			testGetReturnsCopy(t, factory())
		})

		t.Run("Remove", func(t *testing.T) {
			testRemove(t, factory())
		})

		t.Run("ChangedKeys", func(t *testing.T) {
			testChangedKeys(t, factory())
		})

		t.Run("ClearFirst", func(t *testing.T) {
			testClearFirst(t, factory())
		})

		t.Run("InvalidBatch", func(t *testing.T) {
			testInvalidBatch(t, factory())
		})

		t.Run("TypeReplace", func(t *testing.T) {
			testTypeReplace(t, factory())
		})

		t.Run("GetAll", func(t *testing.T) {
			testGetAll(t, factory())
		})

		t.Run("SaveLoad", func(t *testing.T) {
			testSaveLoad(t, factory)
		})

		t.Run("Close", func(t *testing.T) {
			testClose(t, factory())
		})

		t.Run("RealisticUsage", func(t *testing.T) {
			testRealisticUsage(t, factory())
		})
	})
}

// RunKVDBReopenTests checks that a durable implementation keeps its entries across
// close and reopen. The open function must return the same persisted data for equal names.
func RunKVDBReopenTests(t *testing.T, name string, open db.Factory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Reopen", func(t *testing.T) {
			testReopen(t, open)
		})

		t.Run("ReopenAfterClear", func(t *testing.T) {
			testReopenAfterClear(t, open)
		})

		t.Run("SeparateNames", func(t *testing.T) {
			testSeparateNames(t, open)
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// Checks if the database supports the specified feature
// Skip the test if it is not supported
func requireFeature(t testing.TB, database db.KVDB, feature db.Feature) {
	if !database.SupportsFeature(feature) {
		t.Skip()
	}
}

func put(key string, v db.Value) db.Mutation {
	return db.Mutation{Op: db.OpPut, Key: key, Value: v}
}

func remove(key string) db.Mutation {
	return db.Mutation{Op: db.OpRemove, Key: key}
}

func clearAll() db.Mutation {
	return db.Mutation{Op: db.OpClear}
}

func mustWrite(t testing.TB, database db.KVDB, batch ...db.Mutation) []string {
	t.Helper()
	changed, err := database.Write(batch)
	if err != nil {
		t.Fatalf("Unexpected error during Write: %v", err)
	}
	return changed
}

func mustOpen(t testing.TB, open db.Factory, name string) db.KVDB {
	t.Helper()
	database, err := open(name)
	if err != nil {
		t.Fatalf("Unexpected error opening %s: %v", name, err)
	}
	return database
}

// sampleValues holds one value of every type including edge values
func sampleValues() map[string]db.Value {
	return map[string]db.Value{
		"string":       db.StringValue("hello world"),
		"string-empty": db.StringValue(""),
		"string-utf8":  db.StringValue("grüße 🌍"),
		"int":          db.IntValue(math.MinInt32),
		"long":         db.LongValue(math.MaxInt64),
		"float":        db.FloatValue(-0.5),
		"float-nan":    db.FloatValue(float32(math.NaN())),
		"bool-true":    db.BoolValue(true),
		"bool-false":   db.BoolValue(false),
		"set":          db.StringSetValue([]string{"b", "a", "c"}),
		"set-empty":    db.StringSetValue(nil),
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testWriteGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureWrite|db.FeatureGet)

	values := sampleValues()
	batch := make([]db.Mutation, 0, len(values))
	for k, v := range values {
		batch = append(batch, put(k, v))
	}
	mustWrite(t, database, batch...)

	for k, expected := range values {
		result, exists := database.Get(k)
		if !exists {
			t.Errorf("Expected key %s to exist after Write", k)
			continue
		}
		if !result.Equal(expected) {
			t.Errorf("Expected value %v for key %s, got %v", expected, k, result)
		}
		if !database.Has(k) {
			t.Errorf("Expected Has(%s) to be true", k)
		}
	}

	if _, exists := database.Get("nonexistent-key"); exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}
	if database.Has("nonexistent-key") {
		t.Errorf("Expected Has(nonexistent-key) to be false")
	}

	mustWrite(t, database, put("string", db.StringValue("updated-value")))
	result, _ := database.Get("string")
	if result.AsString() != "updated-value" {
		t.Errorf("Expected updated value, got %v", result)
	}
}

func testGetReturnsCopy(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureWrite|db.FeatureGet)

	mustWrite(t, database, put("set", db.StringSetValue([]string{"a", "b"})))

	retrieved, _ := database.Get("set")
	retrieved.Set[0] = "X"

	original, _ := database.Get("set")
	if original.Set[0] != "a" {
		t.Errorf("Get should return a copy, not a reference to the stored value")
	}

	all := database.GetAll()
	all["set"].Set[1] = "Y"
	original, _ = database.Get("set")
	if original.Set[1] != "b" {
		t.Errorf("GetAll should return copies, not references to the stored values")
	}
}

func testRemove(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureWrite|db.FeatureGet)

	mustWrite(t, database, put("a", db.LongValue(1)), put("b", db.LongValue(2)))
	mustWrite(t, database, remove("a"))

	if database.Has("a") {
		t.Errorf("Key a should be removed")
	}
	if !database.Has("b") {
		t.Errorf("Key b should still exist")
	}
	if database.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", database.Len())
	}

	// removing twice is fine
	mustWrite(t, database, remove("a"))
}

func testChangedKeys(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureWrite)

	changed := mustWrite(t, database, put("a", db.StringValue("1")), put("b", db.BoolValue(true)))
	if !slices.Equal(changed, []string{"a", "b"}) {
		t.Errorf("Expected changed keys [a b], got %v", changed)
	}

	// same values are no change
	changed = mustWrite(t, database, put("a", db.StringValue("1")), put("b", db.BoolValue(true)))
	if len(changed) != 0 {
		t.Errorf("Expected no changed keys for equal values, got %v", changed)
	}

	// the same payload under a different type is a change
	changed = mustWrite(t, database, put("b", db.LongValue(1)))
	if !slices.Equal(changed, []string{"b"}) {
		t.Errorf("Expected changed keys [b], got %v", changed)
	}

	// removing a missing key is no change
	changed = mustWrite(t, database, remove("missing"), remove("a"))
	if !slices.Equal(changed, []string{"a"}) {
		t.Errorf("Expected changed keys [a], got %v", changed)
	}

	// a key changed twice in one batch is reported twice
	changed = mustWrite(t, database, put("c", db.IntValue(1)), put("c", db.IntValue(2)))
	if !slices.Equal(changed, []string{"c", "c"}) {
		t.Errorf("Expected changed keys [c c], got %v", changed)
	}
}

func testClearFirst(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureWrite|db.FeatureGet)

	mustWrite(t, database, put("old-1", db.LongValue(1)), put("old-2", db.LongValue(2)))

	// the clear is applied before the puts, no matter where it appears in the batch
	changed := mustWrite(t, database, put("new", db.StringValue("x")), clearAll(), put("old-2", db.LongValue(3)))
	if !slices.Equal(changed, []string{"", "new", "old-2"}) {
		t.Errorf("Expected changed keys [\"\" new old-2], got %q", changed)
	}

	if database.Has("old-1") {
		t.Errorf("Key old-1 should be cleared")
	}
	if v, ok := database.Get("new"); !ok || v.AsString() != "x" {
		t.Errorf("Key new should survive the clear of its own batch, got %v (%v)", v, ok)
	}
	if v, ok := database.Get("old-2"); !ok || v.AsLong() != 3 {
		t.Errorf("Key old-2 should hold 3, got %v (%v)", v, ok)
	}

	// clearing an empty database is still reported
	mustWrite(t, database, clearAll())
	changed = mustWrite(t, database, clearAll())
	if !slices.Equal(changed, []string{""}) {
		t.Errorf("Expected clear to be reported on an empty database, got %q", changed)
	}
	if database.Len() != 0 {
		t.Errorf("Expected empty database after clear, got %d entries", database.Len())
	}
}

func testInvalidBatch(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureWrite|db.FeatureGet)

	mustWrite(t, database, put("a", db.LongValue(1)))

	cases := map[string][]db.Mutation{
		"empty key put":    {put("b", db.LongValue(2)), put("", db.LongValue(3))},
		"empty key remove": {remove("")},
		"invalid type":     {put("c", db.Value{})},
		"unknown op":       {{Op: db.OpType(99), Key: "d"}},
	}

	for name, batch := range cases {
		if _, err := database.Write(batch); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	if database.Has("b") || database.Has("c") {
		t.Errorf("Failed batches must not change the database")
	}
	if database.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", database.Len())
	}
}

func testTypeReplace(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureWrite|db.FeatureGet)

	mustWrite(t, database, put("key", db.StringValue("text")))
	mustWrite(t, database, put("key", db.IntValue(42)))

	v, ok := database.Get("key")
	if !ok {
		t.Fatalf("Expected key to exist")
	}
	if v.Type != db.TypeInt || v.AsInt() != 42 {
		t.Errorf("Expected int 42, got %v", v)
	}
}

func testGetAll(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureWrite|db.FeatureGetAll)

	if all := database.GetAll(); len(all) != 0 {
		t.Errorf("Expected empty GetAll, got %v", all)
	}

	values := sampleValues()
	for k, v := range values {
		mustWrite(t, database, put(k, v))
	}

	all := database.GetAll()
	if len(all) != len(values) {
		t.Errorf("Expected %d entries, got %d", len(values), len(all))
	}
	for k, v := range values {
		if !all[k].Equal(v) {
			t.Errorf("GetAll mismatch for %s: expected %v, got %v", k, v, all[k])
		}
	}
	if database.Len() != len(values) {
		t.Errorf("Expected Len %d, got %d", len(values), database.Len())
	}

	info := database.GetInfo()
	if info.Entries != len(values) {
		t.Errorf("Expected info to report %d entries, got %d", len(values), info.Entries)
	}
}

func testSaveLoad(t *testing.T, factory DBFactory) {
	database := factory()
	database2 := factory()

	// close the databases after the test
	defer database.Close()
	defer database2.Close()

	requireFeature(t, database, db.FeatureWrite|db.FeatureGet|db.FeatureSave|db.FeatureLoad)

	numEntries := 1000
	batch := make([]db.Mutation, 0, numEntries)
	for i := 0; i < numEntries; i++ {
		key := fmt.Sprintf("save-load-test-key-%d", i)
		batch = append(batch, put(key, db.StringValue(fmt.Sprintf("save-load-test-value-%d", i))))
	}
	for k, v := range sampleValues() {
		batch = append(batch, put(k, v))
	}
	mustWrite(t, database, batch...)

	// entries of the target are replaced, not merged
	mustWrite(t, database2, put("stale", db.LongValue(1)))

	var buf bytes.Buffer
	if err := database.Save(&buf); err != nil {
		t.Fatalf("Unexpected error during Save: %v", err)
	}
	if err := database2.Load(&buf); err != nil {
		t.Fatalf("Unexpected error during Load: %v", err)
	}

	for _, m := range batch {
		actual, exists := database2.Get(m.Key)
		if !exists {
			t.Errorf("Key %s not found after Load", m.Key)
			continue
		}
		if !actual.Equal(m.Value) {
			t.Errorf("Value mismatch for key %s: expected %v, got %v", m.Key, m.Value, actual)
		}
	}
	if database2.Has("stale") {
		t.Errorf("Load should replace the existing entries")
	}

	if err := database2.Load(bytes.NewReader([]byte("garbage"))); err == nil {
		t.Errorf("Expected error when loading invalid data")
	}
	if database2.Len() != len(batch) {
		t.Errorf("A failed Load must not change the database")
	}
}

func testClose(t *testing.T, database db.KVDB) {
	requireFeature(t, database, db.FeatureWrite)

	mustWrite(t, database, put("a", db.LongValue(1)))

	if err := database.Close(); err != nil {
		t.Fatalf("Unexpected error during Close: %v", err)
	}

	if _, err := database.Write([]db.Mutation{put("b", db.LongValue(2))}); !errors.Is(err, db.ErrClosed) {
		t.Errorf("Expected ErrClosed after Close, got %v", err)
	}
}

func testRealisticUsage(t *testing.T, database db.KVDB) {
	defer database.Close()

	requireFeature(t, database, db.FeatureWrite|db.FeatureGet)

	numWorkers := 8
	opsPerWorker := 200

	var wg sync.WaitGroup
	wg.Add(numWorkers * 2)

	errs := make(chan error, numWorkers)

	// writers own disjoint keys, readers run concurrently
	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()
			for i := 0; i < opsPerWorker; i++ {
				key := fmt.Sprintf("worker-%d-key-%d", workerId, i%20)
				var m db.Mutation
				if i%10 == 9 {
					m = remove(key)
				} else {
					m = put(key, db.LongValue(int64(i)))
				}
				if _, err := database.Write([]db.Mutation{m}); err != nil {
					errs <- err
					return
				}
			}
		}(w)

		go func(workerId int) {
			defer wg.Done()
			for i := 0; i < opsPerWorker; i++ {
				key := fmt.Sprintf("worker-%d-key-%d", workerId, i%20)
				if v, ok := database.Get(key); ok && v.Type != db.TypeLong {
					t.Errorf("Unexpected type %s for %s", v.Type, key)
				}
			}
		}(w)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Write failed during parallel operations: %v", err)
	}

	// the last write of every worker key decides its state
	for w := 0; w < numWorkers; w++ {
		for k := 0; k < 20; k++ {
			key := fmt.Sprintf("worker-%d-key-%d", w, k)
			last := opsPerWorker - 20 + k
			v, exists := database.Get(key)
			if last%10 == 9 {
				if exists {
					t.Errorf("Key %s should be removed", key)
				}
				continue
			}
			if !exists || v.AsLong() != int64(last) {
				t.Errorf("Expected %s to hold %d, got %v (%v)", key, last, v, exists)
			}
		}
	}
}

// --------------------------------------------------------------------------
// Durability tests
// --------------------------------------------------------------------------

func testReopen(t *testing.T, open db.Factory) {
	database := mustOpen(t, open, "reopen")
	requireFeature(t, database, db.FeatureDurable)

	values := sampleValues()
	for k, v := range values {
		mustWrite(t, database, put(k, v))
	}
	mustWrite(t, database, remove("string-empty"))
	delete(values, "string-empty")

	if err := database.Close(); err != nil {
		t.Fatalf("Unexpected error during Close: %v", err)
	}

	reopened := mustOpen(t, open, "reopen")
	defer reopened.Close()

	if reopened.Len() != len(values) {
		t.Errorf("Expected %d entries after reopen, got %d", len(values), reopened.Len())
	}
	for k, expected := range values {
		actual, ok := reopened.Get(k)
		if !ok {
			t.Errorf("Key %s missing after reopen", k)
			continue
		}
		if !actual.Equal(expected) {
			t.Errorf("Value mismatch for %s after reopen: expected %v, got %v", k, expected, actual)
		}
	}
}

func testReopenAfterClear(t *testing.T, open db.Factory) {
	database := mustOpen(t, open, "cleared")
	requireFeature(t, database, db.FeatureDurable)

	mustWrite(t, database, put("a", db.LongValue(1)), put("b", db.LongValue(2)))
	mustWrite(t, database, clearAll(), put("c", db.BoolValue(true)))
	if err := database.Close(); err != nil {
		t.Fatalf("Unexpected error during Close: %v", err)
	}

	reopened := mustOpen(t, open, "cleared")
	defer reopened.Close()

	all := reopened.GetAll()
	if len(all) != 1 || !all["c"].AsBool() {
		t.Errorf("Expected only c=true after reopen, got %v", all)
	}
}

func testSeparateNames(t *testing.T, open db.Factory) {
	first := mustOpen(t, open, "first")
	defer first.Close()
	second := mustOpen(t, open, "second")
	defer second.Close()

	mustWrite(t, first, put("key", db.StringValue("first")))
	mustWrite(t, second, put("key", db.StringValue("second")))

	a, _ := first.Get("key")
	b, _ := second.Get("key")
	if a.AsString() != "first" || b.AsString() != "second" {
		t.Errorf("Named databases must not share entries: got %v and %v", a, b)
	}
}
