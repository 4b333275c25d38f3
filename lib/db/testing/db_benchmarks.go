package testing

import (
	"bytes"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/ValentinKolb/prefKV/lib/db"
)

// RunKVDBBenchmarks runs all benchmarks for a key-value database implementations
func RunKVDBBenchmarks(b *testing.B, name string, factory DBFactory) {

	b.Run("Write", func(b *testing.B) {
		benchmarkWrite(b, factory())
	})

	b.Run("WriteExisting", func(b *testing.B) {
		benchmarkWriteExisting(b, factory())
	})

	b.Run("WriteBatch", func(b *testing.B) {
		benchmarkWriteBatch(b, factory())
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory())
	})

	b.Run("Has(not)", func(b *testing.B) {
		benchmarkHasNot(b, factory())
	})

	b.Run("GetAll", func(b *testing.B) {
		benchmarkGetAll(b, factory())
	})

	b.Run("SaveLoad", func(b *testing.B) {
		benchmarkSaveLoad(b, factory)
	})

	b.Run("MixedUsage", func(b *testing.B) {
		benchmarkMixedUsage(b, factory())
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// fill writes numKeys string entries named <prefix>-<i>
func fill(b *testing.B, database db.KVDB, prefix string, numKeys int) {
	batch := make([]db.Mutation, 0, numKeys)
	for i := 0; i < numKeys; i++ {
		batch = append(batch, put(fmt.Sprintf("%s-%d", prefix, i), db.StringValue(fmt.Sprintf("value-%d", i))))
	}
	if _, err := database.Write(batch); err != nil {
		b.Fatalf("Failed to prepare data: %v", err)
	}
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// benchmarkWrite measures single key writes of new keys
func benchmarkWrite(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureWrite)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := fmt.Sprintf("test-key-%d", i%1000)
		if _, err := database.Write([]db.Mutation{put(key, db.LongValue(int64(i)))}); err != nil {
			b.Fatal(err)
		}
	}
}

// benchmarkWriteExisting measures writes that store the value already present
func benchmarkWriteExisting(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureWrite)

	numKeys := 1000
	fill(b, database, "existing", numKeys)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			i := counter % numKeys
			m := put(fmt.Sprintf("existing-%d", i), db.StringValue(fmt.Sprintf("value-%d", i)))
			_, _ = database.Write([]db.Mutation{m})
			counter++
		}
	})
}

// benchmarkWriteBatch measures batches of 100 mutations
func benchmarkWriteBatch(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureWrite)

	batch := make([]db.Mutation, 100)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for j := range batch {
			batch[j] = put(fmt.Sprintf("batch-key-%d", j), db.LongValue(int64(i)))
		}
		if _, err := database.Write(batch); err != nil {
			b.Fatal(err)
		}
	}
}

// benchmarkGet measures reads of existing keys
func benchmarkGet(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureWrite|db.FeatureGet)

	numKeys := 10_000
	fill(b, database, "get", numKeys)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			database.Get(fmt.Sprintf("get-%d", counter%numKeys))
			counter++
		}
	})
}

// benchmarkHasNot measures lookups of missing keys
func benchmarkHasNot(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureWrite|db.FeatureGet)

	fill(b, database, "has", 1000)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		for pb.Next() {
			database.Has(fmt.Sprintf("missing-%d", counter))
			counter++
		}
	})
}

// benchmarkGetAll measures full copies of a typical preference file
func benchmarkGetAll(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureWrite|db.FeatureGetAll)

	fill(b, database, "all", 200)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		database.GetAll()
	}
}

// benchmarkSaveLoad measures Save and Load of 10k entries
func benchmarkSaveLoad(b *testing.B, factory DBFactory) {
	source := factory()
	target := factory()
	b.Cleanup(func() {
		source.Close()
		target.Close()
	})

	requireFeature(b, source, db.FeatureWrite|db.FeatureSave|db.FeatureLoad)

	fill(b, source, "snapshot", 10_000)

	var buf bytes.Buffer
	b.Run("Save", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			buf.Reset()
			if err := source.Save(&buf); err != nil {
				b.Fatal(err)
			}
		}
	})

	data := buf.Bytes()
	b.Run("Load", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if err := target.Load(bytes.NewReader(data)); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// benchmarkMixedUsage measures 90% reads and 10% writes
func benchmarkMixedUsage(b *testing.B, database db.KVDB) {
	b.Cleanup(func() {
		database.Close()
	})

	requireFeature(b, database, db.FeatureWrite|db.FeatureGet)

	numKeys := 1000
	fill(b, database, "mixed", numKeys)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		counter := 0
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

		for pb.Next() {
			key := fmt.Sprintf("mixed-%d", counter%numKeys)
			if rnd.Float32() < .9 {
				database.Get(key)
			} else {
				_, _ = database.Write([]db.Mutation{put(key, db.LongValue(int64(counter)))})
			}
			counter++
		}
	})
}
