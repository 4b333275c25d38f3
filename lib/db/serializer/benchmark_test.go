package serializer

import (
	"strings"
	"testing"

	"github.com/ValentinKolb/prefKV/lib/db"
)

// benchmarkValues returns a set of values for targeted benchmarking
func benchmarkValues() map[string]db.Value {
	members := make([]string, 64)
	for i := range members {
		members[i] = strings.Repeat("m", i+1)
	}
	return map[string]db.Value{
		"Bool":        db.BoolValue(true),
		"Long":        db.LongValue(1 << 40),
		"SmallString": db.StringValue("v"),
		"LargeString": db.StringValue(strings.Repeat("x", 16*1024)),
		"StringSet":   db.StringSetValue(members),
	}
}

// BenchmarkSerialize benchmarks serialization for all implementations with various value types
func BenchmarkSerialize(b *testing.B) {
	values := benchmarkValues()

	for name, factory := range testSerializers {
		for valueName, v := range values {
			b.Run(name+"_"+valueName, func(b *testing.B) {
				serializer := factory()
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					if _, err := serializer.Serialize(v); err != nil {
						b.Fatalf("Failed to serialize: %v", err)
					}
				}
			})
		}
	}
}

// BenchmarkDeserialize benchmarks deserialization for all implementations with various value types
func BenchmarkDeserialize(b *testing.B) {
	values := benchmarkValues()

	for name, factory := range testSerializers {
		for valueName, v := range values {
			b.Run(name+"_"+valueName, func(b *testing.B) {
				serializer := factory()
				data, err := serializer.Serialize(v)
				if err != nil {
					b.Fatalf("Failed to serialize: %v", err)
				}
				b.ReportMetric(float64(len(data)), "bytes")
				b.ResetTimer()

				for i := 0; i < b.N; i++ {
					var result db.Value
					if err := serializer.Deserialize(data, &result); err != nil {
						b.Fatalf("Failed to deserialize: %v", err)
					}
				}
			})
		}
	}
}
