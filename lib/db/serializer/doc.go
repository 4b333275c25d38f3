// Package serializer provides value serialization for the prefKV storage engines.
// It defines a common interface and multiple implementations for encoding and decoding
// typed entry values (db.Value) to and from their on-disk representation.
//
// The package focuses on:
//   - Providing a consistent interface for different serialization formats
//   - Preserving values bit-exactly (float and double payloads, signed zero, NaN)
//   - Minimizing memory allocations and processing overhead
//
// Key Components:
//
//   - IValueSerializer: Core interface that all serializer implementations must satisfy.
//
//   - binarySerializerImpl: Custom binary format implementation optimized for speed
//     and space efficiency. A type byte is followed by a fixed size number or length
//     prefixed strings, resulting in compact serialized data with minimal overhead.
//
//   - gobSerializerImpl: Implementation using Go's built-in gob encoding, offering
//     good compatibility with Go's type system but with larger serialized sizes.
//
//   - jsonSerializerImpl: Implementation using JSON encoding, useful for debugging
//     or when the database files are inspected with external tools.
//
// Floats are carried as their IEEE-754 bit pattern inside db.Value.Num, so even the JSON
// serializer never has to encode a NaN or infinite number.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	Serializers are typically created once and handed to an engine:
//
//	  s, err := serializer.ByName("binary")
//	  data, err := s.Serialize(db.LongValue(42))
//	  var v db.Value
//	  err = s.Deserialize(data, &v)
package serializer
