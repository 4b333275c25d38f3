package serializer

import (
	"fmt"

	"github.com/ValentinKolb/prefKV/lib/db"
)

// IValueSerializer is the interface for all value serializers.
// The engines use it to encode entry values on disk.
type IValueSerializer interface {
	// Serialize serializes a Value into a byte array
	// It returns the serialized byte array and an error if any
	Serialize(v db.Value) ([]byte, error)
	// Deserialize deserializes a byte array into a Value
	// It takes a byte array and a pointer to a Value as parameters
	// It returns an error if any
	Deserialize(b []byte, v *db.Value) error
	// Name returns the name used to select the serializer in configuration files
	Name() string
}

// ByName returns the serializer registered under the given name (binary, json, gob).
func ByName(name string) (IValueSerializer, error) {
	switch name {
	case "binary", "":
		return NewBinarySerializer(), nil
	case "json":
		return NewJSONSerializer(), nil
	case "gob":
		return NewGOBSerializer(), nil
	default:
		return nil, fmt.Errorf("invalid serializer %s (expected one of: binary, json, gob)", name)
	}
}
