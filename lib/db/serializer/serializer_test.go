package serializer

import (
	"math"
	"testing"

	"github.com/ValentinKolb/prefKV/lib/db"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IValueSerializer{
	"JSON":   NewJSONSerializer,
	"GOB":    NewGOBSerializer,
	"Binary": NewBinarySerializer,
}

// edgeValues returns values whose encoding is easy to get wrong
func edgeValues() map[string]db.Value {
	return map[string]db.Value{
		"EmptyString":   db.StringValue(""),
		"UnicodeString": db.StringValue("grüße, 世界"),
		"MinInt":        db.IntValue(math.MinInt32),
		"MaxLong":       db.LongValue(math.MaxInt64),
		"NegativeZero":  db.FloatValue(float32(math.Copysign(0, -1))),
		"NaNPayload":    db.FloatValue(math.Float32frombits(0x7fc00123)),
		"DoubleBits":    db.LongValue(int64(math.Float64bits(math.SmallestNonzeroFloat64))),
		"False":         db.BoolValue(false),
		"True":          db.BoolValue(true),
		"EmptySet":      db.StringSetValue(nil),
		"Set":           db.StringSetValue([]string{"b", "a", "b", ""}),
	}
}

// TestSerializerRoundTrip tests that values keep their exact bit pattern across a round trip
func TestSerializerRoundTrip(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			serializer := factory()

			for valueName, value := range edgeValues() {
				data, err := serializer.Serialize(value)
				if err != nil {
					t.Errorf("Failed to serialize %s: %v", valueName, err)
					continue
				}

				var result db.Value
				if err := serializer.Deserialize(data, &result); err != nil {
					t.Errorf("Failed to deserialize %s: %v", valueName, err)
					continue
				}

				if !value.Equal(result) {
					t.Errorf("%s doesn't match after round trip:\nOriginal: %+v\nResult: %+v", valueName, value, result)
				}
			}
		})
	}
}

// TestSerializeInvalidType tests that values without a type are rejected
func TestSerializeInvalidType(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			if _, err := factory().Serialize(db.Value{}); err == nil {
				t.Errorf("Expected error for invalid value type")
			}
		})
	}
}

// TestByName tests serializer selection by configuration name
func TestByName(t *testing.T) {
	for _, name := range []string{"binary", "json", "gob"} {
		s, err := ByName(name)
		if err != nil {
			t.Fatalf("Unexpected error for %s: %v", name, err)
		}
		if s.Name() != name {
			t.Errorf("Expected serializer %s, got %s", name, s.Name())
		}
	}

	if s, err := ByName(""); err != nil || s.Name() != "binary" {
		t.Errorf("Expected binary serializer as default")
	}

	if _, err := ByName("xml"); err == nil {
		t.Errorf("Expected error for unknown serializer")
	}
}

// TestInvalidBinaryData tests how the binary serializer handles corrupt or invalid data
func TestInvalidBinaryData(t *testing.T) {
	serializer := NewBinarySerializer()

	testCases := []struct {
		name        string
		data        []byte
		expectError bool
	}{
		{
			name:        "Empty data",
			data:        []byte{},
			expectError: true,
		},
		{
			name:        "Unknown type",
			data:        []byte{42},
			expectError: true,
		},
		{
			name:        "Valid empty string",
			data:        []byte{byte(db.TypeString), 0, 0, 0, 0},
			expectError: false,
		},
		{
			name:        "Invalid length for string",
			data:        []byte{byte(db.TypeString), 0, 0, 0, 5, 'a', 'b', 'c'}, // Claims length 5 but only 3 bytes provided
			expectError: true,
		},
		{
			name:        "Truncated long",
			data:        []byte{byte(db.TypeLong), 0, 0, 0, 1},
			expectError: true,
		},
		{
			name:        "Trailing bytes",
			data:        []byte{byte(db.TypeBool), 0, 0, 0, 0, 0, 0, 0, 1, 9},
			expectError: true,
		},
		{
			name:        "Huge set count",
			data:        []byte{byte(db.TypeStringSet), 0xff, 0xff, 0xff, 0xff},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var v db.Value
			err := serializer.Deserialize(tc.data, &v)

			if tc.expectError && err == nil {
				t.Errorf("Expected error but got none")
			} else if !tc.expectError && err != nil {
				t.Errorf("Did not expect error but got: %v", err)
			}
		})
	}
}
