package serializer

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/prefKV/lib/db"
)

// NewBinarySerializer creates a new serializer using a custom binary format
// optimized for speed and efficiency
func NewBinarySerializer() IValueSerializer {
	return &binarySerializerImpl{}
}

// binarySerializerImpl implements IValueSerializer using a custom binary format:
//
//	string: type(1) | len(4) | bytes
//	int, long, float, bool: type(1) | num(8)
//	set: type(1) | count(4) | (len(4) | bytes)*
//
// All integers are big endian.
type binarySerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IValueSerializer)
// --------------------------------------------------------------------------

func (b binarySerializerImpl) Serialize(v db.Value) ([]byte, error) {
	if !v.Type.Valid() {
		return nil, fmt.Errorf("cannot serialize value of type %s", v.Type)
	}

	// Calculate total size needed
	result := make([]byte, b.sizeBytes(v))

	// Write value type
	result[0] = byte(v.Type)
	pos := 1

	switch v.Type {
	case db.TypeString:
		pos = putString(result, pos, v.Str)
	case db.TypeStringSet:
		binary.BigEndian.PutUint32(result[pos:pos+4], uint32(len(v.Set)))
		pos += 4
		for _, member := range v.Set {
			pos = putString(result, pos, member)
		}
	default:
		binary.BigEndian.PutUint64(result[pos:pos+8], uint64(v.Num))
	}

	return result, nil
}

func (b binarySerializerImpl) Deserialize(data []byte, v *db.Value) error {
	*v = db.Value{}

	// Check minimum size (type)
	if len(data) < 1 {
		return fmt.Errorf("data too short for value header")
	}

	v.Type = db.ValueType(data[0])
	pos := 1

	var err error
	switch v.Type {
	case db.TypeString:
		v.Str, pos, err = readString(data, pos)
		if err != nil {
			return err
		}
	case db.TypeStringSet:
		if pos+4 > len(data) {
			return fmt.Errorf("data too short for set size")
		}
		count := binary.BigEndian.Uint32(data[pos : pos+4])
		pos += 4

		// every member needs at least its length prefix
		if uint64(count)*4 > uint64(len(data)-pos) {
			return fmt.Errorf("data too short for %d set members", count)
		}
		v.Set = make([]string, count)
		for i := range v.Set {
			v.Set[i], pos, err = readString(data, pos)
			if err != nil {
				return err
			}
		}
	case db.TypeInt, db.TypeLong, db.TypeFloat, db.TypeBool:
		if pos+8 > len(data) {
			return fmt.Errorf("data too short for %s payload", v.Type)
		}
		v.Num = int64(binary.BigEndian.Uint64(data[pos : pos+8]))
		pos += 8
	default:
		return fmt.Errorf("invalid value type %d", data[0])
	}

	if pos != len(data) {
		return fmt.Errorf("%d trailing bytes after %s value", len(data)-pos, v.Type)
	}
	return nil
}

func (b binarySerializerImpl) Name() string { return "binary" }

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// sizeBytes calculates the total size needed for serialization
func (b binarySerializerImpl) sizeBytes(v db.Value) int {
	// 1 byte for the type
	size := 1

	switch v.Type {
	case db.TypeString:
		size += 4 + len(v.Str)
	case db.TypeStringSet:
		size += 4
		for _, member := range v.Set {
			size += 4 + len(member)
		}
	default:
		size += 8
	}

	return size
}

// putString writes a length prefixed string at pos and returns the new position
func putString(buf []byte, pos int, s string) int {
	binary.BigEndian.PutUint32(buf[pos:pos+4], uint32(len(s)))
	pos += 4
	copy(buf[pos:pos+len(s)], s)
	return pos + len(s)
}

// readString reads a length prefixed string at pos and returns it with the new position
func readString(data []byte, pos int) (string, int, error) {
	if pos+4 > len(data) {
		return "", pos, fmt.Errorf("data too short for string length")
	}
	strLen := int(binary.BigEndian.Uint32(data[pos : pos+4]))
	pos += 4

	if strLen > len(data)-pos {
		return "", pos, fmt.Errorf("data too short for string data")
	}
	return string(data[pos : pos+strLen]), pos + strLen, nil
}
