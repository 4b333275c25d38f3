package serializer

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/ValentinKolb/prefKV/lib/db"
)

// NewGOBSerializer creates a new serializer using Go's binary gob format
func NewGOBSerializer() IValueSerializer {
	return &gobSerializerImpl{}
}

// gobSerializerImpl implements the IValueSerializer interface using gob encoding
type gobSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IValueSerializer)
// --------------------------------------------------------------------------

func (g gobSerializerImpl) Serialize(v db.Value) ([]byte, error) {
	if !v.Type.Valid() {
		return nil, fmt.Errorf("cannot serialize value of type %s", v.Type)
	}
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g gobSerializerImpl) Deserialize(b []byte, v *db.Value) error {
	*v = db.Value{}
	buf := bytes.NewBuffer(b)
	dec := gob.NewDecoder(buf)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if !v.Type.Valid() {
		return fmt.Errorf("invalid value type %d", v.Type)
	}
	return nil
}

func (g gobSerializerImpl) Name() string { return "gob" }
