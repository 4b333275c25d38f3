package serializer

import (
	"encoding/json"
	"fmt"

	"github.com/ValentinKolb/prefKV/lib/db"
)

// NewJSONSerializer creates a new serializer using json encoding
func NewJSONSerializer() IValueSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IValueSerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IValueSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) Serialize(v db.Value) ([]byte, error) {
	if !v.Type.Valid() {
		return nil, fmt.Errorf("cannot serialize value of type %s", v.Type)
	}
	return json.Marshal(v)
}

func (j jsonSerializerImpl) Deserialize(b []byte, v *db.Value) error {
	*v = db.Value{}
	if err := json.Unmarshal(b, v); err != nil {
		return err
	}
	if !v.Type.Valid() {
		return fmt.Errorf("invalid value type %d", v.Type)
	}
	return nil
}

func (j jsonSerializerImpl) Name() string { return "json" }
