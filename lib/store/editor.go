package store

import (
	"math"

	"github.com/ValentinKolb/prefKV/lib/db"
)

// Editor is the typed builder on top of an IEditor.
// Every Put method returns the editor itself so that calls can be chained:
//
//	ok := prefs.Edit().PutString("user", "ada").PutInt("launches", 3).Commit()
//
// Thread-safety: An Editor belongs to the goroutine that created it.
type Editor struct {
	tx IEditor
}

// NewEditor wraps a backend transaction.
func NewEditor(tx IEditor) *Editor {
	return &Editor{tx: tx}
}

// PutString adds a put of a string value.
func (e *Editor) PutString(key, value string) *Editor {
	e.tx.Put(key, db.StringValue(value))
	return e
}

// PutInt adds a put of an int value.
func (e *Editor) PutInt(key string, value int32) *Editor {
	e.tx.Put(key, db.IntValue(value))
	return e
}

// PutLong adds a put of a long value.
func (e *Editor) PutLong(key string, value int64) *Editor {
	e.tx.Put(key, db.LongValue(value))
	return e
}

// PutFloat adds a put of a float value.
func (e *Editor) PutFloat(key string, value float32) *Editor {
	e.tx.Put(key, db.FloatValue(value))
	return e
}

// PutDouble stores the IEEE-754 bits of value as a long entry.
// The bits are reinterpreted, not converted, so NaN payloads and -0.0 survive.
func (e *Editor) PutDouble(key string, value float64) *Editor {
	e.tx.Put(key, db.LongValue(int64(math.Float64bits(value))))
	return e
}

// PutBool adds a put of a bool value.
func (e *Editor) PutBool(key string, value bool) *Editor {
	e.tx.Put(key, db.BoolValue(value))
	return e
}

// PutStringSet stores the members as an unordered set. Duplicates are dropped.
func (e *Editor) PutStringSet(key string, values []string) *Editor {
	e.tx.Put(key, db.StringSetValue(values))
	return e
}

// Remove adds a removal of key.
func (e *Editor) Remove(key string) *Editor {
	e.tx.Remove(key)
	return e
}

// Clear removes every entry of the store before the other mutations of this editor are applied.
func (e *Editor) Clear() *Editor {
	e.tx.Clear()
	return e
}

// Apply writes the mutations asynchronously, see IEditor.Apply.
func (e *Editor) Apply() {
	e.tx.Apply()
}

// Commit writes the mutations and reports whether they were persisted, see IEditor.Commit.
func (e *Editor) Commit() bool {
	return e.tx.Commit()
}
