package store

import (
	"math"

	"github.com/ValentinKolb/prefKV/lib/db"
)

// Default values returned by the getters without an explicit default.
const (
	DefaultString = ""
	DefaultInt    = int32(-1)
	DefaultLong   = int64(-1)
	DefaultFloat  = float32(-1)
	DefaultDouble = float64(-1)
	DefaultBool   = false
)

// Prefs is a typed accessor bound to one store.
// It is an immutable value: selecting another store means creating another Prefs,
// so accessors for different stores can be used from different goroutines at the same time.
//
// Reads never fail. A missing key or a key stored with another type yields the default.
// Every Put, Remove, Apply and Commit method starts its own editor; chain several
// mutations through Edit instead.
type Prefs struct {
	store IStore
}

// NewPrefs binds an accessor to an open store handle.
func NewPrefs(s IStore) Prefs {
	return Prefs{store: s}
}

// Name returns the name of the bound store.
func (p Prefs) Name() string {
	return p.store.Name()
}

// Store returns the underlying store handle.
func (p Prefs) Store() IStore {
	return p.store
}

// lookup returns the value of key if it exists with the given type.
func (p Prefs) lookup(key string, t db.ValueType) (db.Value, bool) {
	v, ok := p.store.Get(key)
	if !ok || v.Type != t {
		return db.Value{}, false
	}
	return v, true
}

// --------------------------------------------------------------------------
// Getters
// --------------------------------------------------------------------------

// GetString returns the string stored under key, or DefaultString.
func (p Prefs) GetString(key string) string {
	return p.GetStringOr(key, DefaultString)
}

// GetStringOr returns the string stored under key, or def if key is missing or holds another type.
func (p Prefs) GetStringOr(key, def string) string {
	if v, ok := p.lookup(key, db.TypeString); ok {
		return v.AsString()
	}
	return def
}

// GetInt returns the int stored under key, or DefaultInt.
func (p Prefs) GetInt(key string) int32 {
	return p.GetIntOr(key, DefaultInt)
}

// GetIntOr returns the int stored under key, or def if key is missing or holds another type.
func (p Prefs) GetIntOr(key string, def int32) int32 {
	if v, ok := p.lookup(key, db.TypeInt); ok {
		return v.AsInt()
	}
	return def
}

// GetLong returns the long stored under key, or DefaultLong.
func (p Prefs) GetLong(key string) int64 {
	return p.GetLongOr(key, DefaultLong)
}

// GetLongOr returns the long stored under key, or def if key is missing or holds another type.
func (p Prefs) GetLongOr(key string, def int64) int64 {
	if v, ok := p.lookup(key, db.TypeLong); ok {
		return v.AsLong()
	}
	return def
}

// GetFloat returns the float stored under key, or DefaultFloat.
func (p Prefs) GetFloat(key string) float32 {
	return p.GetFloatOr(key, DefaultFloat)
}

// GetFloatOr returns the float stored under key, or def if key is missing or holds another type.
func (p Prefs) GetFloatOr(key string, def float32) float32 {
	if v, ok := p.lookup(key, db.TypeFloat); ok {
		return v.AsFloat()
	}
	return def
}

// GetDouble returns the double stored under key, or DefaultDouble.
func (p Prefs) GetDouble(key string) float64 {
	return p.GetDoubleOr(key, DefaultDouble)
}

// GetDoubleOr decodes a double stored by PutDouble.
// Presence is checked before the long bits are read: the default is a double and must
// never be pushed through the bit reinterpretation.
func (p Prefs) GetDoubleOr(key string, def float64) float64 {
	if !p.Contains(key) {
		return def
	}
	v, ok := p.lookup(key, db.TypeLong)
	if !ok {
		// stored with another type or removed in the meantime
		return def
	}
	return math.Float64frombits(uint64(v.AsLong()))
}

// GetBool returns the bool stored under key, or DefaultBool.
func (p Prefs) GetBool(key string) bool {
	return p.GetBoolOr(key, DefaultBool)
}

// GetBoolOr returns the bool stored under key, or def if key is missing or holds another type.
func (p Prefs) GetBoolOr(key string, def bool) bool {
	if v, ok := p.lookup(key, db.TypeBool); ok {
		return v.AsBool()
	}
	return def
}

// GetStringSetOr returns the sorted members of a set. There is no default-less variant,
// the caller always decides what a missing set means. The returned slice is a copy.
func (p Prefs) GetStringSetOr(key string, def []string) []string {
	if v, ok := p.lookup(key, db.TypeStringSet); ok {
		return v.AsStringSet()
	}
	return def
}

// Contains reports whether key exists, independent of its type.
func (p Prefs) Contains(key string) bool {
	return p.store.Contains(key)
}

// GetAll returns a snapshot of all entries as Go values
// (string, int32, int64, float32, bool or []string). Doubles show up as their int64 bits.
func (p Prefs) GetAll() map[string]any {
	entries := p.store.GetAll()
	all := make(map[string]any, len(entries))
	for k, v := range entries {
		all[k] = v.Interface()
	}
	return all
}

// --------------------------------------------------------------------------
// Editors
// --------------------------------------------------------------------------

// Edit starts a new editor for chaining several mutations.
func (p Prefs) Edit() *Editor {
	return NewEditor(p.store.Edit())
}

// PutString returns a new editor holding a single put. Call Apply or Commit on it.
func (p Prefs) PutString(key, value string) *Editor {
	return p.Edit().PutString(key, value)
}

// ApplyString writes a single string value with a deferred write.
func (p Prefs) ApplyString(key, value string) {
	p.PutString(key, value).Apply()
}

// CommitString writes a single string value and reports whether it was persisted.
func (p Prefs) CommitString(key, value string) bool {
	return p.PutString(key, value).Commit()
}

// PutInt returns a new editor holding a single int put. Call Apply or Commit on it.
func (p Prefs) PutInt(key string, value int32) *Editor {
	return p.Edit().PutInt(key, value)
}

// ApplyInt writes a single int value with a deferred write.
func (p Prefs) ApplyInt(key string, value int32) {
	p.PutInt(key, value).Apply()
}

// CommitInt writes a single int value and reports whether it was persisted.
func (p Prefs) CommitInt(key string, value int32) bool {
	return p.PutInt(key, value).Commit()
}

// PutLong returns a new editor holding a single long put. Call Apply or Commit on it.
func (p Prefs) PutLong(key string, value int64) *Editor {
	return p.Edit().PutLong(key, value)
}

// ApplyLong writes a single long value with a deferred write.
func (p Prefs) ApplyLong(key string, value int64) {
	p.PutLong(key, value).Apply()
}

// CommitLong writes a single long value and reports whether it was persisted.
func (p Prefs) CommitLong(key string, value int64) bool {
	return p.PutLong(key, value).Commit()
}

// PutFloat returns a new editor holding a single float put. Call Apply or Commit on it.
func (p Prefs) PutFloat(key string, value float32) *Editor {
	return p.Edit().PutFloat(key, value)
}

// ApplyFloat writes a single float value with a deferred write.
func (p Prefs) ApplyFloat(key string, value float32) {
	p.PutFloat(key, value).Apply()
}

// CommitFloat writes a single float value and reports whether it was persisted.
func (p Prefs) CommitFloat(key string, value float32) bool {
	return p.PutFloat(key, value).Commit()
}

// PutDouble returns a new editor holding a single double put. Call Apply or Commit on it.
func (p Prefs) PutDouble(key string, value float64) *Editor {
	return p.Edit().PutDouble(key, value)
}

// ApplyDouble writes a single double value with a deferred write.
func (p Prefs) ApplyDouble(key string, value float64) {
	p.PutDouble(key, value).Apply()
}

// CommitDouble writes a single double value and reports whether it was persisted.
func (p Prefs) CommitDouble(key string, value float64) bool {
	return p.PutDouble(key, value).Commit()
}

// PutBool returns a new editor holding a single bool put. Call Apply or Commit on it.
func (p Prefs) PutBool(key string, value bool) *Editor {
	return p.Edit().PutBool(key, value)
}

// ApplyBool writes a single bool value with a deferred write.
func (p Prefs) ApplyBool(key string, value bool) {
	p.PutBool(key, value).Apply()
}

// CommitBool writes a single bool value and reports whether it was persisted.
func (p Prefs) CommitBool(key string, value bool) bool {
	return p.PutBool(key, value).Commit()
}

// PutStringSet returns a new editor holding a single string set put. Call Apply or Commit on it.
func (p Prefs) PutStringSet(key string, values []string) *Editor {
	return p.Edit().PutStringSet(key, values)
}

// ApplyStringSet writes a single string set value with a deferred write.
func (p Prefs) ApplyStringSet(key string, values []string) {
	p.PutStringSet(key, values).Apply()
}

// CommitStringSet writes a single string set value and reports whether it was persisted.
func (p Prefs) CommitStringSet(key string, values []string) bool {
	return p.PutStringSet(key, values).Commit()
}

// Remove returns a new editor holding a single remove. Call Apply or Commit on it.
func (p Prefs) Remove(key string) *Editor {
	return p.Edit().Remove(key)
}

// ApplyRemove removes key with a deferred write.
func (p Prefs) ApplyRemove(key string) {
	p.Remove(key).Apply()
}

// CommitRemove removes key and reports whether the removal was persisted.
func (p Prefs) CommitRemove(key string) bool {
	return p.Remove(key).Commit()
}

// Clear removes every entry of the store with a deferred write.
func (p Prefs) Clear() {
	p.Edit().Clear().Apply()
}

// --------------------------------------------------------------------------
// Listeners
// --------------------------------------------------------------------------

// RegisterOnChangeListener forwards to IStore.RegisterOnChangeListener of the bound store.
func (p Prefs) RegisterOnChangeListener(listener OnChangeListener) {
	p.store.RegisterOnChangeListener(listener)
}

// UnregisterOnChangeListener forwards to IStore.UnregisterOnChangeListener of the bound store.
func (p Prefs) UnregisterOnChangeListener(listener OnChangeListener) {
	p.store.UnregisterOnChangeListener(listener)
}
