package store

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/ValentinKolb/prefKV/lib/db"
	"github.com/google/uuid"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Opener opens the handle of the store with the given name.
// This is used to abstract the creation of store handles from the registry.
type Opener func(name string) (IStore, error)

// IStore is the handle of one opened, named store.
// Reads never fail: a missing key is reported through the boolean return value.
// Writes go through an IEditor obtained from Edit.
type IStore interface {
	// Name returns the store name the handle was opened for.
	Name() string
	// Get returns the value for a key. The boolean return value indicates whether a value for the key was found.
	Get(key string) (value db.Value, loaded bool)
	// Contains returns whether a key exists in the store, independent of its type.
	Contains(key string) bool
	// GetAll returns a snapshot of every entry at the time of the call. It is not a live view.
	GetAll() map[string]db.Value
	// Edit starts a new write transaction. Every call returns a fresh editor.
	Edit() IEditor
	// RegisterOnChangeListener adds a listener that is called after every change of a key.
	// Registering the same listener twice has no effect.
	RegisterOnChangeListener(listener OnChangeListener)
	// UnregisterOnChangeListener removes a listener. Unknown listeners are ignored.
	UnregisterOnChangeListener(listener OnChangeListener)
	// Flush blocks until all deferred writes issued before the call are written.
	Flush()
	// GetDBInfo returns metadata about the database underlying the store.
	// It is not guaranteed that all fields are filled in or that the information is up-to-date!
	GetDBInfo() db.DatabaseInfo
	// Close flushes pending writes and releases the database.
	// Only the registry closes handles, when it shuts down.
	Close() error
}

// IEditor accumulates mutations against one store.
// Nothing is visible to readers before one of the terminal operations Apply or Commit.
// An editor is consumed by its terminal operation, further use is ignored.
type IEditor interface {
	// Put sets the value of a key. A later Put or Remove of the same key in this editor replaces it.
	Put(key string, value db.Value) IEditor
	// Remove removes a key.
	Remove(key string) IEditor
	// Clear removes every entry. It is applied before all other mutations of the editor,
	// no matter when it was called.
	Clear() IEditor
	// Apply schedules the mutations for an asynchronous write and returns immediately.
	// Deferred writes of one goroutine against one store are written in the order they were issued.
	// Failures are logged, the caller cannot observe them.
	Apply()
	// Commit writes the mutations and blocks until they are persisted.
	// It returns true iff the write succeeded; on false the store is unchanged.
	Commit() bool
}

// OnChangeListener is notified after a key of a store changed.
// A clear of the store is reported with the empty key.
// Listeners are called on the writer goroutine of the store and must not block.
// Calling Commit or Flush of the same store from a listener deadlocks, use Apply instead.
//
// Listeners are identified by equality, so the dynamic type must be comparable.
// Register a pointer (or use NewChangeListener); a listener whose type holds a slice,
// map or func by value is ignored with a warning.
type OnChangeListener interface {
	OnPreferenceChanged(storeName, key string)
}

// --------------------------------------------------------------------------
// Change Listener
// --------------------------------------------------------------------------

// ChangeListener adapts a function to the OnChangeListener interface.
// Since functions are not comparable, every ChangeListener carries an id;
// keep the returned pointer to unregister it later.
type ChangeListener struct {
	ID uuid.UUID
	fn func(storeName, key string)
}

// NewChangeListener wraps fn into a listener with a new id.
func NewChangeListener(fn func(storeName, key string)) *ChangeListener {
	return &ChangeListener{
		ID: uuid.New(),
		fn: fn,
	}
}

// OnPreferenceChanged implements OnChangeListener.
func (l *ChangeListener) OnPreferenceChanged(storeName, key string) {
	if l.fn != nil {
		l.fn(storeName, key)
	}
}

// --------------------------------------------------------------------------
// Validation
// --------------------------------------------------------------------------

var nameRegexp = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateName checks that a store name can be used as a file name and metric label.
func ValidateName(name string) error {
	if name == "." || name == ".." || !nameRegexp.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

var (
	// ErrInvalidName is returned for store names that are empty or contain characters other than [A-Za-z0-9._-].
	ErrInvalidName = errors.New("invalid store name")
	// ErrInvalidKey is recorded by an editor that received an empty key.
	ErrInvalidKey = errors.New("invalid key")
	// ErrEditorConsumed is recorded by an editor that was used after Apply or Commit.
	ErrEditorConsumed = errors.New("editor already applied or committed")
	// ErrRegistryClosed is returned by a registry after Close.
	ErrRegistryClosed = errors.New("registry is closed")
)

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
	Err  error   // The underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("StoreError (code %s): %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

// Unwrap returns the underlying error so that errors.Is and errors.As see through Error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new StoreError with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// WrapError creates a new StoreError with the given code and message wrapping err.
func WrapError(code RetCode, msg string, err error) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
		Err:  err,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess          RetCode = iota // 0: Command executed successfully.
	RetCInternalError                   // 1: Command failed due to an internal error.
	RetCInvalidOperation                // 2: Invalid operation (e.g. invalid store name).
	RetCOpenFailed                      // 3: The store could not be opened.
	RetCClosed                          // 4: The registry or store was closed.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCOpenFailed:
		return "OpenFailed"
	case RetCClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}
