package store

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var plog = logger.GetLogger("store")

// Registry keeps exactly one open handle per store name for its whole lifetime.
// Handles are opened lazily on first use and never evicted.
//
// Thread-safety: All methods are safe for concurrent use. Concurrent first access to
// the same name opens the store exactly once; all callers receive the same handle.
type Registry struct {
	opener Opener
	stores *xsync.MapOf[string, IStore]

	closeMu sync.RWMutex // Resolve holds it shared while opening, Close exclusively to set closed
	closed  atomic.Bool
}

// NewRegistry creates an empty registry that opens stores with the given opener.
func NewRegistry(opener Opener) *Registry {
	return &Registry{
		opener: opener,
		stores: xsync.NewMapOf[string, IStore](),
	}
}

// Resolve returns the handle for name, opening it on first use.
// If the store cannot be opened, a *Error with RetCOpenFailed is returned and
// nothing is cached, so a later call tries again.
func (r *Registry) Resolve(name string) (IStore, error) {
	// fast path, no locking
	if s, ok := r.stores.Load(name); ok && !r.closed.Load() {
		return s, nil
	}

	if err := ValidateName(name); err != nil {
		return nil, WrapError(RetCInvalidOperation, "cannot resolve store", err)
	}

	// checked before the lock: listeners running while Close drains the stores end up here
	if r.closed.Load() {
		return nil, WrapError(RetCClosed, "cannot resolve store "+name, ErrRegistryClosed)
	}

	r.closeMu.RLock()
	defer r.closeMu.RUnlock()
	if r.closed.Load() {
		return nil, WrapError(RetCClosed, "cannot resolve store "+name, ErrRegistryClosed)
	}

	// slow path, Compute holds the lock for this key while the opener runs
	var openErr error
	s, ok := r.stores.Compute(name, func(old IStore, loaded bool) (IStore, bool) {
		if loaded {
			return old, false
		}
		opened, err := r.opener(name)
		if err != nil {
			openErr = err
			return nil, true
		}
		plog.Debugf("opened store %s", name)
		return opened, false
	})
	if !ok {
		plog.Warningf("opening store %s failed: %v", name, openErr)
		return nil, WrapError(RetCOpenFailed, "cannot open store "+name, openErr)
	}
	return s, nil
}

// Prefs resolves name and returns a typed accessor bound to it.
func (r *Registry) Prefs(name string) (Prefs, error) {
	s, err := r.Resolve(name)
	if err != nil {
		return Prefs{}, err
	}
	return NewPrefs(s), nil
}

// Names returns the sorted names of all open stores.
func (r *Registry) Names() []string {
	var names []string
	r.stores.Range(func(name string, _ IStore) bool {
		names = append(names, name)
		return true
	})
	sort.Strings(names)
	return names
}

// Flush blocks until the deferred writes of every open store are written.
func (r *Registry) Flush() {
	r.stores.Range(func(_ string, s IStore) bool {
		s.Flush()
		return true
	})
}

// Close flushes and closes every open store. Afterwards Resolve fails with RetCClosed,
// handles obtained before stay readable but reject writes.
// It is meant for process shutdown; calling it twice is a no-op.
func (r *Registry) Close() error {
	// once closed is set under the exclusive lock, no open is in progress and none
	// can start, so the stores can be drained without holding the lock. The writer
	// goroutines run listeners that may call Resolve while they are drained.
	r.closeMu.Lock()
	wasClosed := r.closed.Swap(true)
	r.closeMu.Unlock()
	if wasClosed {
		return nil
	}

	var errs []error
	r.stores.Range(func(name string, s IStore) bool {
		if err := s.Close(); err != nil {
			plog.Errorf("closing store %s failed: %v", name, err)
			errs = append(errs, err)
		}
		return true
	})
	return errors.Join(errs...)
}
