package lstore

import (
	"reflect"
	"time"

	"github.com/ValentinKolb/prefKV/lib/db"
	"github.com/ValentinKolb/prefKV/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var plog = logger.GetLogger("lstore")

// writeJob is one unit of work for the writer goroutine of a store.
type writeJob struct {
	batch   []db.Mutation
	mode    string
	result  chan bool     // set for commits, receives the outcome
	flushed chan struct{} // set for flush markers, closed when reached
}

type storeImpl struct {
	name      string
	db        db.KVDB
	queue     *writeQueue[writeJob]
	listeners *xsync.MapOf[store.OnChangeListener, struct{}]
	metrics   *storeMetrics
}

// NewLocalStore creates the handle of the store with the given name on top of database.
// All writes of the handle go through one writer goroutine, which executes them in
// order and notifies the listeners.
func NewLocalStore(name string, database db.KVDB) store.IStore {
	s := &storeImpl{
		name:      name,
		db:        database,
		listeners: xsync.NewMapOf[store.OnChangeListener, struct{}](),
		metrics:   newStoreMetrics(name),
	}
	s.queue = newWriteQueue(s.write)
	return s
}

// Opener returns a store.Opener that opens the database of a store with factory
// and wraps it into a local store handle.
func Opener(factory db.Factory) store.Opener {
	return func(name string) (store.IStore, error) {
		database, err := factory(name)
		if err != nil {
			return nil, err
		}
		return NewLocalStore(name, database), nil
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Name() string {
	return s.name
}

func (s *storeImpl) Get(key string) (db.Value, bool) {
	return s.db.Get(key)
}

func (s *storeImpl) Contains(key string) bool {
	return s.db.Has(key)
}

func (s *storeImpl) GetAll() map[string]db.Value {
	return s.db.GetAll()
}

func (s *storeImpl) Edit() store.IEditor {
	return newEditor(s)
}

func (s *storeImpl) RegisterOnChangeListener(listener store.OnChangeListener) {
	if listener == nil {
		return
	}
	if !usableListener(listener) {
		plog.Warningf("ignoring listener of type %T for %s: not comparable, register a pointer instead", listener, s.name)
		return
	}
	s.listeners.Store(listener, struct{}{})
}

func (s *storeImpl) UnregisterOnChangeListener(listener store.OnChangeListener) {
	if !usableListener(listener) {
		return
	}
	s.listeners.Delete(listener)
}

// Flush blocks until every job queued before the call is done.
// It must not be called from a listener.
func (s *storeImpl) Flush() {
	marker := &writeJob{flushed: make(chan struct{})}
	if !s.queue.push(marker) {
		return // closed, close already drained the queue
	}
	<-marker.flushed
}

func (s *storeImpl) GetDBInfo() db.DatabaseInfo {
	return s.db.GetInfo()
}

// Close drains the write queue and closes the database.
func (s *storeImpl) Close() error {
	s.queue.close()
	return s.db.Close()
}

// --------------------------------------------------------------------------
// Write Path
// --------------------------------------------------------------------------

// apply queues a batch without waiting for it.
func (s *storeImpl) apply(batch []db.Mutation) {
	s.metrics.pending.Add(1)
	if !s.queue.push(&writeJob{batch: batch, mode: modeApply}) {
		s.metrics.pending.Add(-1)
		s.metrics.errors[modeApply].Inc()
		plog.Errorf("dropping deferred write to %s: %v", s.name, db.ErrClosed)
	}
}

// commit queues a batch and waits until the writer goroutine executed it.
// Since it uses the same queue, it is ordered after all earlier applies of the caller.
func (s *storeImpl) commit(batch []db.Mutation) bool {
	job := &writeJob{batch: batch, mode: modeCommit, result: make(chan bool, 1)}
	s.metrics.pending.Add(1)
	if !s.queue.push(job) {
		s.metrics.pending.Add(-1)
		s.metrics.errors[modeCommit].Inc()
		plog.Warningf("commit to %s failed: %v", s.name, db.ErrClosed)
		return false
	}
	return <-job.result
}

// write is the handler of the writer goroutine.
func (s *storeImpl) write(job *writeJob) {
	if job.flushed != nil {
		close(job.flushed)
		return
	}

	start := time.Now()
	changed, err := s.db.Write(job.batch)
	s.metrics.duration.UpdateDuration(start)
	s.metrics.pending.Add(-1)

	if err != nil {
		s.metrics.errors[job.mode].Inc()
		if job.result == nil {
			// nobody waits for deferred writes, the log is all that is left
			plog.Errorf("deferred write to %s failed: %v", s.name, err)
		} else {
			plog.Warningf("commit to %s failed: %v", s.name, err)
			job.result <- false
		}
		return
	}

	s.metrics.writes[job.mode].Inc()
	s.notify(changed)
	if job.result != nil {
		job.result <- true
	}
}

// notify calls every listener once per changed key.
// A panicking listener is logged and does not stop the writer goroutine.
func (s *storeImpl) notify(changed []string) {
	if len(changed) == 0 || s.listeners.Size() == 0 {
		return
	}
	s.listeners.Range(func(listener store.OnChangeListener, _ struct{}) bool {
		for _, key := range changed {
			s.callListener(listener, key)
		}
		return true
	})
}

// usableListener reports whether listener can be used as a key of the listener set.
// Hashing a value whose dynamic type holds a slice, map or func panics.
func usableListener(listener store.OnChangeListener) bool {
	return listener != nil && reflect.TypeOf(listener).Comparable()
}

func (s *storeImpl) callListener(listener store.OnChangeListener, key string) {
	defer func() {
		if r := recover(); r != nil {
			plog.Errorf("listener of %s panicked on key %q: %v", s.name, key, r)
		}
	}()
	listener.OnPreferenceChanged(s.name, key)
}
