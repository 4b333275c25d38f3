package lstore

import (
	"sync"

	"github.com/ValentinKolb/prefKV/lib/db"
	"github.com/ValentinKolb/prefKV/lib/store"
)

// editorImpl collects the mutations of one write transaction.
// The first invalid call (empty key, use after Apply or Commit) is remembered and
// makes the terminal operation fail.
type editorImpl struct {
	store *storeImpl

	mu    sync.Mutex
	clear bool
	ops   []db.Mutation
	index map[string]int // position of a key in ops
	err   error
	done  bool
}

func newEditor(s *storeImpl) *editorImpl {
	return &editorImpl{
		store: s,
		index: make(map[string]int),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store.IEditor)
// --------------------------------------------------------------------------

func (e *editorImpl) Put(key string, value db.Value) store.IEditor {
	e.add(db.Mutation{Op: db.OpPut, Key: key, Value: value.Clone()})
	return e
}

func (e *editorImpl) Remove(key string) store.IEditor {
	e.add(db.Mutation{Op: db.OpRemove, Key: key})
	return e
}

func (e *editorImpl) Clear() store.IEditor {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.checkUsable() {
		e.clear = true
	}
	return e
}

func (e *editorImpl) Apply() {
	batch, err := e.finish()
	if err != nil {
		plog.Warningf("dropping deferred write to %s: %v", e.store.name, err)
		e.store.metrics.errors[modeApply].Inc()
		return
	}
	e.store.apply(batch)
}

func (e *editorImpl) Commit() bool {
	batch, err := e.finish()
	if err != nil {
		plog.Warningf("rejecting commit to %s: %v", e.store.name, err)
		e.store.metrics.errors[modeCommit].Inc()
		return false
	}
	return e.store.commit(batch)
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// add records a put or remove. A later mutation of the same key replaces the earlier one
// but keeps its position.
func (e *editorImpl) add(m db.Mutation) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.checkUsable() {
		return
	}
	if m.Key == "" {
		if e.err == nil {
			e.err = store.ErrInvalidKey
		}
		return
	}

	if i, ok := e.index[m.Key]; ok {
		e.ops[i] = m
		return
	}
	e.index[m.Key] = len(e.ops)
	e.ops = append(e.ops, m)
}

// checkUsable reports whether the editor still accepts mutations.
// Must be called with mu held.
func (e *editorImpl) checkUsable() bool {
	if e.done {
		plog.Warningf("editor of %s used after Apply or Commit", e.store.name)
		return false
	}
	return true
}

// finish consumes the editor and returns its batch (clear first).
func (e *editorImpl) finish() ([]db.Mutation, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.done {
		return nil, store.ErrEditorConsumed
	}
	e.done = true
	if e.err != nil {
		return nil, e.err
	}

	batch := make([]db.Mutation, 0, len(e.ops)+1)
	if e.clear {
		batch = append(batch, db.Mutation{Op: db.OpClear})
	}
	return append(batch, e.ops...), nil
}
