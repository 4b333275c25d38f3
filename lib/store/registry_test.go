package store_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/prefKV/lib/db"
	"github.com/ValentinKolb/prefKV/lib/db/engines"
	"github.com/ValentinKolb/prefKV/lib/store"
	"github.com/ValentinKolb/prefKV/lib/store/lstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingOpener opens in-memory stores and counts the calls per name
type countingOpener struct {
	calls sync.Map // name -> *atomic.Int64
	delay time.Duration
	fail  atomic.Bool
}

func (c *countingOpener) open(name string) (store.IStore, error) {
	n, _ := c.calls.LoadOrStore(name, &atomic.Int64{})
	n.(*atomic.Int64).Add(1)
	time.Sleep(c.delay)
	if c.fail.Load() {
		return nil, errors.New("storage unavailable")
	}
	factory, err := engines.NewFactory(engines.EngineMemory, "", nil)
	if err != nil {
		return nil, err
	}
	return lstore.Opener(factory)(name)
}

func (c *countingOpener) count(name string) int64 {
	n, ok := c.calls.Load(name)
	if !ok {
		return 0
	}
	return n.(*atomic.Int64).Load()
}

func newRegistry(t *testing.T) (*store.Registry, *countingOpener) {
	opener := &countingOpener{}
	r := store.NewRegistry(opener.open)
	t.Cleanup(func() { _ = r.Close() })
	return r, opener
}

func TestResolveReusesHandle(t *testing.T) {
	r, opener := newRegistry(t)

	a1, err := r.Resolve("A")
	require.NoError(t, err)
	a2, err := r.Resolve("A")
	require.NoError(t, err)
	b, err := r.Resolve("B")
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.Equal(t, int64(1), opener.count("A"))
	assert.Equal(t, []string{"A", "B"}, r.Names())
}

func TestConcurrentFirstAccess(t *testing.T) {
	r, opener := newRegistry(t)
	opener.delay = 10 * time.Millisecond

	const callers = 32
	handles := make([]store.IStore, callers)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			s, err := r.Resolve("shared")
			assert.NoError(t, err)
			handles[i] = s
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), opener.count("shared"), "the store must be opened exactly once")
	for _, h := range handles {
		assert.Same(t, handles[0], h)
	}
}

func TestResolveFailureIsNotCached(t *testing.T) {
	r, opener := newRegistry(t)
	opener.fail.Store(true)

	_, err := r.Resolve("flaky")
	require.Error(t, err)

	var storeErr *store.Error
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, store.RetCOpenFailed, storeErr.Code)
	assert.Contains(t, err.Error(), "storage unavailable")
	assert.Empty(t, r.Names())

	opener.fail.Store(false)
	s, err := r.Resolve("flaky")
	require.NoError(t, err)
	assert.Equal(t, "flaky", s.Name())
	assert.Equal(t, int64(2), opener.count("flaky"))
}

func TestResolveInvalidName(t *testing.T) {
	r, opener := newRegistry(t)

	for _, name := range []string{"", ".", "..", "a/b", "with space", "ü"} {
		_, err := r.Resolve(name)
		assert.ErrorIs(t, err, store.ErrInvalidName, "name %q", name)

		var storeErr *store.Error
		if assert.True(t, errors.As(err, &storeErr)) {
			assert.Equal(t, store.RetCInvalidOperation, storeErr.Code)
		}
		assert.Equal(t, int64(0), opener.count(name))
	}

	for _, name := range []string{"a", "app_preferences", "com.example.app", "A-1"} {
		assert.NoError(t, store.ValidateName(name), "name %q", name)
	}
}

func TestRegistryFlushAndClose(t *testing.T) {
	r, _ := newRegistry(t)

	p, err := r.Prefs("settings")
	require.NoError(t, err)
	p.ApplyString("theme", "dark")

	r.Flush()
	assert.Equal(t, "dark", p.GetString("theme"))

	p.ApplyLong("launches", 3)
	require.NoError(t, r.Close())
	assert.Equal(t, int64(3), p.GetLong("launches"), "close drains deferred writes")

	_, err = r.Resolve("settings")
	assert.ErrorIs(t, err, store.ErrRegistryClosed)
	_, err = r.Resolve("other")
	assert.ErrorIs(t, err, store.ErrRegistryClosed)

	// handles obtained before keep reading but reject writes
	assert.False(t, p.CommitString("theme", "light"))
	assert.Equal(t, "dark", p.GetString("theme"))

	require.NoError(t, r.Close())
}

func TestCloseWithResolvingListener(t *testing.T) {
	r, _ := newRegistry(t)

	p, err := r.Prefs("a")
	require.NoError(t, err)

	resolved := make(chan error, 1)
	p.RegisterOnChangeListener(store.NewChangeListener(func(_, _ string) {
		// runs on the writer goroutine while Close drains the store
		time.Sleep(50 * time.Millisecond)
		_, err := r.Resolve("audit")
		resolved <- err
	}))

	p.ApplyString("theme", "dark")

	closed := make(chan error, 1)
	go func() { closed <- r.Close() }()

	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Close did not return while a listener resolved a store")
	}

	err = <-resolved
	var storeErr *store.Error
	require.ErrorAs(t, err, &storeErr)
	assert.Equal(t, store.RetCClosed, storeErr.Code)
	assert.ErrorIs(t, err, store.ErrRegistryClosed)
}

func TestRegistryDurableReopen(t *testing.T) {
	dir := t.TempDir()
	factory, err := engines.NewFactory(engines.EngineBolt, dir, nil)
	require.NoError(t, err)

	first := store.NewRegistry(lstore.Opener(factory))
	p, err := first.Prefs("durable")
	require.NoError(t, err)
	require.True(t, p.CommitDouble("pi", 3.14159265358979))
	require.NoError(t, first.Close())

	// a new registry, as after a process restart
	second := store.NewRegistry(lstore.Opener(factory))
	defer second.Close()
	p, err = second.Prefs("durable")
	require.NoError(t, err)
	assert.Equal(t, 3.14159265358979, p.GetDouble("pi"))

	info := p.Store().GetDBInfo()
	assert.Equal(t, db.ImplBolt, info.DbType)
}
