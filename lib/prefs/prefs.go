package prefs

import (
	"sync"

	"github.com/ValentinKolb/prefKV/lib/config"
	"github.com/ValentinKolb/prefKV/lib/logging"
	"github.com/ValentinKolb/prefKV/lib/store"
	"github.com/ValentinKolb/prefKV/lib/store/lstore"
	"github.com/lni/dragonboat/v4/logger"
)

var plog = logger.GetLogger("prefs")

// instance is the process-wide configuration together with its registry
type instance struct {
	cfg      config.Config
	registry *store.Registry
}

var (
	mu      sync.Mutex
	current *instance
)

// Init validates cfg, configures logging and installs a new process-wide registry.
// A registry installed by an earlier Init is flushed and closed, handles obtained
// from it must not be used afterwards.
func Init(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return store.WrapError(store.RetCInvalidOperation, "invalid configuration", err)
	}
	if err := logging.Init(cfg.LogLevel, nil); err != nil {
		return err
	}

	next, err := newInstance(cfg)
	if err != nil {
		return err
	}

	mu.Lock()
	prev := current
	current = next
	mu.Unlock()

	plog.Infof("initialized (app id %s, engine %s, data dir %s)", cfg.ResolveAppID(), cfg.Engine, cfg.DataDir)

	if prev != nil {
		if err := prev.registry.Close(); err != nil {
			plog.Warningf("closing previous registry: %v", err)
		}
	}
	return nil
}

func newInstance(cfg config.Config) (*instance, error) {
	factory, err := cfg.NewFactory()
	if err != nil {
		return nil, store.WrapError(store.RetCInvalidOperation, "invalid configuration", err)
	}
	return &instance{
		cfg:      cfg,
		registry: store.NewRegistry(lstore.Opener(factory)),
	}, nil
}

// get returns the installed instance, creating one from config.Defaults if Init was never called
func get() (*instance, error) {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		inst, err := newInstance(config.Defaults())
		if err != nil {
			return nil, err
		}
		plog.Debugf("no configuration installed, using defaults")
		current = inst
	}
	return current, nil
}

// --------------------------------------------------------------------------
// Store Selection
// --------------------------------------------------------------------------

// With returns the accessor for the default store "<app-id>_preferences".
func With() (store.Prefs, error) {
	inst, err := get()
	if err != nil {
		return store.Prefs{}, err
	}
	return inst.registry.Prefs(inst.cfg.DefaultStoreName())
}

// WithName returns the accessor for the store with the given name.
func WithName(name string) (store.Prefs, error) {
	inst, err := get()
	if err != nil {
		return store.Prefs{}, err
	}
	return inst.registry.Prefs(name)
}

// Edit returns a fresh editor for the default store.
func Edit() (*store.Editor, error) {
	p, err := With()
	if err != nil {
		return nil, err
	}
	return p.Edit(), nil
}

// EditName returns a fresh editor for the store with the given name.
func EditName(name string) (*store.Editor, error) {
	p, err := WithName(name)
	if err != nil {
		return nil, err
	}
	return p.Edit(), nil
}

// --------------------------------------------------------------------------
// Process State
// --------------------------------------------------------------------------

// DefaultStoreName returns the name of the default store of the installed configuration.
// It does not open anything.
func DefaultStoreName() string {
	mu.Lock()
	defer mu.Unlock()

	if current == nil {
		return config.Defaults().DefaultStoreName()
	}
	return current.cfg.DefaultStoreName()
}

// Registry returns the process-wide registry.
func Registry() (*store.Registry, error) {
	inst, err := get()
	if err != nil {
		return nil, err
	}
	return inst.registry, nil
}

// Flush blocks until all deferred writes of every open store are written.
func Flush() {
	mu.Lock()
	inst := current
	mu.Unlock()

	if inst != nil {
		inst.registry.Flush()
	}
}

// Close flushes and closes every open store and uninstalls the configuration.
// A later call of any other function starts over with config.Defaults.
func Close() error {
	mu.Lock()
	inst := current
	current = nil
	mu.Unlock()

	if inst == nil {
		return nil
	}
	return inst.registry.Close()
}
