// Package prefs is the process-wide entry point to the preference stores.
//
// It owns one store.Registry built from a config.Config. Init installs the
// configuration; without Init the first call uses config.Defaults (bolt engine,
// data directory "data"). Every selection returns an independent store.Prefs bound
// to one store, there is no shared "current store":
//
//	prefs.Init(config.Config{AppID: "com.example.app", DataDir: dir, Engine: "bolt",
//		Serializer: "binary", LogLevel: "warn"})
//	defer prefs.Close()
//
//	p, err := prefs.With()             // store "com.example.app_preferences"
//	if err != nil {
//		return err
//	}
//	p.ApplyString("theme", "dark")
//
//	cache, _ := prefs.WithName("cache")  // another, independent store
//	ok := cache.Edit().PutLong("updated", now).Remove("stale").Commit()
//
// Store names are derived from the app id: the default store is "<app-id>_preferences",
// where the app id falls back to the base name of the executable.
package prefs
