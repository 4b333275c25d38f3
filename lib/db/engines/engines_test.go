package engines

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ValentinKolb/prefKV/lib/db"
	"github.com/ValentinKolb/prefKV/lib/db/engines/bolt"
	"github.com/ValentinKolb/prefKV/lib/db/engines/maple"
)

func TestNewFactory(t *testing.T) {
	for _, engine := range Names {
		t.Run(engine, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "nested", "data")

			factory, err := NewFactory(engine, dir, nil)
			if err != nil {
				t.Fatalf("NewFactory(%s) failed: %v", engine, err)
			}

			database, err := factory("settings")
			if err != nil {
				t.Fatalf("open failed: %v", err)
			}
			defer database.Close()

			if _, err := database.Write([]db.Mutation{{Op: db.OpPut, Key: "k", Value: db.StringValue("v")}}); err != nil {
				t.Fatalf("write failed: %v", err)
			}

			durable := database.SupportsFeature(db.FeatureDurable)
			if durable == (engine == EngineMemory) {
				t.Errorf("engine %s reported durable=%v", engine, durable)
			}

			var expected string
			switch engine {
			case EngineBolt:
				expected = bolt.FilePath(dir, "settings")
			case EngineMaple:
				expected = maple.SnapshotPath(dir, "settings")
			}
			if expected != "" {
				if _, err := os.Stat(expected); err != nil {
					t.Errorf("expected file %s: %v", expected, err)
				}
			}
		})
	}
}

func TestNewFactoryErrors(t *testing.T) {
	if _, err := NewFactory("unknown", t.TempDir(), nil); err == nil {
		t.Errorf("expected error for unknown engine")
	}
	if _, err := NewFactory(EngineBolt, "", nil); err == nil {
		t.Errorf("expected error for bolt without data directory")
	}
	if _, err := NewFactory(EngineMaple, "", nil); err == nil {
		t.Errorf("expected error for maple without data directory")
	}
	if _, err := NewFactory(EngineMemory, "", nil); err != nil {
		t.Errorf("memory engine must not need a data directory: %v", err)
	}
}
