package cmd

import (
	"bytes"
	"testing"

	"github.com/ValentinKolb/prefKV/lib/db/engines"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes one prefkv invocation against a bolt store in dir
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer

	root := NewRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(append([]string{"--data-dir", dir, "--app-id", "cli"}, args...))

	err := root.Execute()
	return buf.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := run(t, dir, args...)
	require.NoError(t, err, out)
	return out
}

func TestVersion(t *testing.T) {
	out := mustRun(t, t.TempDir(), "version")
	assert.Equal(t, "prefKV v"+Version+"\n", out)
}

func TestSetGet(t *testing.T) {
	dir := t.TempDir()

	mustRun(t, dir, "set", "name", "alice")
	mustRun(t, dir, "set", "count", "42", "--type", "int")
	mustRun(t, dir, "set", "pi", "3.14159265358979", "--type", "double")
	mustRun(t, dir, "set", "tags", "b, a,b", "--type", "set")
	mustRun(t, dir, "set", "ratio", "0.5", "--type", "float", "--async")

	assert.Equal(t, "key=name, found=true, type=string, value=alice\n", mustRun(t, dir, "get", "name"))
	assert.Equal(t, "key=count, found=true, type=int, value=42\n", mustRun(t, dir, "get", "count"))
	assert.Equal(t, "key=tags, found=true, type=set, value=a,b\n", mustRun(t, dir, "get", "tags"))
	assert.Equal(t, "key=ratio, found=true, type=float, value=0.5\n", mustRun(t, dir, "get", "ratio"))

	// doubles are longs on disk, the typed getter decodes them
	assert.Contains(t, mustRun(t, dir, "get", "pi"), "type=long")
	assert.Equal(t, "key=pi, found=true, type=double, value=3.14159265358979\n", mustRun(t, dir, "get", "pi", "--type", "double"))

	// a getter of another type returns its default
	assert.Equal(t, "key=name, found=true, type=int, value=-1\n", mustRun(t, dir, "get", "name", "--type", "int"))

	assert.Equal(t, "key=missing, found=false\n", mustRun(t, dir, "get", "missing"))
}

func TestSetInvalidInput(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, dir, "set", "n", "many", "--type", "int")
	assert.Error(t, err)

	_, err = run(t, dir, "set", "n", "1", "--type", "complex")
	assert.Error(t, err)

	_, err = run(t, dir, "set", "n", "1", "--engine", "redis")
	assert.Error(t, err)

	_, err = run(t, dir, "has", "n", "--store", "../x")
	assert.Error(t, err)

	// nothing was written by the failed invocations
	assert.Equal(t, "key=n, found=false\n", mustRun(t, dir, "has", "n"))
}

func TestFailedCommandReleasesStore(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "set", "a", "1")

	_, err := run(t, dir, "set", "n", "many", "--type", "int")
	require.Error(t, err)
	_, err = run(t, dir, "export", "--format", "xml")
	require.Error(t, err)

	// the bolt file is unlocked again, a second opener in this process gets it
	factory, err := engines.NewFactory(engines.EngineBolt, dir, nil)
	require.NoError(t, err)
	database, err := factory("cli_preferences")
	require.NoError(t, err)
	defer database.Close()
	assert.True(t, database.Has("a"))
	assert.False(t, database.Has("n"))
}

func TestHasRemoveList(t *testing.T) {
	dir := t.TempDir()

	mustRun(t, dir, "set", "a", "1")
	mustRun(t, dir, "set", "b", "true", "--type", "bool")
	assert.Equal(t, "key=a, found=true\n", mustRun(t, dir, "has", "a"))

	out := mustRun(t, dir, "list")
	assert.Contains(t, out, "2 entries in cli_preferences")
	assert.Regexp(t, `b\s+bool\s+true`, out)

	mustRun(t, dir, "rm", "a")
	assert.Equal(t, "key=a, found=false\n", mustRun(t, dir, "has", "a"))

	mustRun(t, dir, "rm", "b", "--async")
	assert.Contains(t, mustRun(t, dir, "list"), "0 entries")
}

func TestStoresAreIsolated(t *testing.T) {
	dir := t.TempDir()

	mustRun(t, dir, "set", "k", "v", "--store", "A")
	assert.Equal(t, "key=k, found=true\n", mustRun(t, dir, "has", "k", "--store", "A"))
	assert.Equal(t, "key=k, found=false\n", mustRun(t, dir, "has", "k", "--store", "B"))
	assert.Equal(t, "key=k, found=false\n", mustRun(t, dir, "has", "k"))
}

func TestClear(t *testing.T) {
	dir := t.TempDir()

	mustRun(t, dir, "set", "a", "1")
	mustRun(t, dir, "set", "b", "2")

	assert.Equal(t, "cleared cli_preferences (2 entries)\n", mustRun(t, dir, "clear"))
	assert.Contains(t, mustRun(t, dir, "list"), "0 entries")
}

func TestExport(t *testing.T) {
	dir := t.TempDir()

	mustRun(t, dir, "set", "name", "alice")
	mustRun(t, dir, "set", "count", "7", "--type", "int")
	mustRun(t, dir, "set", "tags", "x,y", "--type", "set")

	out := mustRun(t, dir, "export")
	assert.Contains(t, out, `"name": "alice"`)
	assert.Contains(t, out, `"count": 7`)

	out = mustRun(t, dir, "export", "--format", "toml")
	assert.Contains(t, out, `name = "alice"`)
	assert.Contains(t, out, `count = 7`)

	out = mustRun(t, dir, "export", "--format", "yaml")
	assert.Contains(t, out, "name: alice")
	assert.Contains(t, out, "- x")

	_, err := run(t, dir, "export", "--format", "xml")
	assert.Error(t, err)
}

func TestEngines(t *testing.T) {
	for _, engine := range []string{"maple", "memory"} {
		t.Run(engine, func(t *testing.T) {
			dir := t.TempDir()
			mustRun(t, dir, "set", "k", "v", "--engine", engine, "--serializer", "json")
			out := mustRun(t, dir, "has", "k", "--engine", engine, "--serializer", "json")

			// only maple persists across invocations
			assert.Equal(t, engine == "maple", out == "key=k, found=true\n", out)
		})
	}
}

func TestPerf(t *testing.T) {
	dir := t.TempDir()
	mustRun(t, dir, "set", "keep", "me")

	out := mustRun(t, dir, "perf", "--ops", "200", "--threads", "2", "--keys", "10", "--metrics")
	for _, name := range []string{"commit", "apply", "get", "get-double", "contains", "mixed"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, `prefkv_writes_total{store="cli_preferences",mode="commit"}`)

	// perf keys are removed, other entries stay
	assert.Contains(t, mustRun(t, dir, "list"), "1 entries")

	_, err := run(t, dir, "perf", "--ops", "0")
	assert.Error(t, err)
}
