package config

import (
	"strings"
	"testing"

	"github.com/ValentinKolb/prefKV/lib/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	require.NoError(t, Defaults().Validate())
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		mutate func(c *Config)
		errMsg string
	}{
		"invalid app id":    {func(c *Config) { c.AppID = "my app" }, "app id"},
		"invalid engine":    {func(c *Config) { c.Engine = "redis" }, "engine"},
		"missing data dir":  {func(c *Config) { c.DataDir = "" }, "data dir"},
		"invalid serialzer": {func(c *Config) { c.Serializer = "xml" }, "serializer"},
		"invalid log level": {func(c *Config) { c.LogLevel = "loud" }, "log level"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			c := Defaults()
			tc.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}

	// memory needs no data directory
	c := Defaults()
	c.Engine = "memory"
	c.DataDir = ""
	assert.NoError(t, c.Validate())

	// all problems are reported at once
	c = Config{Engine: "x", Serializer: "y", LogLevel: "z", DataDir: "d"}
	err := c.Validate()
	require.Error(t, err)
	assert.Len(t, strings.Split(err.Error(), "\n"), 3)
}

func TestDefaultStoreName(t *testing.T) {
	c := Defaults()
	c.AppID = "com.example.app"
	assert.Equal(t, "com.example.app_preferences", c.DefaultStoreName())

	// without app id the executable name is used
	c.AppID = ""
	assert.NotEmpty(t, c.ResolveAppID())
	assert.True(t, strings.HasSuffix(c.DefaultStoreName(), DefaultStoreSuffix))
}

func TestNewFactory(t *testing.T) {
	c := Defaults()
	c.DataDir = t.TempDir()
	c.Serializer = "json"

	factory, err := c.NewFactory()
	require.NoError(t, err)

	database, err := factory("settings")
	require.NoError(t, err)
	defer database.Close()
	assert.Equal(t, db.ImplBolt, database.GetInfo().DbType)

	c.Serializer = "xml"
	_, err = c.NewFactory()
	assert.Error(t, err)
}

func TestString(t *testing.T) {
	c := Defaults()
	c.AppID = "demo"
	out := c.String()

	assert.Contains(t, out, "APPLICATION")
	assert.Contains(t, out, "demo_preferences")
	assert.Contains(t, out, "STORAGE")
	assert.Contains(t, out, "bolt")

	c.Engine = "memory"
	assert.Contains(t, c.String(), "(not used)")
}
