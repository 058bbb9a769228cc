package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	assert.NotNil(t, l.vars)
	assert.Contains(t, l.mappings, "browserstack")
}

func TestDefaultLoader_Load(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	content := `# grid credentials
BROWSERSTACK_USERNAME=alice
BROWSERSTACK_ACCESS_KEY="quoted key"
EMPTY=
SINGLE_QUOTE='single'
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0644))

	l := NewLoader()
	require.NoError(t, l.Load(envFile))
	assert.True(t, l.loaded)
	assert.Equal(t, "alice", l.vars["BROWSERSTACK_USERNAME"])
	assert.Equal(t, "quoted key", l.vars["BROWSERSTACK_ACCESS_KEY"])
	assert.Equal(t, "", l.vars["EMPTY"])
	assert.Equal(t, "single", l.vars["SINGLE_QUOTE"])
}

func TestDefaultLoader_Load_FileNotFound(t *testing.T) {
	err := NewLoader().Load("/nonexistent/.env")
	assert.Error(t, err)
}

func TestDefaultLoader_Get_OSPrecedence(t *testing.T) {
	l := NewLoader()
	l.vars["CB_TEST_KEY"] = "from_file"
	assert.Equal(t, "from_file", l.Get("CB_TEST_KEY"))

	t.Setenv("CB_TEST_KEY", "from_os")
	assert.Equal(t, "from_os", l.Get("CB_TEST_KEY"))
	assert.Equal(t, "", l.Get("CB_NONEXISTENT"))
}

func TestDefaultLoader_GetRequired(t *testing.T) {
	l := NewLoader()
	_, err := l.GetRequired("CB_MISSING_REQUIRED")
	assert.ErrorContains(t, err, "CB_MISSING_REQUIRED")

	l.vars["CB_PRESENT"] = "v"
	v, err := l.GetRequired("CB_PRESENT")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestDefaultLoader_GetWithDefault(t *testing.T) {
	l := NewLoader()
	assert.Equal(t, "fallback", l.GetWithDefault("CB_NOPE", "fallback"))
	l.vars["CB_YES"] = "set"
	assert.Equal(t, "set", l.GetWithDefault("CB_YES", "fallback"))
}

func TestDefaultLoader_GridCredentials(t *testing.T) {
	t.Setenv("BROWSERSTACK_USERNAME", "bob")
	t.Setenv("BROWSERSTACK_ACCESS_KEY", "key-123")

	creds := NewLoader().GridCredentials("BrowserStack")
	assert.Equal(t, Credentials{Username: "bob", AccessKey: "key-123"}, creds)
}

func TestDefaultLoader_GridCredentials_UnknownProvider(t *testing.T) {
	t.Setenv("MYGRID_USERNAME", "carol")

	creds := NewLoader().GridCredentials("mygrid")
	assert.Equal(t, "carol", creds.Username)
	assert.Empty(t, creds.AccessKey)
}

func TestNewLoaderWithMappings(t *testing.T) {
	l := NewLoaderWithMappings(map[string][2]string{
		"Internal": {"GRID_USER", "GRID_KEY"},
	})
	l.vars["GRID_USER"] = "dave"
	l.vars["GRID_KEY"] = "k"

	assert.Equal(t, Credentials{"dave", "k"}, l.GridCredentials("internal"))
}

func TestDefaultLoader_SetAndAll(t *testing.T) {
	l := NewLoader()
	require.NoError(t, l.Set("CB_SET_KEY", "value"))
	t.Cleanup(func() { os.Unsetenv("CB_SET_KEY") })

	assert.Equal(t, "value", os.Getenv("CB_SET_KEY"))
	all := l.All()
	assert.Equal(t, "value", all["CB_SET_KEY"])

	all["CB_SET_KEY"] = "mutated"
	assert.Equal(t, "value", l.All()["CB_SET_KEY"])
}
