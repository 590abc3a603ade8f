package fileops

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_WriteFileCreatesDirs(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := NewManager(fs)

	require.NoError(t, m.WriteFile("/out/reports/run.txt", []byte("hello")))

	data, err := m.ReadFile("/out/reports/run.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.True(t, m.FileExists("/out/reports"))
	assert.False(t, m.FileExists("/out/reports/run.txt.tmp"))
}

func TestManager_WriteFileOverwrites(t *testing.T) {
	m := NewManager(afero.NewMemMapFs())

	require.NoError(t, m.WriteFile("/a.txt", []byte("first")))
	require.NoError(t, m.WriteFile("/a.txt", []byte("second")))

	data, err := m.ReadFile("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestManager_FileExists(t *testing.T) {
	m := NewManager(afero.NewMemMapFs())
	assert.False(t, m.FileExists("/missing"))
}

type sample struct {
	Name  string `yaml:"name" json:"name"`
	Count int    `yaml:"count" json:"count"`
}

func TestManager_WriteObjectAsYAML(t *testing.T) {
	m := NewManager(afero.NewMemMapFs())

	require.NoError(t, m.WriteObjectAsYAML("/r.yaml", sample{Name: "run", Count: 3}))

	data, err := m.ReadFile("/r.yaml")
	require.NoError(t, err)
	assert.Equal(t, "name: run\ncount: 3\n", string(data))
}

func TestManager_WriteObjectAsJSON(t *testing.T) {
	m := NewManager(afero.NewMemMapFs())

	require.NoError(t, m.WriteObjectAsJSON("/r.json", sample{Name: "run", Count: 3}))

	data, err := m.ReadFile("/r.json")
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"name\": \"run\",\n  \"count\": 3\n}\n", string(data))
}
