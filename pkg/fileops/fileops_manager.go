package fileops

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Manager provides file operation functionality
type Manager interface {
	EnsureDir(path string) error
	WriteFile(path string, content []byte) error
	ReadFile(path string) ([]byte, error)
	FileExists(path string) bool
	WriteObjectAsYAML(path string, object any) error
	WriteObjectAsJSON(path string, object any) error
}

// DefaultManager implements Manager on an afero filesystem
type DefaultManager struct {
	fs afero.Fs
}

// NewFileOpsManager creates a file manager on the local disk
func NewFileOpsManager() Manager {
	return NewManager(afero.NewOsFs())
}

// NewManager creates a file manager on fs
func NewManager(fs afero.Fs) Manager {
	return &DefaultManager{fs: fs}
}

// EnsureDir creates a directory if it doesn't exist
func (m *DefaultManager) EnsureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return m.fs.MkdirAll(path, 0o755)
}

// WriteFile writes content to a file, creating directories as needed.
// The file is written next to its destination and renamed into place.
func (m *DefaultManager) WriteFile(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := m.EnsureDir(dir); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(m.fs, tmp, content, 0o644); err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}
	if err := m.fs.Rename(tmp, path); err != nil {
		_ = m.fs.Remove(tmp)
		return fmt.Errorf("error moving file into place: %w", err)
	}
	return nil
}

// ReadFile reads content from a file
func (m *DefaultManager) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(m.fs, path)
}

// FileExists checks if a file exists
func (m *DefaultManager) FileExists(path string) bool {
	_, err := m.fs.Stat(path)
	return !os.IsNotExist(err)
}

// WriteObjectAsYAML marshals an object to YAML and writes it to a file
func (m *DefaultManager) WriteObjectAsYAML(path string, object any) error {
	data, err := yaml.Marshal(object)
	if err != nil {
		return fmt.Errorf("error marshalling to YAML: %w", err)
	}
	return m.WriteFile(path, data)
}

// WriteObjectAsJSON marshals an object to indented JSON and writes it to a file
func (m *DefaultManager) WriteObjectAsJSON(path string, object any) error {
	data, err := json.MarshalIndent(object, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling to JSON: %w", err)
	}
	return m.WriteFile(path, append(data, '\n'))
}
