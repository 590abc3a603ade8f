package config

import (
	"fmt"
	"strconv"

	"github.com/spf13/viper"
)

// Manager provides keyed access to raw configuration values
type Manager interface {
	GetString(key string) (string, error)
	GetStringWithDefault(key, defaultValue string) string
	RequireString(key string) string
	GetInt(key string) (int, error)
	GetIntWithDefault(key string, defaultValue int) int
	GetBoolWithDefault(key string, defaultValue bool) bool
}

// ViperManager implements Manager on top of a viper instance
type ViperManager struct {
	v *viper.Viper
}

// NewManager wraps v. A nil v reads only CONDENSER_* environment variables.
func NewManager(v *viper.Viper) Manager {
	if v == nil {
		v = viper.New()
		v.SetEnvPrefix(EnvPrefix)
		v.AutomaticEnv()
	}
	return &ViperManager{v: v}
}

// GetString gets a configuration value by key, returns error if not found
func (m *ViperManager) GetString(key string) (string, error) {
	if !m.v.IsSet(key) || m.v.GetString(key) == "" {
		return "", fmt.Errorf("configuration key %s not found", key)
	}
	return m.v.GetString(key), nil
}

// GetStringWithDefault gets a configuration value by key, returns default if not found
func (m *ViperManager) GetStringWithDefault(key, defaultValue string) string {
	if value, err := m.GetString(key); err == nil {
		return value
	}
	return defaultValue
}

// RequireString gets a configuration value by key, panics if not found
func (m *ViperManager) RequireString(key string) string {
	value, err := m.GetString(key)
	if err != nil {
		panic(fmt.Sprintf("required configuration key %s not found", key))
	}
	return value
}

// GetInt gets an integer configuration value by key
func (m *ViperManager) GetInt(key string) (int, error) {
	if !m.v.IsSet(key) {
		return 0, fmt.Errorf("configuration key %s not found", key)
	}
	value, err := castInt(m.v.Get(key))
	if err != nil {
		return 0, fmt.Errorf("configuration key %s has invalid integer value: %v", key, m.v.Get(key))
	}
	return value, nil
}

// GetIntWithDefault gets an integer configuration value by key, returns default if not found or invalid
func (m *ViperManager) GetIntWithDefault(key string, defaultValue int) int {
	if value, err := m.GetInt(key); err == nil {
		return value
	}
	return defaultValue
}

// GetBoolWithDefault gets a boolean configuration value by key, returns default if not found or invalid
func (m *ViperManager) GetBoolWithDefault(key string, defaultValue bool) bool {
	if !m.v.IsSet(key) {
		return defaultValue
	}
	switch m.v.GetString(key) {
	case "1", "t", "T", "true", "TRUE", "True", "0", "f", "F", "false", "FALSE", "False":
		return m.v.GetBool(key)
	}
	return defaultValue
}

func castInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		return strconv.Atoi(n)
	}
	return 0, fmt.Errorf("not an integer: %v", v)
}
