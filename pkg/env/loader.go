// Package env resolves process-wide settings (grid credentials,
// target overrides) from the OS environment and optional .env
// files, and redacts credentials for logging.
package env

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Loader defines the interface for environment variable management.
type Loader interface {
	// Load reads environment variables from a .env file.
	Load(filepath string) error
	// Get retrieves an environment variable value.
	Get(key string) string
	// GetRequired retrieves a required environment variable or returns error.
	GetRequired(key string) (string, error)
	// GetWithDefault retrieves an environment variable with a default fallback.
	GetWithDefault(key, defaultValue string) string
	// GridCredentials resolves the username and access key for a named grid provider.
	GridCredentials(provider string) Credentials
	// Set sets an environment variable.
	Set(key, value string) error
	// All returns all loaded environment variables.
	All() map[string]string
}

// Credentials is a grid username / access key pair.
type Credentials struct {
	Username  string
	AccessKey string
}

// credentialVars names the env vars holding one provider's credentials.
type credentialVars struct {
	username  string
	accessKey string
}

// DefaultLoader implements Loader with .env file support and provider mappings.
type DefaultLoader struct {
	mu       sync.RWMutex
	vars     map[string]string
	loaded   bool
	mappings map[string]credentialVars
}

// NewLoader creates a new DefaultLoader with the standard grid provider mappings.
func NewLoader() *DefaultLoader {
	return &DefaultLoader{
		vars: make(map[string]string),
		mappings: map[string]credentialVars{
			"browserstack": {"BROWSERSTACK_USERNAME", "BROWSERSTACK_ACCESS_KEY"},
			"saucelabs":    {"SAUCE_USERNAME", "SAUCE_ACCESS_KEY"},
			"lambdatest":   {"LT_USERNAME", "LT_ACCESS_KEY"},
		},
	}
}

// NewLoaderWithMappings creates a loader with extra provider mappings.
// Each value is a pair of env var names: username, access key.
func NewLoaderWithMappings(mappings map[string][2]string) *DefaultLoader {
	l := NewLoader()
	for k, v := range mappings {
		l.mappings[strings.ToLower(k)] = credentialVars{v[0], v[1]}
	}
	return l
}

func (l *DefaultLoader) Load(filepath string) error {
	vars, err := godotenv.Read(filepath)
	if err != nil {
		return fmt.Errorf("read env file %s: %w", filepath, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for k, v := range vars {
		l.vars[k] = v
	}
	l.loaded = true
	return nil
}

func (l *DefaultLoader) Get(key string) string {
	// OS env takes precedence
	if v := os.Getenv(key); v != "" {
		return v
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.vars[key]
}

func (l *DefaultLoader) GetRequired(key string) (string, error) {
	v := l.Get(key)
	if v == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return v, nil
}

func (l *DefaultLoader) GetWithDefault(key, defaultValue string) string {
	if v := l.Get(key); v != "" {
		return v
	}
	return defaultValue
}

// GridCredentials looks up the provider's mapped variables. Unknown
// providers fall back to <PROVIDER>_USERNAME and <PROVIDER>_ACCESS_KEY.
// Missing values are returned empty; callers decide on placeholders.
func (l *DefaultLoader) GridCredentials(provider string) Credentials {
	l.mu.RLock()
	vars, ok := l.mappings[strings.ToLower(provider)]
	l.mu.RUnlock()
	if !ok {
		prefix := strings.ToUpper(provider)
		vars = credentialVars{prefix + "_USERNAME", prefix + "_ACCESS_KEY"}
	}
	return Credentials{
		Username:  l.Get(vars.username),
		AccessKey: l.Get(vars.accessKey),
	}
}

func (l *DefaultLoader) Set(key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.vars[key] = value
	return os.Setenv(key, value)
}

func (l *DefaultLoader) All() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make(map[string]string, len(l.vars))
	for k, v := range l.vars {
		result[k] = v
	}
	return result
}
