package checks

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"digital.vasic.crossbrowser/pkg/assertion"
	"digital.vasic.crossbrowser/pkg/check"
)

// bankFile is the on-disk structure of a rejection bank (YAML or
// JSON).
type bankFile struct {
	Version    string         `yaml:"version"`
	Rejections []RejectionDef `yaml:"rejections"`
}

// RejectionDef declares a negative login attempt without Go code.
type RejectionDef struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Markers     []check.Marker `yaml:"markers"`
	Username    string         `yaml:"username"`
	Password    string         `yaml:"password"`

	// ErrorContains must appear in the error banner,
	// case-insensitively unless CaseSensitive is set.
	ErrorContains string `yaml:"error_contains"`
	CaseSensitive bool   `yaml:"case_sensitive"`
	// RequireError asserts that some error banner is shown.
	RequireError bool `yaml:"require_error"`
	// Blocked asserts the dashboard is not reached.
	Blocked bool `yaml:"blocked"`

	// Assertions are evaluated against the page observed after
	// the attempt. Each target must be one of Targets.
	Assertions []assertion.Definition `yaml:"assertions"`
}

// Check builds the check described by def.
func (def RejectionDef) Check() (check.Check, error) {
	if def.ID == "" {
		return nil, fmt.Errorf("rejection without id")
	}
	for _, m := range def.Markers {
		if _, ok := check.MarkerDescriptions[m]; !ok {
			return nil, fmt.Errorf("rejection %s: unknown marker %q", def.ID, m)
		}
	}
	for i, a := range def.Assertions {
		if !assertion.IsBuiltin(a.Type) {
			return nil, fmt.Errorf("rejection %s: assertion %d: unknown type %q", def.ID, i, a.Type)
		}
		if !isTarget(a.Target) {
			return nil, fmt.Errorf("rejection %s: assertion %d: unknown target %q (want one of %s)",
				def.ID, i, a.Target, strings.Join(Targets, ", "))
		}
	}
	if def.ErrorContains == "" && !def.RequireError && !def.Blocked && len(def.Assertions) == 0 {
		return nil, fmt.Errorf("rejection %s asserts nothing", def.ID)
	}

	name := def.Name
	if name == "" {
		name = def.ID
	}
	r := rejection{
		id:            def.ID,
		name:          name,
		description:   def.Description,
		markers:       def.Markers,
		username:      def.Username,
		password:      def.Password,
		errorContains: def.ErrorContains,
		exact:         def.CaseSensitive,
		requireError:  def.RequireError,
		emptyMessage:  "No error shown for " + name + ".",
		assertions:    def.Assertions,
	}
	if def.ErrorContains != "" {
		r.errorMessage = "Expected error containing '" +
			strings.ReplaceAll(def.ErrorContains, "%", "%%") + "'. Got: '%s'"
	}
	if def.Blocked {
		r.blockedMessage = name + " reached the dashboard."
	}
	return r.check(), nil
}

func isTarget(name string) bool {
	for _, t := range Targets {
		if t == name {
			return true
		}
	}
	return false
}

// LoadBank reads a rejection bank file and builds its checks.
// YAML and JSON are both accepted.
func LoadBank(path string) ([]check.Check, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to read rejection bank %s: %w", path, err,
		)
	}
	return ParseBank(data, path)
}

// LoadBankDir loads every .yaml, .yml and .json bank in dir. It
// does not recurse into subdirectories.
func LoadBankDir(dir string) ([]check.Check, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to read directory %s: %w", dir, err,
		)
	}

	var out []check.Check
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".json" && ext != ".yaml" && ext != ".yml" {
			continue
		}
		cs, err := LoadBank(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, cs...)
	}
	return out, nil
}

// ParseBank decodes a rejection bank. source names it in errors.
func ParseBank(data []byte, source string) ([]check.Check, error) {
	var bank bankFile
	if err := yaml.Unmarshal(data, &bank); err != nil {
		return nil, fmt.Errorf(
			"failed to parse rejection bank %s: %w", source, err,
		)
	}

	out := make([]check.Check, 0, len(bank.Rejections))
	for _, def := range bank.Rejections {
		c, err := def.Check()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}
		out = append(out, c)
	}
	return out, nil
}
