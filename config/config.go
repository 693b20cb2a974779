// Package config loads the properties-style filter/component definitions
// described in spec.md §4.H/§6, searched for in the order: an explicit
// path, the user's home directory, then an embedded default resource.
// Grounded directly on spec.md (no original_source PropertyConfigurator.java
// was retrieved in this pack; see DESIGN.md).
package config

import (
	"bufio"
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/classdep/classdep/internal/classerr"
)

// DefaultFileName is the name searched for in the user's home directory and
// used as the embedded resource's name.
const DefaultFileName = "classdep.properties"

// filteredValue is the sentinel value that marks a key as a filter prefix
// rather than an ordinary setting.
const filteredValue = "filtered"

// componentsKey is the reserved key whose value is a comma-separated list
// of component prefixes.
const componentsKey = "components"

//go:embed classdep.properties
var embeddedDefaults []byte

// Config holds the parsed result of one property file.
type Config struct {
	// FilterPrefixes are the keys whose value was the literal "filtered".
	FilterPrefixes []string
	// ComponentPrefixes is the comma-separated value of the "components"
	// key, if present.
	ComponentPrefixes []string
}

// Load searches for a property file per spec.md §4.H: explicitFile if
// non-empty, else "<home>/classdep.properties", else the embedded default.
func Load(explicitFile string) (Config, error) {
	data, err := resolve(explicitFile)
	if err != nil {
		return Config{}, err
	}
	return Parse(data), nil
}

func resolve(explicitFile string) ([]byte, error) {
	if explicitFile != "" {
		data, err := os.ReadFile(explicitFile)
		if err != nil {
			return nil, classerr.NewConfigurationError("cannot read configuration file "+explicitFile, err)
		}
		return data, nil
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, DefaultFileName)
		if data, err := os.ReadFile(path); err == nil {
			return data, nil
		}
	}

	return embeddedDefaults, nil
}

// Parse parses property-file bytes directly, without the search-path
// resolution Load performs.
func Parse(data []byte) Config {
	var cfg Config
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := splitKeyValue(line)
		if !ok {
			continue
		}
		switch {
		case key == componentsKey:
			cfg.ComponentPrefixes = splitCSV(value)
		case value == filteredValue:
			cfg.FilterPrefixes = append(cfg.FilterPrefixes, key)
		}
	}
	return cfg
}

func splitKeyValue(line string) (key, value string, ok bool) {
	idx := strings.IndexByte(line, '=')
	if idx < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	if key == "" {
		return "", "", false
	}
	return key, value, true
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
