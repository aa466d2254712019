package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultTimeout applies to API requests when none is configured.
const DefaultTimeout = 30 * time.Second

// LoadFile loads and parses a YAML configuration file from the given path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %s: %w", path, err)
	}

	return Parse(data)
}

// Parse parses YAML data into a File.
func Parse(data []byte) (*File, error) {
	var f File

	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration YAML: %w", err)
	}

	applyDefaults(&f)

	return &f, nil
}

// applyDefaults fills in default values for optional fields.
func applyDefaults(f *File) {
	api := &f.NetBox.API

	if api.URL != "" && !strings.HasSuffix(api.URL, "/") {
		api.URL += "/"
	}

	if api.Timeout == 0 {
		api.Timeout = DefaultTimeout
	}

	for i := range f.NetBox.Imports {
		st := &f.NetBox.Imports[i]

		if ep, ok := KnownImports[st.Name]; ok {
			if st.App == "" {
				st.App = ep.App
			}

			if st.Type == "" {
				st.Type = ep.Type
			}
		}

		for j := range st.SubImports {
			sub := &st.SubImports[j]
			if sub.App == "" {
				sub.App = st.App
			}

			if sub.Index == "" {
				sub.Index = "id"
			}
		}
	}
}

// Marshal serializes a File to YAML.
func Marshal(f *File) ([]byte, error) {
	return yaml.Marshal(f)
}
