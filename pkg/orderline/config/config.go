package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/orderline/pkg/orderline/internalerr"
	"github.com/cognicore/orderline/pkg/orderline/match"
	"github.com/cognicore/orderline/pkg/orderline/menu"
)

// Fillers represents the filler word list configuration
type Fillers struct {
	Terms []string `yaml:"terms"`
	// Extend adds Terms to the built-in list instead of replacing it.
	Extend bool `yaml:"extend"`
}

// LoadFillers loads filler words from a YAML file
func LoadFillers(path string) (*Fillers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f Fillers
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}

	return &f, nil
}

// LoadParams loads matching thresholds from a YAML file. Keys missing from
// the file keep their default values.
func LoadParams(path string) (match.Params, error) {
	p := match.DefaultParams()

	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}

// LoadMenu loads a menu snapshot from a YAML or JSON file, chosen by
// extension.
func LoadMenu(path string) (*menu.Menu, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m menu.Menu
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	case ".json":
		err = json.Unmarshal(data, &m)
	default:
		return nil, fmt.Errorf("%w: unsupported menu format %q", internalerr.ErrInvalidInput, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidMenu, path, err)
	}

	return &m, nil
}
