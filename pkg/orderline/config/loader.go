package config

import (
	"fmt"

	"github.com/cognicore/orderline/pkg/orderline/index"
	"github.com/cognicore/orderline/pkg/orderline/match"
	"github.com/cognicore/orderline/pkg/orderline/normalize"
)

// Loader loads all configuration files and constructs components
type Loader struct {
	FillersPath string
	ParamsPath  string
	CacheSize   int
}

// Components holds all loaded configuration components
type Components struct {
	Normalizer *normalize.Normalizer
	Params     match.Params
	Cache      index.Cache
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	// Load fillers
	if l.FillersPath != "" {
		fillers, err := LoadFillers(l.FillersPath)
		if err != nil {
			return nil, fmt.Errorf("load fillers: %w", err)
		}
		terms := fillers.Terms
		if fillers.Extend {
			terms = append(append([]string{}, normalize.DefaultFillers...), terms...)
		}
		comp.Normalizer = normalize.New(terms)
	} else {
		comp.Normalizer = normalize.NewDefault()
	}

	// Load thresholds
	if l.ParamsPath != "" {
		params, err := LoadParams(l.ParamsPath)
		if err != nil {
			return nil, fmt.Errorf("load params: %w", err)
		}
		comp.Params = params
	} else {
		comp.Params = match.DefaultParams()
	}

	cache, err := index.NewLRUCache(l.CacheSize)
	if err != nil {
		return nil, err
	}
	comp.Cache = cache

	return comp, nil
}
