// Package match recovers a menu item and its modifier choices from
// normalized utterance tokens.
package match

import (
	"fmt"

	"github.com/cognicore/orderline/pkg/orderline/internalerr"
)

// Params are the tunable matching thresholds. The defaults were chosen
// empirically; treat them as starting points, not invariants.
type Params struct {
	// StrongMatch short-circuits the search when a score falls below it.
	StrongMatch float64 `yaml:"strong_match"`
	// AcceptCeiling is the worst score still accepted as a match.
	AcceptCeiling float64 `yaml:"accept_ceiling"`
	// LengthBonus is subtracted per window token during sub-phrase search.
	LengthBonus float64 `yaml:"length_bonus"`
	// MaxAlternatives caps the alternative candidates returned.
	MaxAlternatives int `yaml:"max_alternatives"`
	// ModifierWindow is the longest token window tried for a modifier.
	ModifierWindow int `yaml:"modifier_window"`
}

// DefaultParams returns the standard thresholds.
func DefaultParams() Params {
	return Params{
		StrongMatch:     0.3,
		AcceptCeiling:   0.5,
		LengthBonus:     0.02,
		MaxAlternatives: 3,
		ModifierWindow:  4,
	}
}

// Validate rejects thresholds that would make matching meaningless.
func (p Params) Validate() error {
	switch {
	case p.StrongMatch < 0 || p.StrongMatch > 1:
		return fmt.Errorf("%w: strong_match %v outside [0,1]", internalerr.ErrInvalidConfig, p.StrongMatch)
	case p.AcceptCeiling < 0 || p.AcceptCeiling > 1:
		return fmt.Errorf("%w: accept_ceiling %v outside [0,1]", internalerr.ErrInvalidConfig, p.AcceptCeiling)
	case p.StrongMatch > p.AcceptCeiling:
		return fmt.Errorf("%w: strong_match %v above accept_ceiling %v", internalerr.ErrInvalidConfig, p.StrongMatch, p.AcceptCeiling)
	case p.LengthBonus < 0:
		return fmt.Errorf("%w: negative length_bonus", internalerr.ErrInvalidConfig)
	case p.MaxAlternatives < 0:
		return fmt.Errorf("%w: negative max_alternatives", internalerr.ErrInvalidConfig)
	case p.ModifierWindow < 1:
		return fmt.Errorf("%w: modifier_window must be at least 1", internalerr.ErrInvalidConfig)
	}
	return nil
}
