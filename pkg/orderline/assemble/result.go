// Package assemble turns matcher output into the ParseResult contract
// returned to callers.
package assemble

import (
	"github.com/cognicore/orderline/pkg/orderline/internalerr"
)

// ErrorKind classifies a failed parse.
type ErrorKind string

const (
	KindEmptyUtterance   ErrorKind = "empty_utterance"
	KindNoMatch          ErrorKind = "no_match"
	KindIndexUnavailable ErrorKind = "index_unavailable"
	KindInvalidMenu      ErrorKind = "invalid_menu"
)

// ParseResult is the externally visible outcome of parsing one utterance.
// Field names are part of the wire contract.
type ParseResult struct {
	Success            bool          `json:"success"`
	Match              *Match        `json:"match,omitempty"`
	AlternativeMatches []Alternative `json:"alternativeMatches"`
	Error              string        `json:"error,omitempty"`
	ErrorKind          ErrorKind     `json:"errorKind,omitempty"`
	Tokens             []string      `json:"tokens"`
}

// Match describes the recognized item, its modifiers and the price.
type Match struct {
	Item                       ItemView        `json:"item"`
	Confidence                 float64         `json:"confidence"`
	MatchedModifiers           []Modifier      `json:"matchedModifiers"`
	RemainingRequiredModifiers []RequiredGroup `json:"remainingRequiredModifiers"`
	CalculatedPrice            float64         `json:"calculatedPrice"`
	UnmatchedTokens            []string        `json:"unmatchedTokens,omitempty"`
}

// ItemView is the item as reported in a result.
type ItemView struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
}

// Modifier is a matched option.
type Modifier struct {
	GroupName   string  `json:"groupName"`
	OptionName  string  `json:"optionName"`
	OptionPrice float64 `json:"optionPrice"`
}

// RequiredGroup is a required modifier group the caller still has to ask
// about, with every option it offers.
type RequiredGroup struct {
	GroupName     string   `json:"groupName"`
	MinSelections int      `json:"minSelections"`
	MaxSelections int      `json:"maxSelections"`
	MultiSelect   bool     `json:"multiSelect"`
	Options       []Option `json:"options"`
}

// Option is one choice of a RequiredGroup.
type Option struct {
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	IsDefault bool    `json:"isDefault"`
}

// Alternative is a runner-up item.
type Alternative struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Category   string  `json:"category,omitempty"`
}

// Err maps a failed result to its sentinel error, or nil on success.
func (r ParseResult) Err() error {
	if r.Success {
		return nil
	}
	switch r.ErrorKind {
	case KindEmptyUtterance:
		return internalerr.ErrEmptyUtterance
	case KindIndexUnavailable:
		return internalerr.ErrIndexUnavailable
	case KindInvalidMenu:
		return internalerr.ErrInvalidMenu
	default:
		return internalerr.ErrNoMatch
	}
}
