// Package resolver maps object URLs to the unit database that stores them.
//
// A unit is one logical partition of a collection (a department, a shard)
// backed by exactly one database file. Resolution is a pure function of
// the URL and the strategy chosen at construction.
package resolver

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrInvalidMode     = errors.New("invalid resolver mode")
	ErrMissingFragment = errors.New("url has no fragment")
	ErrMissingID       = errors.New("url has no id query parameter")
)

// Resolver derives a unit identifier from a URL
type Resolver interface {
	DeriveDatabase(u *url.URL) (string, error)
}

// Mode selects a resolution strategy
type Mode string

const (
	ModeFixed    Mode = "fixed"    // one constant unit, URL ignored
	ModeFragment Mode = "fragment" // unit is the URL fragment
	ModeID       Mode = "id"       // unit is the prefix of the "id" query parameter
)

// New builds the resolver for mode. unit is only used by ModeFixed.
func New(mode Mode, unit string) (Resolver, error) {
	if mode == ModeFixed {
		return NewFixed(unit), nil
	}
	return NewURI(mode)
}

// Fixed always resolves to the same unit. Used when a collection ships a
// single database file.
type Fixed struct {
	unit string
}

// NewFixed creates a resolver that always returns unit
func NewFixed(unit string) *Fixed {
	return &Fixed{unit: unit}
}

// DeriveDatabase returns the configured unit
func (f *Fixed) DeriveDatabase(_ *url.URL) (string, error) {
	return f.unit, nil
}

// URI derives the unit from a component of the URL itself
type URI struct {
	mode Mode
}

// NewURI creates a URL-derived resolver. Only ModeFragment and ModeID are
// accepted; anything else fails with ErrInvalidMode.
func NewURI(mode Mode) (*URI, error) {
	switch mode {
	case ModeFragment, ModeID:
		return &URI{mode: mode}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}

// Mode returns the strategy this resolver uses
func (r *URI) Mode() Mode {
	return r.mode
}

// DeriveDatabase returns the unit encoded in u
func (r *URI) DeriveDatabase(u *url.URL) (string, error) {
	switch r.mode {
	case ModeFragment:
		return fromFragment(u)
	case ModeID:
		return fromID(u)
	default:
		return "", ErrInvalidMode
	}
}

func fromFragment(u *url.URL) (string, error) {
	if u.Fragment == "" {
		return "", ErrMissingFragment
	}
	return u.Fragment, nil
}

// fromID returns the first "-" separated segment of the id parameter,
// e.g. "18-1234-5" resolves to unit "18".
func fromID(u *url.URL) (string, error) {
	query := u.Query()
	if !query.Has("id") {
		return "", ErrMissingID
	}
	unit, _, _ := strings.Cut(query.Get("id"), "-")
	return unit, nil
}
