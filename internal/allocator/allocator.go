// Package allocator turns a selection of children into one gift assignment per child.
//
// Two interchangeable strategies exist: RoundRobin plans locally against a stock ledger seeded
// from the gift catalog, Server delegates to the backend's /santa/assign-gifts endpoint.
package allocator

import (
	"context"
	"errors"
	"fmt"

	"workshop-dispatch/internal/models"
)

const (
	StrategyLocal  = "local"
	StrategyServer = "server"
)

var ErrEmptySelection = errors.New("empty selection")

// Candidate is a selected child together with its wishlist. A nil or empty wishlist means the
// child has no wishes, including when the wishlist could not be fetched.
type Candidate struct {
	ChildID  int
	RegionID int
	Wishlist []models.WishItem
}

type Input struct {
	Candidates []Candidate
	Gifts      []models.Gift
	// RegionID narrows server-side allocation; 0 means all regions.
	RegionID int
}

type Result struct {
	Assignments []models.Assignment
	Dropped     []int
	Shortage    bool
	Warnings    []string
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

type Strategy interface {
	Name() string
	// UsesWishlists reports whether Allocate reads Candidate.Wishlist.
	UsesWishlists() bool
	Allocate(ctx context.Context, in Input) (Result, error)
}

// Assigner is the backend capability the server strategy needs.
type Assigner interface {
	AssignGifts(ctx context.Context, regionID *int) ([]models.Assignment, error)
}

func New(name string, assigner Assigner, opts ...Option) (Strategy, error) {
	switch name {
	case "", StrategyLocal:
		return NewRoundRobin(opts...), nil
	case StrategyServer:
		if assigner == nil {
			return nil, fmt.Errorf("allocation strategy %q requires a backend", name)
		}
		return NewServer(assigner), nil
	default:
		return nil, fmt.Errorf("unknown allocation strategy %q", name)
	}
}
