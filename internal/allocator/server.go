package allocator

import (
	"context"
	"fmt"

	"workshop-dispatch/internal/models"
)

// Server asks the backend to pick gifts. The backend returns the first in-stock wish per child
// and omits children it could not serve, so this strategy never reports a shortage.
type Server struct {
	backend Assigner
}

func NewServer(a Assigner) *Server { return &Server{backend: a} }

func (s *Server) Name() string        { return StrategyServer }
func (s *Server) UsesWishlists() bool { return false }

func (s *Server) Allocate(ctx context.Context, in Input) (Result, error) {
	if len(in.Candidates) == 0 {
		return Result{}, ErrEmptySelection
	}

	var region *int
	if in.RegionID > 0 {
		region = &in.RegionID
	}
	assigned, err := s.backend.AssignGifts(ctx, region)
	if err != nil {
		return Result{}, fmt.Errorf("server allocation: %w", err)
	}
	byChild := make(map[int]int, len(assigned))
	for _, a := range assigned {
		byChild[a.ChildID] = a.GiftID
	}

	var res Result
	for _, c := range in.Candidates {
		gift, ok := byChild[c.ChildID]
		if !ok {
			res.Dropped = append(res.Dropped, c.ChildID)
			res.warn("no gift in stock for child %d", c.ChildID)
			continue
		}
		res.Assignments = append(res.Assignments, models.Assignment{ChildID: c.ChildID, GiftID: gift})
	}
	return res, nil
}
