package allocator

import (
	"context"
	"sort"

	"workshop-dispatch/internal/ledger"
	"workshop-dispatch/internal/models"
)

type RoundRobin struct {
	maxRank int
}

type Option func(*RoundRobin)

// WithMaxRank caps how many wish ranks are explored before falling back. n <= 0 explores every rank.
func WithMaxRank(n int) Option { return func(r *RoundRobin) { r.maxRank = n } }

func NewRoundRobin(opts ...Option) *RoundRobin {
	r := &RoundRobin{}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *RoundRobin) Name() string        { return StrategyLocal }
func (r *RoundRobin) UsesWishlists() bool { return true }

// Allocate walks wish ranks from most to least wanted. Within a rank children are visited in
// input order, so an earlier child wins a scarce gift; nobody moves to a lower rank while a
// higher-ranked wish of theirs still has stock.
func (r *RoundRobin) Allocate(_ context.Context, in Input) (Result, error) {
	if len(in.Candidates) == 0 {
		return Result{}, ErrEmptySelection
	}

	stock := ledger.New(in.Gifts)
	wishes := make([][]models.WishItem, len(in.Candidates))
	depth := 0
	for i, c := range in.Candidates {
		wishes[i] = byPriority(c.Wishlist)
		if len(wishes[i]) > depth {
			depth = len(wishes[i])
		}
	}
	if r.maxRank > 0 && depth > r.maxRank {
		depth = r.maxRank
	}

	gifts := make([]int, len(in.Candidates))
	done := make([]bool, len(in.Candidates))
	for rank := 0; rank < depth; rank++ {
		for i := range in.Candidates {
			if done[i] || rank >= len(wishes[i]) {
				continue
			}
			w := wishes[i][rank]
			if stock.Remaining(w.GiftID) > 0 {
				gifts[i] = w.GiftID
				done[i] = true
				stock.Reserve(w.GiftID)
			}
		}
	}

	var res Result
	for i, c := range in.Candidates {
		switch {
		case done[i]:
			res.Assignments = append(res.Assignments, models.Assignment{ChildID: c.ChildID, GiftID: gifts[i]})
		case len(wishes[i]) == 0:
			res.Dropped = append(res.Dropped, c.ChildID)
			res.warn("child %d has no wishes and was left out", c.ChildID)
		default:
			top := wishes[i][0]
			res.Assignments = append(res.Assignments, models.Assignment{ChildID: c.ChildID, GiftID: top.GiftID, Forced: true})
			res.Shortage = true
			res.warn("child %d forced to gift %d without stock", c.ChildID, top.GiftID)
		}
	}
	return res, nil
}

func byPriority(in []models.WishItem) []models.WishItem {
	out := append([]models.WishItem(nil), in...)
	sort.SliceStable(out, func(a, b int) bool { return out[a].Priority < out[b].Priority })
	return out
}
