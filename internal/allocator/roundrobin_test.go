package allocator_test

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/require"

	"workshop-dispatch/internal/allocator"
	"workshop-dispatch/internal/models"
)

func wishes(gifts ...int) []models.WishItem {
	out := make([]models.WishItem, 0, len(gifts))
	for i, g := range gifts {
		out = append(out, models.WishItem{Priority: i + 1, GiftID: g})
	}
	return out
}

func stock(pairs ...int) []models.Gift {
	var out []models.Gift
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, models.Gift{GiftID: pairs[i], StockQuantity: pairs[i+1]})
	}
	return out
}

func TestRoundRobin_EmptySelection(t *testing.T) {
	_, err := allocator.NewRoundRobin().Allocate(context.Background(), allocator.Input{})
	require.ErrorIs(t, err, allocator.ErrEmptySelection)
}

func TestRoundRobin_AllTopWishesInStock(t *testing.T) {
	res, err := allocator.NewRoundRobin().Allocate(context.Background(), allocator.Input{
		Candidates: []allocator.Candidate{
			{ChildID: 1, Wishlist: wishes(10, 20)},
			{ChildID: 2, Wishlist: wishes(20, 10)},
			{ChildID: 3, Wishlist: wishes(10)},
		},
		Gifts: stock(10, 2, 20, 1),
	})
	require.NoError(t, err)
	require.False(t, res.Shortage)
	require.Empty(t, res.Dropped)
	require.Equal(t, []models.Assignment{
		{ChildID: 1, GiftID: 10},
		{ChildID: 2, GiftID: 20},
		{ChildID: 3, GiftID: 10},
	}, res.Assignments)
}

func TestRoundRobin_ScarceGiftGoesToEarlierChild(t *testing.T) {
	res, err := allocator.NewRoundRobin().Allocate(context.Background(), allocator.Input{
		Candidates: []allocator.Candidate{
			{ChildID: 1, Wishlist: wishes(10, 30)},
			{ChildID: 2, Wishlist: wishes(10, 20)},
		},
		Gifts: stock(10, 1, 20, 5, 30, 5),
	})
	require.NoError(t, err)
	require.False(t, res.Shortage)
	require.Equal(t, []models.Assignment{
		{ChildID: 1, GiftID: 10},
		{ChildID: 2, GiftID: 20},
	}, res.Assignments)
}

func TestRoundRobin_FairAcrossRanks(t *testing.T) {
	// child 2's rank-1 wish would take the last unit of 30 if ranks were processed per child;
	// rank 0 for everyone runs first, so child 3 keeps its top wish.
	res, err := allocator.NewRoundRobin().Allocate(context.Background(), allocator.Input{
		Candidates: []allocator.Candidate{
			{ChildID: 1, Wishlist: wishes(10)},
			{ChildID: 2, Wishlist: wishes(10, 30)},
			{ChildID: 3, Wishlist: wishes(30, 40)},
		},
		Gifts: stock(10, 1, 30, 1, 40, 1),
	})
	require.NoError(t, err)
	require.Equal(t, []models.Assignment{
		{ChildID: 1, GiftID: 10},
		{ChildID: 2, GiftID: 10, Forced: true},
		{ChildID: 3, GiftID: 30},
	}, res.Assignments)
	require.True(t, res.Shortage)
}

func TestRoundRobin_FallbackForcesTopWish(t *testing.T) {
	res, err := allocator.NewRoundRobin().Allocate(context.Background(), allocator.Input{
		Candidates: []allocator.Candidate{
			{ChildID: 1, Wishlist: wishes(1, 2)},
			{ChildID: 2, Wishlist: wishes(1)},
		},
		Gifts: stock(1, 1, 2, 5),
	})
	require.NoError(t, err)
	require.True(t, res.Shortage)
	require.Equal(t, []models.Assignment{
		{ChildID: 1, GiftID: 1},
		{ChildID: 2, GiftID: 1, Forced: true},
	}, res.Assignments)
	require.Len(t, res.Warnings, 1)
}

func TestRoundRobin_EmptyWishlistDropped(t *testing.T) {
	res, err := allocator.NewRoundRobin().Allocate(context.Background(), allocator.Input{
		Candidates: []allocator.Candidate{
			{ChildID: 1, Wishlist: nil},
			{ChildID: 2, Wishlist: wishes(5)},
		},
		Gifts: stock(5, 1),
	})
	require.NoError(t, err)
	require.Equal(t, []int{1}, res.Dropped)
	require.Equal(t, []models.Assignment{{ChildID: 2, GiftID: 5}}, res.Assignments)
	require.False(t, res.Shortage)
	require.Contains(t, res.Warnings[0], "no wishes")
}

func TestRoundRobin_UnorderedPrioritiesAreSorted(t *testing.T) {
	res, err := allocator.NewRoundRobin().Allocate(context.Background(), allocator.Input{
		Candidates: []allocator.Candidate{{ChildID: 7, Wishlist: []models.WishItem{
			{Priority: 3, GiftID: 30},
			{Priority: 1, GiftID: 10},
			{Priority: 2, GiftID: 20},
		}}},
		Gifts: stock(10, 0, 20, 1, 30, 1),
	})
	require.NoError(t, err)
	require.Equal(t, []models.Assignment{{ChildID: 7, GiftID: 20}}, res.Assignments)
}

func TestRoundRobin_MaxRankCapsExploration(t *testing.T) {
	res, err := allocator.NewRoundRobin(allocator.WithMaxRank(1)).Allocate(context.Background(), allocator.Input{
		Candidates: []allocator.Candidate{{ChildID: 1, Wishlist: wishes(10, 20)}},
		Gifts:      stock(10, 0, 20, 3),
	})
	require.NoError(t, err)
	require.True(t, res.Shortage)
	require.Equal(t, []models.Assignment{{ChildID: 1, GiftID: 10, Forced: true}}, res.Assignments)
}

func TestRoundRobin_NeverOverReserves(t *testing.T) {
	f := gofakeit.New(7)
	for round := 0; round < 50; round++ {
		giftIDs := []int{1, 2, 3, 4, 5}
		var gifts []models.Gift
		initial := map[int]int{}
		for _, g := range giftIDs {
			q := f.IntRange(0, 4)
			initial[g] = q
			gifts = append(gifts, models.Gift{GiftID: g, StockQuantity: q})
		}

		var cands []allocator.Candidate
		n := f.IntRange(1, 12)
		for i := 0; i < n; i++ {
			depth := f.IntRange(0, 3)
			picked := append([]int(nil), giftIDs...)
			f.ShuffleInts(picked)
			picked = picked[:depth]
			cands = append(cands, allocator.Candidate{ChildID: i + 1, Wishlist: wishes(picked...)})
		}

		res, err := allocator.NewRoundRobin().Allocate(context.Background(), allocator.Input{Candidates: cands, Gifts: gifts})
		require.NoError(t, err)

		used := map[int]int{}
		forced := false
		for _, a := range res.Assignments {
			if a.Forced {
				forced = true
				continue
			}
			used[a.GiftID]++
		}
		for g, u := range used {
			require.LessOrEqual(t, u, initial[g], "gift %d over-reserved", g)
		}
		require.Equal(t, forced, res.Shortage)
		require.Equal(t, n, len(res.Assignments)+len(res.Dropped))
	}
}
