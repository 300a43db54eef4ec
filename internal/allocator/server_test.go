package allocator_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"workshop-dispatch/internal/allocator"
	"workshop-dispatch/internal/models"
)

type assignerStub struct {
	out    []models.Assignment
	err    error
	region *int
}

func (a *assignerStub) AssignGifts(_ context.Context, regionID *int) ([]models.Assignment, error) {
	a.region = regionID
	return a.out, a.err
}

func TestServer_FiltersToSelectionInOrder(t *testing.T) {
	stub := &assignerStub{out: []models.Assignment{
		{ChildID: 3, GiftID: 30},
		{ChildID: 1, GiftID: 10},
		{ChildID: 9, GiftID: 90},
	}}
	res, err := allocator.NewServer(stub).Allocate(context.Background(), allocator.Input{
		Candidates: []allocator.Candidate{{ChildID: 1}, {ChildID: 2}, {ChildID: 3}},
		RegionID:   4,
	})
	require.NoError(t, err)
	require.Equal(t, []models.Assignment{{ChildID: 1, GiftID: 10}, {ChildID: 3, GiftID: 30}}, res.Assignments)
	require.Equal(t, []int{2}, res.Dropped)
	require.False(t, res.Shortage)
	require.NotNil(t, stub.region)
	require.Equal(t, 4, *stub.region)
}

func TestServer_Errors(t *testing.T) {
	_, err := allocator.NewServer(&assignerStub{}).Allocate(context.Background(), allocator.Input{})
	require.ErrorIs(t, err, allocator.ErrEmptySelection)

	boom := errors.New("backend down")
	_, err = allocator.NewServer(&assignerStub{err: boom}).Allocate(context.Background(), allocator.Input{
		Candidates: []allocator.Candidate{{ChildID: 1}},
	})
	require.ErrorIs(t, err, boom)
}

func TestNew_SelectsStrategy(t *testing.T) {
	s, err := allocator.New("", nil)
	require.NoError(t, err)
	require.Equal(t, allocator.StrategyLocal, s.Name())
	require.True(t, s.UsesWishlists())

	s, err = allocator.New(allocator.StrategyServer, &assignerStub{})
	require.NoError(t, err)
	require.Equal(t, allocator.StrategyServer, s.Name())
	require.False(t, s.UsesWishlists())

	_, err = allocator.New(allocator.StrategyServer, nil)
	require.Error(t, err)
	_, err = allocator.New("greedy", nil)
	require.Error(t, err)
}
