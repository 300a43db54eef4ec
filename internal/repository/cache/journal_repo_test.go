package cache_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"workshop-dispatch/internal/models"
	"workshop-dispatch/internal/repository/cache"
)

func TestJournalRepo_Lifecycle(t *testing.T) {
	j := cache.NewJournalRepo(cache.NewCache())

	plan := models.GroupPlan{
		RequestID: "req-1",
		GroupName: "g",
		Items: []models.PlannedItem{
			{ChildID: 1, GiftID: 10},
			{ChildID: 2, GiftID: 20, Forced: true},
		},
	}
	require.NoError(t, j.SavePlan(plan))
	err := j.SavePlan(plan)
	require.Error(t, err)
	require.Equal(t, http.StatusConflict, err.(cache.ErrorHandler).StatusCode)

	_, err = j.PlanByGroup(9)
	require.Error(t, err, "plan is not reachable by group before attach")

	require.NoError(t, j.AttachGroup("req-1", 9))
	require.NoError(t, j.MarkSubmitted("req-1", 1, time.Now()))
	require.Error(t, j.MarkSubmitted("req-1", 3, time.Now()))

	got, err := j.PlanByGroup(9)
	require.NoError(t, err)
	require.Equal(t, 9, got.GroupID)
	require.Len(t, got.Items, 2)
	require.True(t, got.Items[0].Submitted())
	require.Equal(t, []int{2}, []int{got.Pending()[0].ChildID})

	require.NoError(t, j.DeletePlan(9))
	_, err = j.PlanByGroup(9)
	require.Error(t, err)
}

func TestJournalRepo_DiscardPlan(t *testing.T) {
	j := cache.NewJournalRepo(cache.NewCache())

	require.NoError(t, j.SavePlan(models.GroupPlan{RequestID: "req-1", Items: []models.PlannedItem{{ChildID: 1, GiftID: 10}}}))
	require.NoError(t, j.DiscardPlan("req-1"))
	_, err := j.PlanByRequest("req-1")
	require.Error(t, err)
	require.NoError(t, j.SavePlan(models.GroupPlan{RequestID: "req-1"}), "request id is free again")

	require.NoError(t, j.AttachGroup("req-1", 4))
	require.NoError(t, j.DiscardPlan("req-1"))
	_, err = j.PlanByGroup(4)
	require.Error(t, err)

	err = j.DiscardPlan("missing")
	require.Equal(t, http.StatusNotFound, err.(cache.ErrorHandler).StatusCode)
}
