package cache

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"workshop-dispatch/internal/models"
)

// JournalRepo is the in-memory submission journal, used when no database is configured.
// Plans live as long as the process.
type JournalRepo struct {
	mu  sync.Mutex
	cch KV
}

func NewJournalRepo(cch KV) *JournalRepo {
	return &JournalRepo{cch: cch}
}

func planKey(requestID string) string { return "plan:" + requestID }
func groupKey(groupID int) string     { return "plan-group:" + strconv.Itoa(groupID) }

func (j *JournalRepo) SavePlan(plan models.GroupPlan) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if _, ok := j.cch.Get(planKey(plan.RequestID)); ok {
		return NewErrorHandler(fmt.Errorf("plan %s already recorded", plan.RequestID), http.StatusConflict)
	}
	plan.Items = append([]models.PlannedItem(nil), plan.Items...)
	for i := range plan.Items {
		plan.Items[i].RequestRefer = plan.RequestID
		plan.Items[i].Seq = i
	}
	j.cch.Put(planKey(plan.RequestID), plan)
	if plan.GroupID != 0 {
		j.cch.Put(groupKey(plan.GroupID), plan.RequestID)
	}
	return nil
}

func (j *JournalRepo) AttachGroup(requestID string, groupID int) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	plan, err := get[models.GroupPlan](j.cch, planKey(requestID))
	if err != nil {
		return err
	}
	plan.GroupID = groupID
	j.cch.Put(planKey(requestID), plan)
	j.cch.Put(groupKey(groupID), requestID)
	return nil
}

func (j *JournalRepo) MarkSubmitted(requestID string, childID int, at time.Time) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	plan, err := get[models.GroupPlan](j.cch, planKey(requestID))
	if err != nil {
		return err
	}
	items := append([]models.PlannedItem(nil), plan.Items...)
	for i := range items {
		if items[i].ChildID == childID {
			ts := at
			items[i].SubmittedAt = &ts
			plan.Items = items
			j.cch.Put(planKey(requestID), plan)
			return nil
		}
	}
	return NewErrorHandler(fmt.Errorf("child %d is not part of plan %s", childID, requestID), http.StatusNotFound)
}

func (j *JournalRepo) PlanByGroup(groupID int) (models.GroupPlan, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	requestID, err := get[string](j.cch, groupKey(groupID))
	if err != nil {
		return models.GroupPlan{}, err
	}
	plan, err := get[models.GroupPlan](j.cch, planKey(requestID))
	if err != nil {
		return models.GroupPlan{}, err
	}
	plan.Items = append([]models.PlannedItem(nil), plan.Items...)
	sort.SliceStable(plan.Items, func(a, b int) bool { return plan.Items[a].Seq < plan.Items[b].Seq })
	return plan, nil
}

func (j *JournalRepo) PlanByRequest(requestID string) (models.GroupPlan, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return get[models.GroupPlan](j.cch, planKey(requestID))
}

func (j *JournalRepo) DeletePlan(groupID int) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	requestID, err := get[string](j.cch, groupKey(groupID))
	if err != nil {
		return err
	}
	j.cch.Delete(planKey(requestID))
	j.cch.Delete(groupKey(groupID))
	return nil
}

func (j *JournalRepo) DiscardPlan(requestID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	plan, err := get[models.GroupPlan](j.cch, planKey(requestID))
	if err != nil {
		return err
	}
	if plan.GroupID != 0 {
		j.cch.Delete(groupKey(plan.GroupID))
	}
	j.cch.Delete(planKey(requestID))
	return nil
}
