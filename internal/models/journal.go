package models

import "time"

// GroupPlan is the journal record of one dispatch: the allocation planned locally and the
// backend group it was submitted to. GroupID stays 0 until the backend has created the group.
type GroupPlan struct {
	RequestID  string        `json:"request_id" gorm:"type:varchar(36);primary_key"`
	GroupID    int           `json:"group_id"   gorm:"index"`
	GroupName  string        `json:"group_name"`
	ReindeerID int           `json:"reindeer_id"`
	RegionID   int           `json:"region_id"`
	StaffID    string        `json:"staff_id"`
	Strategy   string        `json:"strategy"`
	Shortage   bool          `json:"shortage"`
	CreatedAt  time.Time     `json:"created_at"`
	Items      []PlannedItem `json:"items" gorm:"foreignkey:RequestRefer;association_foreignkey:RequestID"`
}

// PlannedItem is one child→gift pair of a plan. The (request, child) pair is unique so an
// item is submitted at most once per plan.
type PlannedItem struct {
	ID           uint       `json:"-"          gorm:"primary_key"`
	RequestRefer string     `json:"-"          gorm:"type:varchar(36);unique_index:uq_planned_child"`
	Seq          int        `json:"seq"`
	ChildID      int        `json:"child_id"   gorm:"unique_index:uq_planned_child"`
	GiftID       int        `json:"gift_id"`
	Forced       bool       `json:"forced"`
	SubmittedAt  *time.Time `json:"submitted_at"`
}

func (p PlannedItem) Submitted() bool { return p.SubmittedAt != nil }

// Pending returns the items not yet accepted by the backend, in plan order.
func (g GroupPlan) Pending() []PlannedItem {
	out := make([]PlannedItem, 0, len(g.Items))
	for _, it := range g.Items {
		if !it.Submitted() {
			out = append(out, it)
		}
	}
	return out
}
