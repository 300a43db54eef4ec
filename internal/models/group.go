package models

type GroupStatus string

const (
	GroupPending GroupStatus = "PENDING"
	GroupDone    GroupStatus = "DONE"
	GroupFailed  GroupStatus = "FAILED"
)

func (s GroupStatus) Valid() bool {
	switch s {
	case GroupPending, GroupDone, GroupFailed:
		return true
	}
	return false
}

// Deletable reports whether a group in this status may still be removed.
func (s GroupStatus) Deletable() bool {
	return s == GroupPending || s == GroupFailed
}

type GroupSummary struct {
	GroupID    int         `json:"group_id"`
	GroupName  string      `json:"group_name"`
	ReindeerID int         `json:"reindeer_id"`
	Status     GroupStatus `json:"status"`
	ChildCount int         `json:"child_count"`
}

type GroupItem struct {
	GroupItemID int `json:"group_item_id,omitempty"`
	ChildID     int `json:"child_id"`
	GiftID      int `json:"gift_id"`
}

type GroupDetail struct {
	GroupID          int         `json:"group_id"`
	GroupName        string      `json:"group_name"`
	ReindeerID       int         `json:"reindeer_id"`
	Status           GroupStatus `json:"status"`
	CreatedAt        Timestamp   `json:"created_at" swaggertype:"string"`
	CreatedByStaffID *int        `json:"created_by_staff_id"`
	Items            []GroupItem `json:"items"`
}

// HasChild reports whether the group already holds an item for the child.
func (g GroupDetail) HasChild(childID int) bool {
	for _, it := range g.Items {
		if it.ChildID == childID {
			return true
		}
	}
	return false
}

type CreateGroupRequest struct {
	GroupName  string `json:"group_name"`
	ReindeerID int    `json:"reindeer_id"`
}

type AddItemRequest struct {
	ChildID int `json:"child_id"`
	GiftID  int `json:"gift_id"`
}

type DeliverResponse struct {
	Message        string `json:"message"`
	GroupID        int    `json:"group_id"`
	DeliveredCount int    `json:"delivered_count"`
	ReindeerID     int    `json:"reindeer_id"`
}
