package models

import "time"

// Assignment maps one child to the gift they will receive.
type Assignment struct {
	ChildID int  `json:"child_id"`
	GiftID  int  `json:"gift_id"`
	Forced  bool `json:"forced,omitempty"`
}

// DispatchRequest is a "create and queue a delivery group" action.
type DispatchRequest struct {
	RequestID  string `json:"request_id,omitempty" validate:"omitempty,max=36"`
	ChildIDs   []int  `json:"child_ids"   validate:"required,min=1,dive,gt=0"`
	ReindeerID int    `json:"reindeer_id" validate:"gt=0"`
	StaffID    string `json:"staff_id,omitempty"`
}

type DispatchResult struct {
	RequestID   string       `json:"request_id"`
	GroupID     int          `json:"group_id,omitempty"`
	GroupName   string       `json:"group_name"`
	ReindeerID  int          `json:"reindeer_id"`
	RegionID    int          `json:"region_id"`
	Strategy    string       `json:"strategy"`
	Assignments []Assignment `json:"assignments"`
	Submitted   int          `json:"submitted"`
	Dropped     []int        `json:"dropped,omitempty"`
	Shortage    bool         `json:"shortage"`
	Warnings    []string     `json:"warnings,omitempty"`
}

type DeliveryOutcome struct {
	GroupID        int         `json:"group_id"`
	Status         GroupStatus `json:"status"`
	DeliveredCount int         `json:"delivered_count"`
	ReindeerID     int         `json:"reindeer_id,omitempty"`
	Message        string      `json:"message,omitempty"`
}

type EventType string

const (
	EventGroupCreated   EventType = "group.created"
	EventGroupDelivered EventType = "group.delivered"
	EventGroupFailed    EventType = "group.failed"
	EventGroupDeleted   EventType = "group.deleted"
)

// DeliveryEvent is published on every group lifecycle transition driven by the dispatcher.
type DeliveryEvent struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	GroupID        int         `json:"group_id"`
	RequestID      string      `json:"request_id,omitempty"`
	Status         GroupStatus `json:"status,omitempty"`
	ItemCount      int         `json:"item_count,omitempty"`
	DeliveredCount int         `json:"delivered_count,omitempty"`
	Shortage       bool        `json:"shortage,omitempty"`
	StaffID        string      `json:"staff_id,omitempty"`
	Reason         string      `json:"reason,omitempty"`
	OccurredAt     time.Time   `json:"occurred_at"`
}
