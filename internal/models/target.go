package models

// ChildStatus is the list elves' verdict on a child.
type ChildStatus string

const (
	ChildPending ChildStatus = "PENDING"
	ChildNice    ChildStatus = "NICE"
	ChildNaughty ChildStatus = "NAUGHTY"
)

// Target is a child eligible for delivery as listed by GET /santa/targets.
type Target struct {
	ChildID            int         `json:"child_id"`
	Name               string      `json:"name"`
	Address            string      `json:"address"`
	RegionID           int         `json:"region_id"`
	RegionName         string      `json:"region_name,omitempty"`
	StatusCode         ChildStatus `json:"status_code,omitempty"`
	DeliveryStatusCode string      `json:"delivery_status_code,omitempty"`
}

// WishItem is one ranked entry of a child's wishlist. Priority 1 is the most wanted gift.
type WishItem struct {
	Priority int    `json:"priority"`
	GiftID   int    `json:"gift_id"`
	GiftName string `json:"gift_name,omitempty"`
}

type Wishlist struct {
	ChildID  int        `json:"child_id,omitempty"`
	Wishlist []WishItem `json:"wishlist"`
}

type Region struct {
	RegionID   int    `json:"RegionID"`
	RegionName string `json:"RegionName"`
}
