package models

type Gift struct {
	GiftID        int    `json:"gift_id"`
	GiftName      string `json:"gift_name"`
	StockQuantity int    `json:"stock_quantity"`
}

type ReindeerStatus string

const (
	ReindeerReady      ReindeerStatus = "READY"
	ReindeerResting    ReindeerStatus = "RESTING"
	ReindeerOnDelivery ReindeerStatus = "ONDELIVERY"
)

// Reindeer as returned by GET /reindeer/available. Stamina and magic are in [0,100].
type Reindeer struct {
	ReindeerID     int            `json:"reindeer_id"`
	Name           string         `json:"name"`
	CurrentStamina int            `json:"current_stamina"`
	CurrentMagic   int            `json:"current_magic"`
	Status         ReindeerStatus `json:"status"`
}
