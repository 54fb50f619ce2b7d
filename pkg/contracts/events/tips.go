package events

// PurchaseUpdated acompanha cada transição do escrow de uma tip
type PurchaseUpdated struct {
	PurchaseID string `json:"purchase_id"`
	UserKey    string `json:"user_key"`
	TipID      string `json:"tip_id"`
	Status     string `json:"status"` // "confirming" | "released" | "refunded_partial"
	Coin       string `json:"coin"`
	Price      string `json:"price"`
	Refunded   string `json:"refunded,omitempty"`
	TsUnixMs   int64  `json:"ts_unix_ms"`
}

// ApplicationUpdated é emitido em cada mudança de uma candidatura de tipster
type ApplicationUpdated struct {
	ApplicationID string `json:"application_id"`
	Address       string `json:"address"`
	Status        string `json:"status"`
	StakeStatus   string `json:"stake_status"`
	Listable      bool   `json:"listable"`
	TsUnixMs      int64  `json:"ts_unix_ms"`
}
