package topics

const (
	// Apostas
	BetPlaced = "bet_placed"

	// Tips
	TipPurchaseUpdated        = "tip_purchase_updated"
	TipsterApplicationUpdated = "tipster_application_updated"
)
