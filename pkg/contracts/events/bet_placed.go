package events

// BetPlaced é publicado quando o stake de um bilhete foi debitado
type BetPlaced struct {
	Ticket    string      `json:"ticket"`
	UserKey   string      `json:"user_key"`
	Mode      string      `json:"mode"` // "parlay" | "single"
	Currency  string      `json:"currency"`
	Stake     string      `json:"stake"`
	Potential string      `json:"potential_payout"`
	Picks     []PickEntry `json:"picks"`
	TsUnixMs  int64       `json:"ts_unix_ms"`
}

type PickEntry struct {
	ID      string `json:"id"`
	MatchID string `json:"match_id"`
	Label   string `json:"label"`
	Odds    string `json:"odds"`
}
