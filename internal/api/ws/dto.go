package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// UserKey: obrigatório para subscribe/unsubscribe
type ClientMsg struct {
	Type    string `json:"type"`
	UserKey string `json:"userKey"`
}

// Tipos de mensagem enviados pelo servidor
const (
	TypeBalances    = "balances"
	TypeTipBalances = "tip_balances"
	TypePurchase    = "purchase"
	TypeApplication = "application"
)

// Message é o push enviado às conexões inscritas no userKey
type Message struct {
	Type    string `json:"type"`
	UserKey string `json:"userKey"`
	Payload any    `json:"payload"`
}
