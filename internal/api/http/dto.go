package httpapi

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/betx-platform/internal/catalog"
	"github.com/radieske/betx-platform/internal/escrow"
)

type AmountRequest struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
	Address  string          `json:"address,omitempty"` // destino do saque
}

type BalanceResponse struct {
	UserKey  string          `json:"userKey"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

type AddPickRequest struct {
	MatchID string `json:"matchId"`
	Outcome string `json:"outcome"` // A | Draw | B
}

type ModeRequest struct {
	Mode string `json:"mode"`
}

type PlaceBetRequest struct {
	Currency string          `json:"currency"`
	Stake    decimal.Decimal `json:"stake"`
}

type PurchaseRequest struct {
	Coin   string `json:"coin"`
	TxHash string `json:"txHash"`
}

type RefundRequest struct {
	Percent int `json:"percent"`
}

type StakeRequest struct {
	TxHash string `json:"txHash"`
}

type ReviewRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note,omitempty"`
}

// TipView é a tip como o usuário a vê: mercado e odds só depois do release
type TipView struct {
	catalog.Tip
	Open         bool             `json:"open"`
	Sales        int              `json:"sales"`
	Unlocked     bool             `json:"unlocked"`
	Purchase     *escrow.Purchase `json:"purchase,omitempty"`
	HiddenMarket string           `json:"market,omitempty"`
	HiddenOdds   *decimal.Decimal `json:"odds,omitempty"`
	Reveal       string           `json:"reveal,omitempty"`
}
