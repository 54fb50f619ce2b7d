// Package currency define os conjuntos fechados de moedas aceitos pela plataforma.
// Carteira e marketplace de tips são escopos independentes e por isso usam tipos distintos.
package currency

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknown = errors.New("unknown currency")

// Code é a restrição usada pelos ledgers genéricos
type Code interface {
	~string
	Valid() bool
}

// Wallet são as moedas da carteira da página de apostas
type Wallet string

const (
	USDT Wallet = "USDT"
	BTC  Wallet = "BTC"
	ETH  Wallet = "ETH"
	BETX Wallet = "BETX"
)

// WalletCurrencies na ordem exibida pela UI
var WalletCurrencies = []Wallet{USDT, BTC, ETH, BETX}

func (w Wallet) Valid() bool {
	switch w {
	case USDT, BTC, ETH, BETX:
		return true
	}
	return false
}

func (w Wallet) String() string { return string(w) }

// ParseWallet aceita o código em qualquer caixa
func ParseWallet(s string) (Wallet, error) {
	w := Wallet(strings.ToUpper(strings.TrimSpace(s)))
	if !w.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknown, s)
	}
	return w, nil
}

// TipCoin são as moedas aceitas no pagamento de tips
type TipCoin string

const (
	TipBETX TipCoin = "BETX"
	TipUSDT TipCoin = "USDT"
	TipSOL  TipCoin = "SOL"
)

var TipCoins = []TipCoin{TipBETX, TipUSDT, TipSOL}

func (c TipCoin) Valid() bool {
	switch c {
	case TipBETX, TipUSDT, TipSOL:
		return true
	}
	return false
}

func (c TipCoin) String() string { return string(c) }

func ParseTipCoin(s string) (TipCoin, error) {
	c := TipCoin(strings.ToUpper(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknown, s)
	}
	return c, nil
}
