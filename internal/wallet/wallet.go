// Package wallet é a frente demo da carteira: depósito simulado, saque e
// endereços de depósito fixos por moeda. Todo movimento passa pelo ledger.
package wallet

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/betx-platform/internal/ledger"
	"github.com/radieske/betx-platform/pkg/currency"
)

// Ledger define as operações de saldo usadas pela carteira
type Ledger interface {
	Credit(ctx context.Context, userKey string, c currency.Wallet, amount decimal.Decimal) (decimal.Decimal, error)
	Debit(ctx context.Context, userKey string, c currency.Wallet, amount decimal.Decimal) (decimal.Decimal, error)
	Balances(ctx context.Context, userKey string) (ledger.Balances[currency.Wallet], error)
}

type DepositAddress struct {
	Currency currency.Wallet `json:"currency"`
	Address  string          `json:"address"`
	Network  string          `json:"network"`
	Note     string          `json:"note,omitempty"`
}

var depositAddresses = map[currency.Wallet]DepositAddress{
	currency.USDT: {Currency: currency.USDT, Address: "0xUSDT-DEMO-ADDR-1234567890ABCDEF", Network: "BEP-20 (BSC)", Note: "Send only USDT on BNB Smart Chain."},
	currency.BTC:  {Currency: currency.BTC, Address: "bc1q-demo-btc-address-2k4u7a3yx", Network: "Bitcoin (BTC)", Note: "Native BTC only."},
	currency.ETH:  {Currency: currency.ETH, Address: "0xETH-DEMO-ADDR-ABCDEF1234567890", Network: "ERC-20 (Ethereum)", Note: "Send only ERC-20 ETH."},
	currency.BETX: {Currency: currency.BETX, Address: "0xBETX-DEMO-ADDR-00112233445566", Network: "BEP-20 (BSC)", Note: "Project token on BSC."},
}

type Service struct {
	ledger Ledger
	log    *zap.Logger
}

func NewService(l Ledger, log *zap.Logger) *Service { return &Service{ledger: l, log: log} }

// Credit simula a chegada de um depósito
func (s *Service) Credit(ctx context.Context, userKey string, c currency.Wallet, amount decimal.Decimal) (decimal.Decimal, error) {
	bal, err := s.ledger.Credit(ctx, userKey, c, amount)
	if err != nil {
		return bal, fmt.Errorf("credit: %w", err)
	}
	s.log.Info("demo deposit credited",
		zap.String("user", userKey),
		zap.String("currency", c.String()),
		zap.String("amount", amount.String()),
	)
	return bal, nil
}

// Withdraw debita o saldo; o envio para destination é apenas registrado
func (s *Service) Withdraw(ctx context.Context, userKey string, c currency.Wallet, amount decimal.Decimal, destination string) (decimal.Decimal, error) {
	bal, err := s.ledger.Debit(ctx, userKey, c, amount)
	if err != nil {
		return bal, fmt.Errorf("withdraw: %w", err)
	}
	s.log.Info("demo withdrawal submitted",
		zap.String("user", userKey),
		zap.String("currency", c.String()),
		zap.String("amount", amount.String()),
		zap.String("destination", destination),
	)
	return bal, nil
}

func (s *Service) Balances(ctx context.Context, userKey string) (ledger.Balances[currency.Wallet], error) {
	return s.ledger.Balances(ctx, userKey)
}

// DepositAddressFor retorna o endereço demo da moeda
func DepositAddressFor(c currency.Wallet) (DepositAddress, error) {
	a, ok := depositAddresses[c]
	if !ok {
		return DepositAddress{}, fmt.Errorf("%w: %q", currency.ErrUnknown, string(c))
	}
	return a, nil
}
