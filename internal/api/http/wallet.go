package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/betx-platform/internal/wallet"
	"github.com/radieske/betx-platform/pkg/currency"
)

func (a *API) walletBalances(w http.ResponseWriter, r *http.Request) {
	bals, err := a.Wallet.Balances(r.Context(), userKey(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bals)
}

// walletCredit simula a confirmação de um depósito
func (a *API) walletCredit(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := currency.ParseWallet(req.Currency)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	bal, err := a.Wallet.Credit(r.Context(), userKey(r), c, req.Amount)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{UserKey: userKey(r), Currency: c.String(), Balance: bal})
}

func (a *API) walletWithdraw(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := currency.ParseWallet(req.Currency)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	bal, err := a.Wallet.Withdraw(r.Context(), userKey(r), c, req.Amount, req.Address)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{UserKey: userKey(r), Currency: c.String(), Balance: bal})
}

func (a *API) depositAddress(w http.ResponseWriter, r *http.Request) {
	c, err := currency.ParseWallet(chi.URLParam(r, "currency"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	addr, err := wallet.DepositAddressFor(c)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, addr)
}

func (a *API) tipBalances(w http.ResponseWriter, r *http.Request) {
	bals, err := a.TipsLedger.Balances(r.Context(), userKey(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bals)
}

// tipCredit credita o saldo demo do marketplace de tips
func (a *API) tipCredit(w http.ResponseWriter, r *http.Request) {
	var req AmountRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := currency.ParseTipCoin(req.Currency)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	bal, err := a.TipsLedger.Credit(r.Context(), userKey(r), c, req.Amount)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, BalanceResponse{UserKey: userKey(r), Currency: c.String(), Balance: bal})
}
