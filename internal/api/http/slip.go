package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/radieske/betx-platform/internal/payout"
	"github.com/radieske/betx-platform/internal/slip"
	"github.com/radieske/betx-platform/pkg/currency"
)

// getSlip retorna o bilhete com a prévia de retorno para ?stake=
func (a *API) getSlip(w http.ResponseWriter, r *http.Request) {
	stake := decimal.Zero
	if s := strings.TrimSpace(r.URL.Query().Get("stake")); s != "" {
		d, err := decimal.NewFromString(s)
		if err != nil {
			a.writeError(w, r, badRequest("stake %q is not a number", s))
			return
		}
		stake = d
	}
	writeJSON(w, http.StatusOK, a.Slips.Slip(userKey(r)).View(stake))
}

func (a *API) addPick(w http.ResponseWriter, r *http.Request) {
	var req AddPickRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	m, err := a.Catalog.Match(req.MatchID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	o, err := slip.ParseOutcome(req.Outcome)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	s := a.Slips.Slip(userKey(r))
	added, err := s.AddPick(m, o)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, s.View(decimal.Zero))
}

func (a *API) removePick(w http.ResponseWriter, r *http.Request) {
	s := a.Slips.Slip(userKey(r))
	s.RemovePick(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, s.View(decimal.Zero))
}

func (a *API) clearSlip(w http.ResponseWriter, r *http.Request) {
	a.Slips.Slip(userKey(r)).Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) setMode(w http.ResponseWriter, r *http.Request) {
	var req ModeRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	s := a.Slips.Slip(userKey(r))
	if err := s.SetMode(payout.Mode(strings.ToLower(strings.TrimSpace(req.Mode)))); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.View(decimal.Zero))
}

// placeBet debita o stake e devolve o recibo; ganhos não são creditados
func (a *API) placeBet(w http.ResponseWriter, r *http.Request) {
	var req PlaceBetRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := currency.ParseWallet(req.Currency)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	receipt, err := a.Slips.Place(r.Context(), userKey(r), c, req.Stake)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}
