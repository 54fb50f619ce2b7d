package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/betx-platform/internal/catalog"
	"github.com/radieske/betx-platform/pkg/currency"
)

// listTips aceita ?q= (liga, partida ou tipster) e ?sort=soon|winrate|price
func (a *API) listTips(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tips := a.Catalog.Tips(q.Get("q"), catalog.TipSort(q.Get("sort")))
	out := make([]TipView, 0, len(tips))
	for _, t := range tips {
		v, err := a.tipView(r.Context(), userKey(r), t)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getTip(w http.ResponseWriter, r *http.Request) {
	t, err := a.Catalog.Tip(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	v, err := a.tipView(r.Context(), userKey(r), t)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// purchaseTip inicia o escrow com o txHash simulado; preço vem do catálogo
func (a *API) purchaseTip(w http.ResponseWriter, r *http.Request) {
	t, err := a.Catalog.Tip(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var req PurchaseRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if !t.Open(a.Now()) {
		a.writeError(w, r, fmt.Errorf("%w: %s", ErrTipClosed, t.ID))
		return
	}
	coin := currency.TipBETX
	if req.Coin != "" {
		if coin, err = currency.ParseTipCoin(req.Coin); err != nil {
			a.writeError(w, r, err)
			return
		}
	}
	p, err := a.Escrow.Initiate(r.Context(), userKey(r), t.ID, coin, t.Price, req.TxHash)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, p)
}

func (a *API) getPurchase(w http.ResponseWriter, r *http.Request) {
	t, err := a.Catalog.Tip(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	v, err := a.tipView(r.Context(), userKey(r), t)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if v.Purchase == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "purchase not found"})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) refundTip(w http.ResponseWriter, r *http.Request) {
	var req RefundRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	p, err := a.Escrow.Refund(r.Context(), userKey(r), chi.URLParam(r, "id"), req.Percent)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) tipView(ctx context.Context, user string, t catalog.Tip) (TipView, error) {
	v := TipView{Tip: t, Open: t.Open(a.Now())}

	sales, err := a.Escrow.Sales(ctx, t.ID)
	if err != nil {
		return TipView{}, err
	}
	v.Sales = sales

	p, ok, err := a.Escrow.Purchase(ctx, user, t.ID)
	if err != nil {
		return TipView{}, err
	}
	if ok {
		v.Purchase = &p
	}

	unlocked, err := a.Escrow.IsUnlocked(ctx, user, t.ID)
	if err != nil {
		return TipView{}, err
	}
	if unlocked {
		odds := t.HiddenOdds
		v.Unlocked = true
		v.HiddenMarket = t.HiddenMarket
		v.HiddenOdds = &odds
		v.Reveal = t.Reveal
	}
	return v, nil
}
