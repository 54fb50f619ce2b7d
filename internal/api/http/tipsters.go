package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/betx-platform/internal/catalog"
	"github.com/radieske/betx-platform/internal/tipster"
)

func (a *API) listApplications(w http.ResponseWriter, r *http.Request) {
	apps, err := a.Tipsters.List(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

// submitApplication recebe o formulário; o endereço vem da carteira conectada
func (a *API) submitApplication(w http.ResponseWriter, r *http.Request) {
	var d tipster.Draft
	if err := decode(r, &d); err != nil {
		a.writeError(w, r, err)
		return
	}
	app, err := a.Tipsters.Submit(r.Context(), d)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

func (a *API) getApplication(w http.ResponseWriter, r *http.Request) {
	app, err := a.Tipsters.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (a *API) submitStake(w http.ResponseWriter, r *http.Request) {
	var req StakeRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	app, err := a.Tipsters.SubmitStake(r.Context(), chi.URLParam(r, "id"), req.TxHash)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (a *API) reviewApplication(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	app, err := a.Tipsters.Review(r.Context(), chi.URLParam(r, "id"), req.Approve, req.Note)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (a *API) reviewStake(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	app, err := a.Tipsters.ReviewStake(r.Context(), chi.URLParam(r, "id"), req.Approve)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (a *API) listableTipsters(w http.ResponseWriter, r *http.Request) {
	apps, err := a.Tipsters.Listable(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

// listTipsters é o diretório: perfis demo mais candidaturas listáveis, com busca e ordenação
func (a *API) listTipsters(w http.ResponseWriter, r *http.Request) {
	apps, err := a.Tipsters.Listable(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	profiles := a.Catalog.Tipsters("", catalog.ByROI)
	for _, app := range apps {
		profiles = append(profiles, app.Profile())
	}
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, catalog.SearchProfiles(profiles, q.Get("q"), catalog.ProfileSort(q.Get("sort"))))
}
