package httpapi

import "net/http"

// activity lista o feed de auditoria do usuário (mais recente primeiro)
func (a *API) activity(w http.ResponseWriter, r *http.Request) {
	entries, err := a.Activity.Recent(r.Context(), userKey(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"userKey": userKey(r), "entries": entries})
}
