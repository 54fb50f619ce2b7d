package httpapi

import (
	"net/http"
	"strings"

	"github.com/radieske/betx-platform/internal/catalog"
)

// listMatches retorna as partidas; ?sport= filtra (Football, Tennis, ...)
func (a *API) listMatches(w http.ResponseWriter, r *http.Request) {
	sport := catalog.Sport(strings.TrimSpace(r.URL.Query().Get("sport")))
	if strings.EqualFold(string(sport), "all") {
		sport = ""
	}
	writeJSON(w, http.StatusOK, a.Catalog.Matches(sport))
}

func (a *API) trendingMatches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.Catalog.Trending())
}
