// Package httpapi expõe o core (carteira, bilhete, escrow de tips e candidaturas
// de tipster) para a UI. Toda regra de negócio fica nos pacotes de domínio.
package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/radieske/betx-platform/internal/audit"
	"github.com/radieske/betx-platform/internal/catalog"
	"github.com/radieske/betx-platform/internal/escrow"
	"github.com/radieske/betx-platform/internal/ledger"
	"github.com/radieske/betx-platform/internal/slip"
	"github.com/radieske/betx-platform/internal/tipster"
	"github.com/radieske/betx-platform/internal/wallet"
	"github.com/radieske/betx-platform/pkg/currency"
)

// UserKeyHeader identifica o usuário da sessão; sem header o usuário é "guest"
const (
	UserKeyHeader  = "X-User-Key"
	DefaultUserKey = "guest"
)

// API agrupa os colaboradores usados pelos handlers
type API struct {
	Log        *zap.Logger
	Catalog    *catalog.Catalog
	Wallet     *wallet.Service
	TipsLedger *ledger.Ledger[currency.TipCoin]
	Slips      *slip.Book
	Escrow     *escrow.Engine
	Tipsters   *tipster.Service
	Activity   *audit.Feed      // opcional, alimentado pelo worker de auditoria
	WS         http.HandlerFunc // opcional

	AllowedOrigins []string
	Now            func() time.Time
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	if a.Now == nil {
		a.Now = time.Now
	}
	origins := a.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(a.accessLog)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", UserKeyHeader},
		MaxAge:         300,
	}))

	r.Get("/v1/matches", a.listMatches)
	r.Get("/v1/matches/trending", a.trendingMatches)

	r.Route("/v1/wallet", func(r chi.Router) {
		r.Get("/balances", a.walletBalances)
		r.Post("/credit", a.walletCredit)
		r.Post("/withdraw", a.walletWithdraw)
		r.Get("/deposit-address/{currency}", a.depositAddress)
	})

	r.Route("/v1/slip", func(r chi.Router) {
		r.Get("/", a.getSlip)
		r.Delete("/", a.clearSlip)
		r.Post("/picks", a.addPick)
		r.Delete("/picks/{id}", a.removePick)
		r.Put("/mode", a.setMode)
		r.Post("/place", a.placeBet)
	})

	r.Route("/v1/tips", func(r chi.Router) {
		r.Get("/", a.listTips)
		r.Get("/{id}", a.getTip)
		r.Post("/{id}/purchase", a.purchaseTip)
		r.Get("/{id}/purchase", a.getPurchase)
		r.Post("/{id}/refund", a.refundTip)
	})
	// saldo do marketplace é só exibição e crédito: a compra de tip paga pelo txHash simulado
	r.Get("/v1/tips-wallet/balances", a.tipBalances)
	r.Post("/v1/tips-wallet/credit", a.tipCredit)

	r.Route("/v1/tipsters", func(r chi.Router) {
		r.Get("/", a.listTipsters)
		r.Get("/applications", a.listApplications)
		r.Post("/applications", a.submitApplication)
		r.Get("/applications/{id}", a.getApplication)
		r.Post("/applications/{id}/stake", a.submitStake)
		r.Post("/applications/{id}/review", a.reviewApplication)
		r.Post("/applications/{id}/stake-review", a.reviewStake)
		r.Get("/listable", a.listableTipsters)
	})

	if a.Activity != nil {
		r.Get("/v1/activity", a.activity)
	}
	if a.WS != nil {
		r.Get("/ws", a.WS)
	}
	return r
}

func (a *API) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.Log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// userKey lê a identidade opaca enviada pela UI
func userKey(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get(UserKeyHeader)); k != "" {
		return k
	}
	return DefaultUserKey
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decode lê o corpo JSON; erro vira 400
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return badRequest("bad json: %v", err)
	}
	return nil
}
