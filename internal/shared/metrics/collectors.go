package metrics

import "github.com/prometheus/client_golang/prometheus"

// Collectors agrupa os contadores de domínio do betx-api
type Collectors struct {
	LedgerMutations   *prometheus.CounterVec
	BetsPlaced        *prometheus.CounterVec
	EscrowTransitions *prometheus.CounterVec
	TipsterReviews    *prometheus.CounterVec
	AuditConsumed     *prometheus.CounterVec
}

// NewCollectors cria e registra os contadores em reg
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		LedgerMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "betx_ledger_mutations_total",
			Help: "créditos e débitos aplicados por moeda",
		}, []string{"op", "currency"}),
		BetsPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "betx_bets_placed_total",
			Help: "apostas colocadas por modo e moeda",
		}, []string{"mode", "currency"}),
		EscrowTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "betx_escrow_transitions_total",
			Help: "transições de compra de tips por status de destino",
		}, []string{"status"}),
		TipsterReviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "betx_tipster_reviews_total",
			Help: "revisões de candidatura e de stake",
		}, []string{"outcome"}),
		AuditConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "betx_audit_events_total",
			Help: "eventos consumidos pelo worker de auditoria por tópico e resultado",
		}, []string{"topic", "result"}),
	}
	reg.MustRegister(c.LedgerMutations, c.BetsPlaced, c.EscrowTransitions, c.TipsterReviews, c.AuditConsumed)
	return c
}
