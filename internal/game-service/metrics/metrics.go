package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Coletores de domínio do game-service, expostos pelo sidecar de /metrics
var (
	RoundsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coinflip_rounds_settled_total",
		Help: "Rounds liquidados, por resultado do sorteio",
	}, []string{"result"})

	BetsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coinflip_bets_rejected_total",
		Help: "Apostas rejeitadas antes de qualquer débito, por motivo",
	}, []string{"reason"})

	CreditsPaid = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coinflip_credits_paid_total",
		Help: "Total de créditos pagos a vencedores",
	})
)
