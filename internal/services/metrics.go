package skn

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("skn/services")

// метрики

var (
	placementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skn_placements_total",
			Help: "Кол-во размещений участников",
		},
		[]string{"result"},
	)

	propagationSteps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skn_propagation_steps_total",
			Help: "Кол-во обработанных предков при распространении",
		},
	)

	pairsCredited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "skn_pairs_credited_total",
			Help: "Кол-во начисленных пар",
		},
	)

	starRewards = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skn_star_rewards_total",
			Help: "Кол-во наград за звездный уровень",
		},
		[]string{"level"},
	)

	casConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skn_cas_conflicts_total",
			Help: "Кол-во конфликтов конкурентной записи",
		},
		[]string{"op"},
	)
)
