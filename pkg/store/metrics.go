package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tracknamic",
		Subsystem: "store",
		Name:      "mutations_total",
		Help:      "Prompt store mutations by type.",
	}, []string{"type"})

	metricLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tracknamic",
		Subsystem: "store",
		Name:      "loads_total",
		Help:      "Canonical list loads by source (backend, snapshot, seed).",
	}, []string{"source"})
)
