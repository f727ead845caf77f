package presence

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	batchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "status_update_batches_total",
		Help: "Status update batches received.",
	})
	outcomesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "status_update_outcomes_total",
		Help: "Pair outcomes by kind.",
	}, []string{"kind"})
)
