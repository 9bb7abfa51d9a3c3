package opera

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusRulesetResolutions  prometheus.Counter
	prometheusScheduleActivations *prometheus.GaugeVec
	prometheusChainID             *prometheus.GaugeVec

	prometheusMetricsInitOnce sync.Once
)

func initPrometheusMetrics() {
	prometheusMetricsInitOnce.Do(_initPrometheusMetrics)
}

func _initPrometheusMetrics() {
	prometheusRulesetResolutions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "opera",
			Subsystem: "rules",
			Name:      "resolutions",
			Help:      "Number of block heights resolved to a ruleset",
		},
	)
	prometheusScheduleActivations = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "opera",
			Subsystem: "rules",
			Name:      "activations",
			Help:      "Number of activations in the sealed schedule",
		},
		[]string{"network"},
	)
	prometheusChainID = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "opera",
			Subsystem: "rules",
			Name:      "genesis_chain_id",
			Help:      "Chain ID of the genesis ruleset",
		},
		[]string{"network"},
	)
}
