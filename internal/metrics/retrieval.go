package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval pipeline metrics. Stages: fetched, over_distance, uninformative,
// returned.
var RetrievalCandidatesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "chat_analyser",
		Name:      "retrieval_candidates_total",
		Help:      "Retrieval candidates by pipeline stage",
	},
	[]string{"stage"},
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers retrieval metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(RetrievalCandidatesTotal)
	retrievalMetricsRegistered = true
}
