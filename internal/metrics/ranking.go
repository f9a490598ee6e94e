package metrics

import "github.com/prometheus/client_golang/prometheus"

// Hybrid ranking Prometheus metrics.
var (
	RankingDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ragfuse",
			Name:      "ranking_duration_seconds",
			Help:      "Hybrid scoring duration in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	RankingCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "ragfuse",
			Name:      "ranking_candidates",
			Help:      "Number of fragments scored per search",
			Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
		},
	)

	CorpusFragments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ragfuse",
			Name:      "corpus_fragments",
			Help:      "Number of fragments in the active corpus snapshot",
		},
	)
)

var rankingMetricsRegistered bool

// RegisterRankingMetrics registers Prometheus ranking metrics. Must be called once from main.
func RegisterRankingMetrics() {
	if rankingMetricsRegistered {
		return
	}
	prometheus.MustRegister(RankingDuration)
	prometheus.MustRegister(RankingCandidates)
	prometheus.MustRegister(CorpusFragments)
	rankingMetricsRegistered = true
}
