package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realty_analyze_requests_total",
		Help: "Total analyze requests by intent and HTTP status",
	}, []string{"intent", "status"})
	RequestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "realty_analyze_request_duration_ms",
		Help:    "Analyze request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	SummaryFallbackTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realty_summary_fallback_total",
		Help: "Summaries served from the template, by reason",
	}, []string{"reason"})
	LLMRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "realty_llm_requests_total",
		Help: "Text generation calls by outcome",
	}, []string{"outcome"})
	LLMDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "realty_llm_duration_ms",
		Help:    "Text generation call duration in milliseconds",
		Buckets: []float64{50, 100, 200, 500, 1000, 2000, 5000, 10000},
	})
	SummaryCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "realty_summary_cache_hits_total",
		Help: "Summary cache hits",
	})
	SummaryCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "realty_summary_cache_misses_total",
		Help: "Summary cache misses",
	})
	DatasetRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "realty_dataset_records",
		Help: "Number of records loaded into the dataset",
	})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(SummaryFallbackTotal)
	prometheus.MustRegister(LLMRequestsTotal)
	prometheus.MustRegister(LLMDurationMs)
	prometheus.MustRegister(SummaryCacheHitsTotal)
	prometheus.MustRegister(SummaryCacheMissesTotal)
	prometheus.MustRegister(DatasetRecords)
}

// Handler exposes the registered metrics for Prometheus scraping.
func Handler() http.Handler { return promhttp.Handler() }
