package prometheus

import "time"

// AppMetrics holds every metric family the service emits.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Analysis pipeline
	AnalysesTotal       CounterVec
	AnalysisDuration    HistogramVec
	AnalysisRiskScore   HistogramVec
	EmptyInputsTotal    CounterVec
	LevelOutOfEnumTotal CounterVec

	// Provider gateway
	ProviderRequestsTotal   CounterVec
	ProviderRequestDuration HistogramVec

	// Response contract
	SchemaViolationsTotal CounterVec
}

// Histogram bucket presets.
var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultProviderDurationBuckets = []float64{.5, 1, 2, 5, 10, 30, 60, 120}
	RiskScoreBuckets               = []float64{0, 10, 25, 40, 55, 70, 85, 100}
)

// NewAppMetrics registers all application metrics on the given collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests")

	m.AnalysesTotal = collector.RegisterCounter("analyses_total", "Analysis requests by modality and outcome", "modality", "outcome")
	m.AnalysisDuration = collector.RegisterHistogram("analysis_duration_seconds", "End-to-end analysis duration", DefaultProviderDurationBuckets, "modality")
	m.AnalysisRiskScore = collector.RegisterHistogram("analysis_risk_score", "Distribution of returned risk scores", RiskScoreBuckets, "modality")
	m.EmptyInputsTotal = collector.RegisterCounter("empty_inputs_total", "Requests rejected before any provider call", "modality")
	m.LevelOutOfEnumTotal = collector.RegisterCounter("risk_level_out_of_enum_total", "Provider responses with an unrecognized risk_level")

	m.ProviderRequestsTotal = collector.RegisterCounter("provider_requests_total", "Provider invocations by outcome", "outcome")
	m.ProviderRequestDuration = collector.RegisterHistogram("provider_request_duration_seconds", "Provider call duration", DefaultProviderDurationBuckets)

	m.SchemaViolationsTotal = collector.RegisterCounter("schema_violations_total", "Provider outputs rejected by the response validator", "field")

	return m
}

// ObserveAnalysis records the standard per-analysis metric set.
func (m *AppMetrics) ObserveAnalysis(modality, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(modality, outcome).Inc()
	m.AnalysisDuration.WithLabelValues(modality).Observe(elapsed.Seconds())
}
