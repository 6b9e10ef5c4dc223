package reporting

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	stageClass   = "class"
	stageSummary = "summary"
)

// Metrics records pipeline activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	classesProcessed prometheus.Counter
	rendererFailures *prometheus.CounterVec
	rendererDuration *prometheus.HistogramVec
}

// NewMetrics registers the pipeline metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		classesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "covreport_classes_processed_total",
			Help: "Total number of classes handed to the renderers.",
		}),
		rendererFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "covreport_renderer_failures_total",
			Help: "Total number of isolated renderer failures.",
		}, []string{"report_type", "stage"}),
		rendererDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "covreport_renderer_call_seconds",
			Help:    "Time spent in a single renderer call.",
			Buckets: prometheus.DefBuckets,
		}, []string{"report_type", "stage"}),
	}
}

func (m *Metrics) classProcessed() {
	if m == nil {
		return
	}
	m.classesProcessed.Inc()
}

func (m *Metrics) observeCall(reportType, stage string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.rendererDuration.WithLabelValues(reportType, stage).Observe(elapsed.Seconds())
	if err != nil {
		m.rendererFailures.WithLabelValues(reportType, stage).Inc()
	}
}
