// Package metrics provides Prometheus instrumentation for quoting.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks quote creation, validation rejections and premium calculations.
type Metrics struct {
	QuotesCreated          prometheus.Counter
	ValidationRejections   prometheus.Counter
	ValidationMessages     prometheus.Counter
	PremiumCalculations    *prometheus.CounterVec
	PremiumCalculationTime prometheus.Histogram
}

// New creates the quote metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh
// prometheus.NewRegistry() in tests so repeated construction never collides.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		QuotesCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "travel_quote_quotes_created_total",
			Help: "Total number of quotes saved",
		}),
		ValidationRejections: f.NewCounter(prometheus.CounterOpts{
			Name: "travel_quote_validation_rejections_total",
			Help: "Total number of quote submissions rejected by validation",
		}),
		ValidationMessages: f.NewCounter(prometheus.CounterOpts{
			Name: "travel_quote_validation_messages_total",
			Help: "Total number of validation messages returned to clients",
		}),
		PremiumCalculations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "travel_quote_premium_calculations_total",
			Help: "Premium calculations by outcome (priced, unpriced)",
		}, []string{"outcome"}),
		PremiumCalculationTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "travel_quote_premium_calculation_duration_seconds",
			Help:    "Duration of premium calculations including reference data reads",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// QuoteCreated records a saved quote.
func (m *Metrics) QuoteCreated() {
	m.QuotesCreated.Inc()
}

// ValidationRejected records a rejected submission and how many messages it produced.
func (m *Metrics) ValidationRejected(messages int) {
	m.ValidationRejections.Inc()
	m.ValidationMessages.Add(float64(messages))
}

// ObservePremiumCalculation records one calculation. Call with time.Now()
// taken before the calculation started.
func (m *Metrics) ObservePremiumCalculation(start time.Time, priced bool) {
	outcome := "unpriced"
	if priced {
		outcome = "priced"
	}
	m.PremiumCalculations.WithLabelValues(outcome).Inc()
	m.PremiumCalculationTime.Observe(time.Since(start).Seconds())
}
