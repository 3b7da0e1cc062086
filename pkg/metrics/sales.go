package metrics

import "github.com/prometheus/client_golang/prometheus"

// SalesMetrics tracks session commits at the merch table.
type SalesMetrics struct {
	committed  *prometheus.CounterVec
	rejected   *prometheus.CounterVec
	revenue    *prometheus.CounterVec
	batchLines prometheus.Histogram
}

// NewSalesMetrics registers the sale counters on the provided registerer.
func NewSalesMetrics(reg prometheus.Registerer) *SalesMetrics {
	if reg == nil {
		return &SalesMetrics{}
	}
	committed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_committed_total",
		Help: "Sale lines committed, labelled by payment type.",
	}, []string{"payment_type"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_rejected_total",
		Help: "Session commits rejected at validation, labelled by reason.",
	}, []string{"reason"})
	revenue := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sales_revenue_cents_total",
		Help: "Gross revenue in minor units, labelled by payment type.",
	}, []string{"payment_type"})
	batchLines := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sales_batch_lines",
		Help:    "Distinct items per committed session.",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})
	reg.MustRegister(committed, rejected, revenue, batchLines)
	return &SalesMetrics{
		committed:  committed,
		rejected:   rejected,
		revenue:    revenue,
		batchLines: batchLines,
	}
}

// IncCommitted counts one committed sale line.
func (s *SalesMetrics) IncCommitted(paymentType string) {
	if s == nil || s.committed == nil {
		return
	}
	s.committed.WithLabelValues(normalizeLabel(paymentType)).Inc()
}

// IncRejected counts a commit that failed validation.
func (s *SalesMetrics) IncRejected(reason string) {
	if s == nil || s.rejected == nil {
		return
	}
	s.rejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

// AddRevenue accumulates gross revenue in cents.
func (s *SalesMetrics) AddRevenue(paymentType string, cents int64) {
	if s == nil || s.revenue == nil {
		return
	}
	if cents < 0 {
		return
	}
	s.revenue.WithLabelValues(normalizeLabel(paymentType)).Add(float64(cents))
}

// ObserveBatchLines records the line count of a committed session.
func (s *SalesMetrics) ObserveBatchLines(lines int) {
	if s == nil || s.batchLines == nil {
		return
	}
	s.batchLines.Observe(float64(lines))
}
