package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LoanTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "loan_transitions_total", Help: "Loan application status transitions"},
		[]string{"to"},
	)
	DocumentReviews = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "document_reviews_total", Help: "Document review outcomes"},
		[]string{"status"},
	)
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "notifications_total", Help: "Notifier publish attempts by result"},
		[]string{"result"},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Count of HTTP requests"},
		[]string{"path", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"},
	)
)

func init() {
	prometheus.MustRegister(LoanTransitions, DocumentReviews, Notifications, HTTPRequests, HTTPLatency)
}
