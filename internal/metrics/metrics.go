// Package metrics holds the Prometheus collectors of the portal.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubportal_rpc_requests_total",
		Help: "RPC requests by procedure and result code.",
	}, []string{"procedure", "code"})

	RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clubportal_rpc_duration_seconds",
		Help:    "RPC handling time by procedure.",
		Buckets: prometheus.DefBuckets,
	}, []string{"procedure"})

	DocumentsCompiled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubportal_documents_compiled_total",
		Help: "Documents compiled by kind.",
	}, []string{"kind"})

	Emails = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubportal_emails_total",
		Help: "Emails handed to the email function, by result.",
	}, []string{"result"})

	FeeRecomputations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubportal_monthly_fee_recomputations_total",
		Help: "Monthly fee recomputations by trigger.",
	}, []string{"reason"})
)

// Email results.
const (
	EmailSent   = "sent"
	EmailFailed = "failed"
)
