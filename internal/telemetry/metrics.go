// Package telemetry provides application-level observability for the workspace SSO service.
//
// All metrics are registered against the default Prometheus registry and are
// served on the side-channel HTTP listener started by main.go:
//
//	GET http://<host>:<WSP_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint is not part of the Gin router so it stays
// off the public ingress.
//
// HTTP metrics use c.FullPath() (route template such as /api/v1/oauth/sign-in/:configId)
// rather than the raw URL to prevent unbounded label cardinality from
// user-supplied path segments.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics — labelled by method, route template, and status code.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Sign-in metrics.
//
// SignInsTotal is a CounterVec with labels {provider, outcome}. Outcome is one of
// "success", "unauthorized", "not_acceptable", or "error". Provider is the SSO tag
// (google, git, openid).
//
// Example PromQL queries:
//   - Failure rate (%):  sum(rate(sign_ins_total{outcome!="success"}[5m])) / sum(rate(sign_ins_total[5m])) * 100
//   - Logins by IdP:     sum by (provider) (rate(sign_ins_total{outcome="success"}[1h]))
var (
	SignInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sign_ins_total",
			Help: "Total number of SSO sign-in attempts, by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	WorkspacesProvisionedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "workspaces_provisioned_total",
			Help: "Total number of workspaces created just-in-time during sign-in.",
		},
	)
)
