// Package metrics holds the Prometheus collectors shared by the shell's
// transports and command pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vshell"

var (
	// CommandsTotal counts executed batch steps by verb and outcome.
	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "commands_total",
		Help:      "Commands executed, by verb and status.",
	}, []string{"verb", "status"})

	// TranslationsTotal counts natural-language interpretations by the
	// stage that produced them.
	TranslationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "translations_total",
		Help:      "Natural-language interpretations, by source.",
	}, []string{"source"})

	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "requests_total",
		Help:      "Requests served, by transport, route and status code.",
	}, []string{"transport", "route", "code"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "request_duration_seconds",
		Help:      "Request latency, by transport and route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"transport", "route"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Open gateway and websocket sessions.",
	})
)

// Label values for CommandsTotal.
const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
	StatusUnknown  = "unknown"
	StatusError    = "failed"
)

// Label values for TranslationsTotal.
const (
	SourceRules    = "rules"
	SourceFallback = "fallback"
	SourceNone     = "none"
)
