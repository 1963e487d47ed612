// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chathub_live_connections",
		Help: "Websocket connections currently registered with the hub",
	})

	OnlineUsers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chathub_online_users",
		Help: "Users with at least one live connection",
	})

	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chathub_messages_sent_total",
		Help: "Direct messages persisted and fanned out",
	})

	MessagesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chathub_messages_failed_total",
		Help: "Direct messages rejected before fan-out",
	}, []string{"reason"})

	PresenceEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chathub_presence_events_total",
		Help: "Presence transitions broadcast to watchers",
	}, []string{"state"})

	DroppedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chathub_dropped_frames_total",
		Help: "Frames dropped because a connection queue was full",
	})

	CatalogCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_requests_total",
		Help: "Catalog cache lookups by result",
	}, []string{"result"})

	AIFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "insight_ai_fallbacks_total",
		Help: "AI prompts answered by the secondary provider",
	})

	CircuitState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "0=closed, 1=half-open, 2=open",
	}, []string{"name"})
)
