// Package observability exposes the service's Prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HintsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mentacrush_hints_sent_total",
		Help: "Number of hints recorded in the ledger.",
	})

	MatchesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mentacrush_matches_created_total",
		Help: "Number of mutual matches promoted to a chat.",
	})

	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mentacrush_messages_sent_total",
		Help: "Number of chat messages stored.",
	})

	NotificationsPushed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mentacrush_notifications_pushed_total",
		Help: "Number of notifications pushed to user feeds.",
	})

	ActiveSubscriptions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mentacrush_active_subscriptions",
		Help: "Live websocket subscriptions currently open.",
	})
)
