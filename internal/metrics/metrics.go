package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Connection metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "campuslearn_connections_active",
			Help: "Currently connected websocket clients",
		},
	)

	PresenceEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campuslearn_presence_events_total",
			Help: "Presence transitions broadcast to clients",
		},
		[]string{"state"}, // "online" or "offline"
	)

	// Messaging metrics
	MessagesRelayed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campuslearn_messages_relayed_total",
			Help: "Messages persisted through the relay",
		},
	)

	MessagesDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campuslearn_messages_delivered_total",
			Help: "Relay pushes to receiver connections",
		},
		[]string{"outcome"}, // "pushed" or "queued"
	)

	SearchQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campuslearn_search_queries_total",
			Help: "Directory search queries served",
		},
	)

	// Notification ingest metrics
	NotificationsIngested = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campuslearn_notifications_ingested_total",
			Help: "Notifications accepted by the TCP ingest listener",
		},
	)

	IngestDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "campuslearn_ingest_discarded_total",
			Help: "Malformed or incomplete ingest lines discarded",
		},
	)
)
