// Package observability provides logging, metrics, and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// ActiveWebSockets is the gauge of active feed websocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "realtime_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped due to backpressure by hub and reason.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// FeedSubscriberReconnects counts Redis feed subscription re-establishments.
	FeedSubscriberReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_feed_subscriber_reconnects_total",
		Help: "Total number of Redis feed subscriber reconnect attempts",
	})

	// FanoutLegFailures counts friend-feed fetch legs that failed or timed out.
	FanoutLegFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "realtime_fanout_leg_failures_total",
		Help: "Total number of friend-feed fan-out legs degraded to empty results",
	}, []string{"kind"})

	// StoriesExpired counts stories removed by the retention sweeper.
	StoriesExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "realtime_stories_expired_total",
		Help: "Total number of stories deleted by the retention sweeper",
	})
)
