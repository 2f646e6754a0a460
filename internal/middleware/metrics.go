package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodblog_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"operation"})

	// ActiveWebSockets is the gauge of live feed WebSocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "moodblog_websocket_connections",
		Help: "Number of active live-feed WebSocket connections",
	})

	// WebSocketDrops counts live-feed messages dropped due to slow clients.
	WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodblog_websocket_dropped_messages_total",
		Help: "Total number of WebSocket messages dropped by reason",
	}, []string{"reason"})

	// FeedRankings counts feed ranking passes by viewer kind.
	FeedRankings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodblog_feed_rankings_total",
		Help: "Total number of feed ranking passes",
	}, []string{"viewer"})

	// OTPRequests counts password-reset OTP operations by outcome.
	OTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "moodblog_otp_requests_total",
		Help: "Total number of password-reset OTP operations",
	}, []string{"operation", "outcome"})
)

// InitMetrics creates the fiberprometheus middleware registered under the
// given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the HTTP metrics collection handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
