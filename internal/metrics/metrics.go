package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "raffle",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "raffle",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	lotteryCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "raffle",
			Subsystem: "lottery",
			Name:      "calls_total",
			Help:      "Lottery entry point calls by outcome (ok or error kind).",
		},
		[]string{"entry_point", "outcome"},
	)

	ticketsSold = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "raffle",
			Subsystem: "lottery",
			Name:      "tickets_sold_total",
			Help:      "Tickets sold across all rounds.",
		},
	)

	phase = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "raffle",
			Subsystem: "lottery",
			Name:      "phase",
			Help:      "Current phase: 0 inactive, 1 idle, 2 active, 3 payout.",
		},
	)

	currentRound = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "raffle",
			Subsystem: "lottery",
			Name:      "current_round_id",
			Help:      "Id of the current round.",
		},
	)

	pooledAmount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "raffle",
			Subsystem: "lottery",
			Name:      "pooled_amount",
			Help:      "Pooled amount of the current round (approximate).",
		},
	)

	transfers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "raffle",
			Subsystem: "payout",
			Name:      "transfers_total",
			Help:      "Payout transfer dispatch attempts by result.",
		},
		[]string{"kind", "status"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		lotteryCalls,
		ticketsSold,
		phase,
		currentRound,
		pooledAmount,
		transfers,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request counts and latency per route template
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		if path == "/metrics" {
			return
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordCall counts one lottery entry point call. outcome is "ok" or an error kind.
func RecordCall(entryPoint, outcome string) {
	lotteryCalls.WithLabelValues(entryPoint, outcome).Inc()
}

// RecordTickets adds sold tickets
func RecordTickets(count uint32) {
	ticketsSold.Add(float64(count))
}

// SetLotteryState publishes the phase and the current round id
func SetLotteryState(phaseValue uint8, roundID uint32) {
	phase.Set(float64(phaseValue))
	currentRound.Set(float64(roundID))
}

// SetPooledAmount publishes the pool of the current round
func SetPooledAmount(pool float64) {
	pooledAmount.Set(pool)
}

// RecordTransfer counts one dispatch attempt
func RecordTransfer(kind, status string) {
	transfers.WithLabelValues(kind, status).Inc()
}
