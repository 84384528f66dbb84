package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	ticketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Total tickets written to the ledger",
		},
		[]string{"currency"},
	)

	paymentOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_outcomes_total",
			Help: "Checkout settlements by outcome",
		},
		[]string{"outcome"},
	)

	checkoutsOpened = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "checkouts_opened_total",
			Help: "Checkout sessions opened",
		},
	)

	openCheckouts = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "open_checkout_sessions",
			Help: "Checkout sessions currently awaiting payment",
		},
	)

	storeWriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "store_write_duration_seconds",
			Help:    "Duration of document store writes",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	liveSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_ledger_subscriptions",
			Help: "Currently open ledger subscriptions",
		},
	)
)

type Monitor struct {
	redis *redis.Client
}

func NewMonitor(redisClient *redis.Client) *Monitor {
	return &Monitor{redis: redisClient}
}

// CollectLoop refreshes redis-derived gauges until the context ends.
func (m *Monitor) CollectLoop(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collectCheckoutMetrics(ctx)
		}
	}
}

func (m *Monitor) collectCheckoutMetrics(ctx context.Context) {
	keys, err := m.redis.Keys(ctx, "checkout:*").Result()
	if err != nil {
		return
	}

	open := 0
	for _, key := range keys {
		status, err := m.redis.HGet(ctx, key, "status").Result()
		if err == nil && status == "awaiting_payment" {
			open++
		}
	}
	openCheckouts.Set(float64(open))
}

func (m *Monitor) TrackTicketIssued(currency string) {
	ticketsIssued.WithLabelValues(currency).Inc()
}

func (m *Monitor) TrackPaymentOutcome(outcome string) {
	paymentOutcomes.WithLabelValues(outcome).Inc()
}

func (m *Monitor) TrackCheckoutOpened() {
	checkoutsOpened.Inc()
}

func (m *Monitor) TrackStoreWrite(duration time.Duration) {
	storeWriteDuration.Observe(duration.Seconds())
}

func (m *Monitor) TrackSubscription(delta float64) {
	liveSubscriptions.Add(delta)
}
