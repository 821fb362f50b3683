// Package metrics holds the Prometheus collectors of the feed server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FeedWrites counts append/delete/seen operations by feed and outcome.
	FeedWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ourstory_feed_writes_total",
			Help: "Total number of feed write operations",
		},
		[]string{"feed", "op", "result"},
	)

	// Subscribers is the number of live snapshot subscriptions per feed.
	Subscribers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ourstory_feed_subscribers",
			Help: "Current number of live feed subscriptions",
		},
		[]string{"feed"},
	)

	// SnapshotsPushed counts snapshot frames queued to subscribers.
	SnapshotsPushed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ourstory_feed_snapshots_pushed_total",
			Help: "Total number of snapshot frames pushed to subscribers",
		},
		[]string{"feed"},
	)

	// SweptMessages counts chat messages removed by the retention sweep.
	SweptMessages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ourstory_retention_swept_messages_total",
			Help: "Total number of chat messages removed by the retention sweep",
		},
	)
)

// Result maps an error to the "result" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
