package pkg

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeedAssembleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "club_portal",
		Subsystem: "feed",
		Name:      "assemble_duration_seconds",
		Help:      "Time spent assembling a viewer feed.",
		Buckets:   prometheus.DefBuckets,
	})

	FeedPostsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "club_portal",
		Subsystem: "feed",
		Name:      "posts_served_total",
		Help:      "Posts returned in feeds, by priority tier.",
	}, []string{"tier"})

	FeedFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "club_portal",
		Subsystem: "feed",
		Name:      "assemble_failures_total",
		Help:      "Feed assemblies aborted by a data-store failure.",
	})

	OutboxDelivered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "club_portal",
		Subsystem: "outbox",
		Name:      "delivered_total",
		Help:      "Outbox events relayed, by result.",
	}, []string{"result"})
)
