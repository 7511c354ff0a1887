// Package metrics holds the Prometheus collectors of the relay pipeline.
// They register with the default registry served on /metrics.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PollsTotal counts polling cycles by source page and outcome (ok, failed, skipped).
	PollsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fbrepost_polls_total",
		Help: "Total number of source page polling cycles",
	}, []string{"page_id", "result"})

	// PollDuration measures one polling cycle.
	PollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "fbrepost_poll_duration_seconds",
		Help:    "Duration of a source page polling cycle in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"page_id"})

	// PostsCachedTotal counts posts newly cached by a source page.
	PostsCachedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fbrepost_posts_cached_total",
		Help: "Total number of posts cached by source pages",
	}, []string{"page_id"})

	// PostFailuresTotal counts posts dropped from a cycle by failing stage.
	PostFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fbrepost_post_failures_total",
		Help: "Total number of posts that failed to be ingested",
	}, []string{"page_id", "stage"})

	// PublishedTotal counts posts published to target pages.
	PublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fbrepost_published_total",
		Help: "Total number of posts published to target pages",
	}, []string{"page_id"})

	// PublishFailuresTotal counts failed publish attempts.
	PublishFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fbrepost_publish_failures_total",
		Help: "Total number of failed publish attempts",
	}, []string{"page_id"})
)

// Failure stages of source page ingestion.
const (
	StageDetails    = "details"
	StageAttachment = "attachment"
	StageCache      = "cache"
)

// Poll results.
const (
	ResultOK      = "ok"
	ResultFailed  = "failed"
	ResultSkipped = "skipped"
)

// PageLabel formats a page id as a label value.
func PageLabel(pageID int64) string {
	return strconv.FormatInt(pageID, 10)
}
