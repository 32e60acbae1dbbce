// Package metrics defines and registers all custom Prometheus metrics for the
// blog CMS API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default registry through promauto when the
// package is first imported. HTTP request metrics come from echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "blog_cms"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthFailuresTotal counts rejected requests at the auth gate.
// Label:
//   - reason: "no_token", "invalid_token", "token_expired", "invalid_user", "forbidden"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of requests rejected by authentication or authorization.",
	},
	[]string{"reason"},
)

// LoginsTotal counts login attempts.
// Labels:
//   - class: "user" or "staff"
//   - result: "ok" or "failed"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by account class and result.",
	},
	[]string{"class", "result"},
)

// ── Blog metrics ──────────────────────────────────────────────────────────────

// BlogsCreatedTotal counts created posts.
// Label:
//   - published: "true" or "false"
var BlogsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "blogs_created_total",
		Help:      "Total number of posts created.",
	},
	[]string{"published"},
)

// SlugConflictsTotal counts writes that lost a slug race and were retried.
var SlugConflictsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "slug_conflicts_total",
		Help:      "Total number of slug collisions detected by the unique index.",
	},
)

// LikesTotal counts like requests.
// Label:
//   - result: "counted", "duplicate", or "unguarded" (like guard unavailable)
var LikesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "likes_total",
		Help:      "Total number of like requests, labelled by outcome.",
	},
	[]string{"result"},
)

// ── Comment metrics ───────────────────────────────────────────────────────────

// CommentsTotal counts comment lifecycle events.
// Label:
//   - action: "submitted", "approved", "rejected"
var CommentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "comments_total",
		Help:      "Total number of comments submitted and moderated.",
	},
	[]string{"action"},
)

// NotificationsTotal counts comment notification deliveries.
// Label:
//   - result: "sent", "failed", "dropped"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of comment notifications, labelled by delivery result.",
	},
	[]string{"result"},
)

// NotificationQueueDepth tracks pending notifications in each worker channel.
// Label:
//   - worker_id: numeric worker index
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of notifications pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// NotificationDuration measures how long one delivery takes.
var NotificationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "notification_duration_seconds",
		Help:      "Duration of a single comment notification delivery.",
		Buckets:   prometheus.DefBuckets,
	},
)

// ── Upload metrics ────────────────────────────────────────────────────────────

// ImagesStoredTotal counts images written to storage.
// Label:
//   - content_type: sniffed MIME type
var ImagesStoredTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_stored_total",
		Help:      "Total number of images stored, by content type.",
	},
	[]string{"content_type"},
)

// ImagesRejectedTotal counts uploads refused by validation.
// Label:
//   - reason: "too_large", "unsupported", "too_many"
var ImagesRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "images_rejected_total",
		Help:      "Total number of uploaded images rejected by validation.",
	},
	[]string{"reason"},
)
