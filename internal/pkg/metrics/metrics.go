// Package metrics exposes Prometheus counters for the interesting business
// events. InitMetrics must run once before the server starts serving.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	initOnce sync.Once

	// SignupsTotal counts successful account creations.
	SignupsTotal prometheus.Counter
	// LoginsTotal counts successful logins.
	LoginsTotal prometheus.Counter
	// TokensRevokedTotal counts tokens revoked on logout.
	TokensRevokedTotal prometheus.Counter
	// PicturesUploadedTotal counts pictures persisted after a hosting upload.
	PicturesUploadedTotal prometheus.Counter
	// RatingsSubmittedTotal counts accepted ratings.
	RatingsSubmittedTotal prometheus.Counter
	// CommentsCreatedTotal counts created comments.
	CommentsCreatedTotal prometheus.Counter
	// EmailsSentTotal counts confirmation / reset emails handed to SMTP.
	EmailsSentTotal prometheus.Counter
)

// InitMetrics registers all counters with the default registry.
func InitMetrics() {
	initOnce.Do(func() {
		SignupsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "photoshare_signups_total",
			Help: "Number of accounts created.",
		})
		LoginsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "photoshare_logins_total",
			Help: "Number of successful logins.",
		})
		TokensRevokedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "photoshare_tokens_revoked_total",
			Help: "Number of tokens revoked on logout.",
		})
		PicturesUploadedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "photoshare_pictures_uploaded_total",
			Help: "Number of pictures uploaded.",
		})
		RatingsSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "photoshare_ratings_submitted_total",
			Help: "Number of ratings accepted.",
		})
		CommentsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "photoshare_comments_created_total",
			Help: "Number of comments created.",
		})
		EmailsSentTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "photoshare_emails_sent_total",
			Help: "Number of notification emails sent.",
		})
	})
}
