// api/handlers/stores.go
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"brightside/api/apperrors"
	"brightside/api/models"
)

// FactStore is the append-only side: immutable page view and event rows
// plus the windowed aggregates computed from them.
type FactStore interface {
	InsertPageView(ctx context.Context, view models.PageView) error
	InsertEvent(ctx context.Context, event models.AnalyticsEvent) error
	TotalPageViews(ctx context.Context, since time.Time) (uint64, error)
	UniqueVisitors(ctx context.Context, since time.Time) (uint64, error)
	AverageTimeOnPage(ctx context.Context, since time.Time) (float64, error)
	TopPages(ctx context.Context, since time.Time, limit uint64) ([]models.PageCount, error)
	ReferrerCounts(ctx context.Context, since time.Time) (map[string]uint64, error)
	DailyPageViews(ctx context.Context, since time.Time) ([]models.DailyCount, error)
}

// SessionStore is the mutable side: one row per session identifier.
type SessionStore interface {
	RecordPageView(ctx context.Context, sessionID string, now time.Time) error
	Touch(ctx context.Context, sessionID string, now time.Time) error
	LiveCount(ctx context.Context, since time.Time) (int64, error)
	BounceStats(ctx context.Context, since time.Time) (bounces, total int64, err error)
}

// FormStore persists and reports on marketing form submissions.
type FormStore interface {
	HasRecent(ctx context.Context, email, formType string, since time.Time) (bool, error)
	Insert(ctx context.Context, sub models.FormSubmission) error
	CountsByType(ctx context.Context, since time.Time) (map[string]int64, error)
	Recent(ctx context.Context, since time.Time, limit int) ([]models.SignupRecord, error)
	ListForExport(ctx context.Context, formType string) ([]models.SignupRecord, error)
}

// writeError maps an error onto its HTTP status and public message.
// Anything outside the AppError taxonomy collapses to a generic 500 body.
func writeError(c *gin.Context, err error) {
	c.JSON(apperrors.StatusCode(err), gin.H{"error": apperrors.PublicMessage(err)})
}

func contextWithTimeout(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d)
}
