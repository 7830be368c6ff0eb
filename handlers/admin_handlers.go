// api/handlers/admin_handlers.go
package handlers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"brightside/api/apperrors"
	"brightside/api/models"
	"brightside/api/utils"
)

const (
	topPagesLimit      = 10
	recentSignupsLimit = 50
)

// AdminHandlers serves the read-only reporting endpoints consumed by the
// dashboard. Every number is derived fresh from the fact tables on each
// call; there is no rollup or caching layer in between.
type AdminHandlers struct {
	Facts      FactStore
	Sessions   SessionStore
	Forms      FormStore
	LiveWindow time.Duration

	log *logrus.Logger
	now func() time.Time
}

func NewAdminHandlers(facts FactStore, sessions SessionStore, forms FormStore, liveWindow time.Duration, log *logrus.Logger) *AdminHandlers {
	return &AdminHandlers{
		Facts:      facts,
		Sessions:   sessions,
		Forms:      forms,
		LiveWindow: liveWindow,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GetStats computes the composite windowed report. The period selector is
// constrained to {7d,30d,90d}; anything else silently falls back to the
// 7-day window while the raw selector is still echoed back.
func (h *AdminHandlers) GetStats(c *gin.Context) {
	period := c.DefaultQuery("period", "7d")
	now := h.now()
	startDate := utils.PeriodStart(period, now)

	ctx, cancel := contextWithTimeout(c, 15*time.Second)
	defer cancel()

	totalPageViews, err := h.Facts.TotalPageViews(ctx, startDate)
	if err != nil {
		h.statsError(c, "total page views", err)
		return
	}

	uniqueVisitors, err := h.Facts.UniqueVisitors(ctx, startDate)
	if err != nil {
		h.statsError(c, "unique visitors", err)
		return
	}

	avgTime, err := h.Facts.AverageTimeOnPage(ctx, startDate)
	if err != nil {
		h.statsError(c, "average time on page", err)
		return
	}

	bounces, totalSessions, err := h.Sessions.BounceStats(ctx, startDate)
	if err != nil {
		h.statsError(c, "bounce stats", err)
		return
	}
	bounceRate := 0
	if totalSessions > 0 {
		bounceRate = int(math.Round(float64(bounces) / float64(totalSessions) * 100))
	}

	topPages, err := h.Facts.TopPages(ctx, startDate, topPagesLimit)
	if err != nil {
		h.statsError(c, "top pages", err)
		return
	}
	if topPages == nil {
		topPages = []models.PageCount{}
	}

	formCounts, err := h.Forms.CountsByType(ctx, startDate)
	if err != nil {
		h.statsError(c, "form submission counts", err)
		return
	}
	if formCounts == nil {
		formCounts = map[string]int64{}
	}
	var totalSignups int64
	for _, count := range formCounts {
		totalSignups += count
	}

	referrerCounts, err := h.Facts.ReferrerCounts(ctx, startDate)
	if err != nil {
		h.statsError(c, "traffic sources", err)
		return
	}

	overTime, err := h.Facts.DailyPageViews(ctx, startDate)
	if err != nil {
		h.statsError(c, "page views over time", err)
		return
	}
	if overTime == nil {
		overTime = []models.DailyCount{}
	}

	recentSignups, err := h.Forms.Recent(ctx, startDate, recentSignupsLimit)
	if err != nil {
		h.statsError(c, "recent signups", err)
		return
	}
	if recentSignups == nil {
		recentSignups = []models.SignupRecord{}
	}

	report := models.StatsReport{
		Period:    period,
		StartDate: startDate,
		Metrics: models.StatsMetrics{
			TotalPageViews: totalPageViews,
			UniqueVisitors: uniqueVisitors,
			AvgTimeOnSite:  int(math.Round(avgTime)),
			BounceRate:     bounceRate,
			TotalSignups:   totalSignups,
		},
		TopPages:          topPages,
		FormSubmissions:   formCounts,
		TrafficSources:    utils.BucketSources(referrerCounts),
		PageViewsOverTime: overTime,
		RecentSignups:     recentSignups,
	}

	c.JSON(http.StatusOK, report)
}

func (h *AdminHandlers) statsError(c *gin.Context, metric string, err error) {
	h.log.WithError(err).WithField("metric", metric).Error("Failed to compute stats report")
	writeError(c, apperrors.Store(err))
}

// GetRealtime returns the count of sessions seen within the live window.
func (h *AdminHandlers) GetRealtime(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	liveCount, err := h.Sessions.LiveCount(ctx, h.now().Add(-h.LiveWindow))
	if err != nil {
		h.log.WithError(err).Error("Failed to count live sessions")
		writeError(c, apperrors.Store(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"liveCount": liveCount})
}

// ExportSignups streams every matching form submission as a CSV download,
// named by type and export date.
func (h *AdminHandlers) ExportSignups(c *gin.Context) {
	formType := c.DefaultQuery("formType", "all")

	ctx, cancel := contextWithTimeout(c, 15*time.Second)
	defer cancel()

	records, err := h.Forms.ListForExport(ctx, formType)
	if err != nil {
		h.log.WithError(err).WithField("formType", formType).Error("Failed to export signups")
		writeError(c, apperrors.Store(err))
		return
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"ID", "Form Type", "Email", "Name", "Role", "Created At"})
	for _, rec := range records {
		_ = w.Write([]string{
			strconv.FormatInt(rec.ID, 10),
			rec.FormType,
			rec.Email,
			stringOrEmpty(rec.Name),
			stringOrEmpty(rec.Role),
			rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		h.log.WithError(err).Error("Failed to render signups CSV")
		writeError(c, apperrors.Store(err))
		return
	}

	filename := fmt.Sprintf("signups-%s-%s.csv", formType, h.now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
