package handlers

import (
	"bytes"
	"context"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"

	"brightside/api/models"
)

type fakeFactStore struct {
	pageViews []models.PageView
	events    []models.AnalyticsEvent

	insertPageViewErr error
	insertEventErr    error
	queryErr          error

	totalPageViews uint64
	uniqueVisitors uint64
	avgTimeOnPage  float64
	topPages       []models.PageCount
	referrerCounts map[string]uint64
	daily          []models.DailyCount

	lastSince time.Time
}

func (f *fakeFactStore) InsertPageView(_ context.Context, view models.PageView) error {
	if f.insertPageViewErr != nil {
		return f.insertPageViewErr
	}
	f.pageViews = append(f.pageViews, view)
	return nil
}

func (f *fakeFactStore) InsertEvent(_ context.Context, event models.AnalyticsEvent) error {
	if f.insertEventErr != nil {
		return f.insertEventErr
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeFactStore) TotalPageViews(_ context.Context, since time.Time) (uint64, error) {
	f.lastSince = since
	return f.totalPageViews, f.queryErr
}

func (f *fakeFactStore) UniqueVisitors(_ context.Context, since time.Time) (uint64, error) {
	return f.uniqueVisitors, f.queryErr
}

func (f *fakeFactStore) AverageTimeOnPage(_ context.Context, since time.Time) (float64, error) {
	return f.avgTimeOnPage, f.queryErr
}

func (f *fakeFactStore) TopPages(_ context.Context, since time.Time, limit uint64) ([]models.PageCount, error) {
	return f.topPages, f.queryErr
}

func (f *fakeFactStore) ReferrerCounts(_ context.Context, since time.Time) (map[string]uint64, error) {
	return f.referrerCounts, f.queryErr
}

func (f *fakeFactStore) DailyPageViews(_ context.Context, since time.Time) ([]models.DailyCount, error) {
	return f.daily, f.queryErr
}

type fakeSessionStore struct {
	recorded []string
	touched  []string
	lastNow  time.Time

	recordErr error
	touchErr  error

	liveCount     int64
	lastLiveSince time.Time
	liveErr       error

	bounces    int64
	total      int64
	bounceErr  error
	statsSince time.Time
}

func (f *fakeSessionStore) RecordPageView(_ context.Context, sessionID string, now time.Time) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.recorded = append(f.recorded, sessionID)
	f.lastNow = now
	return nil
}

func (f *fakeSessionStore) Touch(_ context.Context, sessionID string, now time.Time) error {
	if f.touchErr != nil {
		return f.touchErr
	}
	f.touched = append(f.touched, sessionID)
	f.lastNow = now
	return nil
}

func (f *fakeSessionStore) LiveCount(_ context.Context, since time.Time) (int64, error) {
	f.lastLiveSince = since
	return f.liveCount, f.liveErr
}

func (f *fakeSessionStore) BounceStats(_ context.Context, since time.Time) (int64, int64, error) {
	f.statsSince = since
	return f.bounces, f.total, f.bounceErr
}

type fakeFormStore struct {
	hasRecent       bool
	hasRecentCalls  int
	lastRecentSince time.Time
	hasRecentErr    error

	inserted  []models.FormSubmission
	insertErr error

	counts map[string]int64
	recent []models.SignupRecord

	exportRecords  []models.SignupRecord
	exportFormType string
	queryErr       error
}

func (f *fakeFormStore) HasRecent(_ context.Context, email, formType string, since time.Time) (bool, error) {
	f.hasRecentCalls++
	f.lastRecentSince = since
	return f.hasRecent, f.hasRecentErr
}

func (f *fakeFormStore) Insert(_ context.Context, sub models.FormSubmission) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, sub)
	return nil
}

func (f *fakeFormStore) CountsByType(_ context.Context, since time.Time) (map[string]int64, error) {
	return f.counts, f.queryErr
}

func (f *fakeFormStore) Recent(_ context.Context, since time.Time, limit int) ([]models.SignupRecord, error) {
	return f.recent, f.queryErr
}

func (f *fakeFormStore) ListForExport(_ context.Context, formType string) ([]models.SignupRecord, error) {
	f.exportFormType = formType
	return f.exportRecords, f.queryErr
}

func newTestRouter(method, path string, fn gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Handle(method, path, fn)
	return r
}

func perform(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
}

var _ FactStore = (*fakeFactStore)(nil)
var _ SessionStore = (*fakeSessionStore)(nil)
var _ FormStore = (*fakeFormStore)(nil)
