// api/store/fact_store.go
package store

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"brightside/api/database"
	"brightside/api/models"
)

// FactStore owns the append-only ClickHouse tables. Page views and custom
// events are inserted once and never updated; every aggregate is computed
// fresh from the fact rows at query time.
type FactStore struct {
	DB  *database.ClickHouseClient
	log *logrus.Logger
}

func NewFactStore(chClient *database.ClickHouseClient, log *logrus.Logger) *FactStore {
	return &FactStore{
		DB:  chClient,
		log: log,
	}
}

func (s *FactStore) InsertPageView(ctx context.Context, view models.PageView) error {
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO page_views (
			view_id, session_id, page_path, referrer, user_agent, screen_width, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare page view insert: %w", err)
	}

	err = batch.Append(
		view.ViewID,
		view.SessionID,
		view.PagePath,
		view.Referrer,
		view.UserAgent,
		view.ScreenWidth,
		view.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append page view %s: %w", view.ViewID, err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to insert page view: %w", err)
	}
	return nil
}

func (s *FactStore) InsertEvent(ctx context.Context, event models.AnalyticsEvent) error {
	batch, err := s.DB.Conn.PrepareBatch(ctx, `
		INSERT INTO analytics_events (
			event_id, event_name, event_data, session_id, page_path, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}

	err = batch.Append(
		event.EventID,
		event.EventName,
		string(event.EventData),
		event.SessionID,
		event.PagePath,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append event %s: %w", event.EventID, err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

func (s *FactStore) TotalPageViews(ctx context.Context, since time.Time) (uint64, error) {
	query := `SELECT count() FROM page_views WHERE created_at >= ?`

	var total uint64
	if err := s.DB.Conn.QueryRow(ctx, query, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count page views: %w", err)
	}
	return total, nil
}

func (s *FactStore) UniqueVisitors(ctx context.Context, since time.Time) (uint64, error) {
	query := `SELECT uniqExact(session_id) FROM page_views WHERE created_at >= ?`

	var unique uint64
	if err := s.DB.Conn.QueryRow(ctx, query, since).Scan(&unique); err != nil {
		return 0, fmt.Errorf("failed to count unique visitors: %w", err)
	}
	return unique, nil
}

// AverageTimeOnPage averages the numeric timeOnPage field of time_on_page
// events, in seconds. Sessions that never fire the event simply contribute
// no rows, so they are excluded from the denominator rather than counted
// as zero. ClickHouse's avg() returns NaN over zero rows, which does not
// survive JSON marshalling, so it collapses to 0 here.
func (s *FactStore) AverageTimeOnPage(ctx context.Context, since time.Time) (float64, error) {
	query := `
		SELECT avg(JSONExtractFloat(event_data, 'timeOnPage'))
		FROM analytics_events
		WHERE event_name = 'time_on_page'
		  AND JSONHas(event_data, 'timeOnPage')
		  AND created_at >= ?
	`

	var avg float64
	if err := s.DB.Conn.QueryRow(ctx, query, since).Scan(&avg); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return 0.0, nil
		}
		return 0.0, fmt.Errorf("failed to query average time on page: %w", err)
	}

	if math.IsNaN(avg) {
		return 0.0, nil
	}
	return avg, nil
}

func (s *FactStore) TopPages(ctx context.Context, since time.Time, limit uint64) ([]models.PageCount, error) {
	if limit == 0 {
		limit = 10
	}

	query := `
		SELECT page_path, count() AS view_count
		FROM page_views
		WHERE created_at >= ?
		GROUP BY page_path
		ORDER BY view_count DESC
		LIMIT ?
	`
	rows, err := s.DB.Conn.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top pages: %w", err)
	}
	defer rows.Close()

	var results []models.PageCount
	for rows.Next() {
		var pagePath string
		var count uint64
		if err := rows.Scan(&pagePath, &count); err != nil {
			s.log.WithError(err).Warn("Error scanning row for top pages")
			continue
		}
		results = append(results, models.PageCount{
			Path:  pagePath,
			Views: count,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for top pages: %w", err)
	}

	return results, nil
}

// ReferrerCounts returns raw page view counts per referrer string. The
// traffic-source bucketing happens in Go (utils.BucketSources) so the
// classification rules live in one testable place.
func (s *FactStore) ReferrerCounts(ctx context.Context, since time.Time) (map[string]uint64, error) {
	query := `
		SELECT referrer, count() AS view_count
		FROM page_views
		WHERE created_at >= ?
		GROUP BY referrer
	`
	rows, err := s.DB.Conn.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query referrer counts: %w", err)
	}
	defer rows.Close()

	results := make(map[string]uint64)
	for rows.Next() {
		var referrer string
		var count uint64
		if err := rows.Scan(&referrer, &count); err != nil {
			s.log.WithError(err).Warn("Error scanning row for referrer counts")
			continue
		}
		results[referrer] += count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for referrer counts: %w", err)
	}

	return results, nil
}

// DailyPageViews buckets page views by UTC calendar date, ascending.
func (s *FactStore) DailyPageViews(ctx context.Context, since time.Time) ([]models.DailyCount, error) {
	query := `
		SELECT toDate(created_at) AS day, count() AS view_count
		FROM page_views
		WHERE created_at >= ?
		GROUP BY day
		ORDER BY day ASC
	`
	rows, err := s.DB.Conn.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily page views: %w", err)
	}
	defer rows.Close()

	var results []models.DailyCount
	for rows.Next() {
		var day time.Time
		var count uint64
		if err := rows.Scan(&day, &count); err != nil {
			s.log.WithError(err).Warn("Error scanning row for daily page views")
			continue
		}
		results = append(results, models.DailyCount{
			Date:  day.Format("2006-01-02"),
			Views: count,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for daily page views: %w", err)
	}

	return results, nil
}
