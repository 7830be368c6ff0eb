// api/models/analytics.go
package models

import (
	"encoding/json"
	"time"
)

// PageView is an immutable fact row: one per page load reported by a client.
type PageView struct {
	ViewID      string    `json:"viewId"`
	SessionID   string    `json:"sessionId"`
	PagePath    string    `json:"pagePath"`
	Referrer    string    `json:"referrer"`
	UserAgent   string    `json:"userAgent"`
	ScreenWidth *int32    `json:"screenWidth,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AnalyticsEvent is an immutable fact row: one per tracked interaction
// (scroll depth, clicks, time_on_page). EventData shape depends on EventName.
type AnalyticsEvent struct {
	EventID   string          `json:"eventId"`
	EventName string          `json:"eventName"`
	EventData json.RawMessage `json:"eventData,omitempty"`
	SessionID string          `json:"sessionId"`
	PagePath  string          `json:"pagePath"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Session is the mutable aggregate, one row per distinct client-generated
// session identifier. IsBounce means the session never recorded more than one
// page view over its whole lifetime; once false it never reverts.
type Session struct {
	SessionID   string    `json:"sessionId"`
	FirstSeenAt time.Time `json:"firstSeenAt"`
	LastSeenAt  time.Time `json:"lastSeenAt"`
	PageCount   int       `json:"pageCount"`
	IsBounce    bool      `json:"isBounce"`
}

// FormSubmission is an immutable fact row for a marketing form submit.
// Optional fields are nil when the client omitted them.
type FormSubmission struct {
	FormType  string          `json:"formType"`
	Email     string          `json:"email"`
	Name      *string         `json:"name,omitempty"`
	Role      *string         `json:"role,omitempty"`
	SessionID *string         `json:"sessionId,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// SignupRecord is the reporting/export projection of a stored form submission.
type SignupRecord struct {
	ID        int64     `json:"id"`
	FormType  string    `json:"formType"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	Role      *string   `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type PageCount struct {
	Path  string `json:"path"`
	Views uint64 `json:"views"`
}

type SourceCount struct {
	Source string `json:"source"`
	Count  uint64 `json:"count"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Views uint64 `json:"views"`
}

// StatsMetrics are the headline numbers of the windowed report.
type StatsMetrics struct {
	TotalPageViews uint64 `json:"totalPageViews"`
	UniqueVisitors uint64 `json:"uniqueVisitors"`
	AvgTimeOnSite  int    `json:"avgTimeOnSite"`
	BounceRate     int    `json:"bounceRate"`
	TotalSignups   int64  `json:"totalSignups"`
}

// StatsReport is the composite windowed report returned by the stats endpoint.
// Every sub-metric is computed fresh from the fact tables on each call.
type StatsReport struct {
	Period            string           `json:"period"`
	StartDate         time.Time        `json:"startDate"`
	Metrics           StatsMetrics     `json:"metrics"`
	TopPages          []PageCount      `json:"topPages"`
	FormSubmissions   map[string]int64 `json:"formSubmissions"`
	TrafficSources    []SourceCount    `json:"trafficSources"`
	PageViewsOverTime []DailyCount     `json:"pageViewsOverTime"`
	RecentSignups     []SignupRecord   `json:"recentSignups"`
}
