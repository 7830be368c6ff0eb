// api/handlers/track_handlers.go
package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"brightside/api/apperrors"
	"brightside/api/models"
)

// Basic shape check only; real validation happens when the address is used.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validFormTypes = map[string]bool{
	"hero_signup":  true,
	"contact_form": true,
	"gala_mailing": true,
}

// TrackHandlers owns the three ingestion endpoints. The client tracking
// agent is untrusted and fire-and-forget: requests may arrive duplicated,
// reordered, or not at all, and nothing here depends on their order.
type TrackHandlers struct {
	Facts       FactStore
	Sessions    SessionStore
	Forms       FormStore
	DedupWindow time.Duration

	log *logrus.Logger
	now func() time.Time
}

func NewTrackHandlers(facts FactStore, sessions SessionStore, forms FormStore, dedupWindow time.Duration, log *logrus.Logger) *TrackHandlers {
	return &TrackHandlers{
		Facts:       facts,
		Sessions:    sessions,
		Forms:       forms,
		DedupWindow: dedupWindow,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

type trackPageViewRequest struct {
	SessionID   string `json:"sessionId"`
	PagePath    string `json:"pagePath"`
	Referrer    string `json:"referrer"`
	UserAgent   string `json:"userAgent"`
	ScreenWidth *int32 `json:"screenWidth"`
}

// TrackPageView appends a page view fact row and upserts the session row.
// The two writes are independent: a session upsert failure after a
// successful fact insert leaves the fact in place and reports a 500. The
// client does not retry, so that inconsistency is accepted rather than
// rolled back.
func (h *TrackHandlers) TrackPageView(c *gin.Context) {
	var req trackPageViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation("Invalid request body"))
		return
	}

	if req.SessionID == "" || req.PagePath == "" {
		writeError(c, apperrors.Validation("Missing required fields"))
		return
	}

	now := h.now()
	view := models.PageView{
		ViewID:      uuid.New().String(),
		SessionID:   req.SessionID,
		PagePath:    req.PagePath,
		Referrer:    req.Referrer,
		UserAgent:   req.UserAgent,
		ScreenWidth: req.ScreenWidth,
		CreatedAt:   now,
	}

	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	if err := h.Facts.InsertPageView(ctx, view); err != nil {
		h.log.WithError(err).WithField("sessionId", req.SessionID).Error("Failed to insert page view")
		writeError(c, apperrors.Store(err))
		return
	}

	if err := h.Sessions.RecordPageView(ctx, req.SessionID, now); err != nil {
		h.log.WithError(err).WithField("sessionId", req.SessionID).Error("Page view recorded but session upsert failed")
		writeError(c, apperrors.Store(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type trackEventRequest struct {
	SessionID string          `json:"sessionId"`
	EventName string          `json:"eventName"`
	EventData json.RawMessage `json:"eventData"`
	PagePath  string          `json:"pagePath"`
}

// TrackEvent appends a custom event fact row and bumps the session's
// last_seen_at. An event whose session has no row yet is legal (network
// reordering can deliver it before the first page view); the touch then
// affects zero rows and no session is created.
func (h *TrackHandlers) TrackEvent(c *gin.Context) {
	var req trackEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation("Invalid request body"))
		return
	}

	if req.SessionID == "" || req.EventName == "" || req.PagePath == "" {
		writeError(c, apperrors.Validation("Missing required fields"))
		return
	}

	eventData := req.EventData
	if len(eventData) == 0 {
		eventData = json.RawMessage(`{}`)
	}

	now := h.now()
	event := models.AnalyticsEvent{
		EventID:   uuid.New().String(),
		EventName: req.EventName,
		EventData: eventData,
		SessionID: req.SessionID,
		PagePath:  req.PagePath,
		CreatedAt: now,
	}

	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	if err := h.Facts.InsertEvent(ctx, event); err != nil {
		h.log.WithError(err).WithFields(logrus.Fields{
			"sessionId": req.SessionID,
			"eventName": req.EventName,
		}).Error("Failed to insert analytics event")
		writeError(c, apperrors.Store(err))
		return
	}

	if err := h.Sessions.Touch(ctx, req.SessionID, now); err != nil {
		h.log.WithError(err).WithField("sessionId", req.SessionID).Error("Event recorded but session touch failed")
		writeError(c, apperrors.Store(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type submitFormRequest struct {
	FormType  string          `json:"formType"`
	Email     string          `json:"email"`
	Name      string          `json:"name"`
	Role      string          `json:"role"`
	SessionID string          `json:"sessionId"`
	Metadata  json.RawMessage `json:"metadata"`
}

// SubmitForm validates and stores one form submission. The same email and
// form type inside the dedup window is rejected with 429 so the client can
// back off; after the window the pair is accepted again.
func (h *TrackHandlers) SubmitForm(c *gin.Context) {
	var req submitFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperrors.Validation("Invalid request body"))
		return
	}

	if req.FormType == "" || req.Email == "" {
		writeError(c, apperrors.Validation("Missing required fields"))
		return
	}
	if !emailPattern.MatchString(req.Email) {
		writeError(c, apperrors.Validation("Invalid email format"))
		return
	}
	if !validFormTypes[req.FormType] {
		writeError(c, apperrors.Validation("Invalid form type"))
		return
	}

	now := h.now()

	ctx, cancel := contextWithTimeout(c, 10*time.Second)
	defer cancel()

	dup, err := h.Forms.HasRecent(ctx, req.Email, req.FormType, now.Add(-h.DedupWindow))
	if err != nil {
		h.log.WithError(err).WithField("formType", req.FormType).Error("Failed to check for duplicate submission")
		writeError(c, apperrors.Store(err))
		return
	}
	if dup {
		writeError(c, apperrors.Duplicate("Duplicate submission detected. Please wait before submitting again."))
		return
	}

	sub := models.FormSubmission{
		FormType:  req.FormType,
		Email:     req.Email,
		Name:      optionalString(req.Name),
		Role:      optionalString(req.Role),
		SessionID: optionalString(req.SessionID),
		Metadata:  req.Metadata,
		CreatedAt: now,
	}

	if err := h.Forms.Insert(ctx, sub); err != nil {
		h.log.WithError(err).WithField("formType", req.FormType).Error("Failed to insert form submission")
		writeError(c, apperrors.Store(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Form submitted successfully"})
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
