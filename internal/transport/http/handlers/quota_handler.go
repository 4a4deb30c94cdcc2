package handlers

import (
	"net/http"
	"time"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/rules"
	authsvc "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/auth"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/tracker"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/session"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/transport/http/dto"
	httperrors "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/transport/http/errors"
)

type QuotaHandler struct {
	tracker  *tracker.Service
	sessions *session.Manager
	location *time.Location
}

func NewQuotaHandler(tracker *tracker.Service, sessions *session.Manager, location *time.Location) *QuotaHandler {
	if location == nil {
		location = time.UTC
	}
	return &QuotaHandler{tracker: tracker, sessions: sessions, location: location}
}

func (h *QuotaHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.tracker == nil || h.sessions == nil {
		writeInternal(w, "METERING_SERVICE_UNAVAILABLE", "metering service is unavailable")
		return
	}

	category := enums.ActionCategory(r.URL.Query().Get("category"))
	if category == "" {
		category = enums.ActionCategoryGeneration
	}
	if !category.Valid() {
		writeBadRequest(w, "VALIDATION_ERROR", "unknown action category")
		return
	}

	sess := h.sessions.GetOrCreate(identity.UserID, enums.Role(identity.Role))
	remaining := h.tracker.RemainingQuota(sess, category)

	httperrors.Write(w, http.StatusOK, dto.QuotaResponse{
		Category:  string(category),
		Remaining: remaining,
		Unlimited: remaining == tracker.UnlimitedQuota,
		ResetAt:   rules.NextResetAt(time.Now(), h.location),
	})
}
