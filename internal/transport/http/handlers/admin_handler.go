package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/tracker"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/session"
	httperrors "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/transport/http/errors"
)

type AdminHandler struct {
	tracker  *tracker.Service
	sessions *session.Manager
}

func NewAdminHandler(tracker *tracker.Service, sessions *session.Manager) *AdminHandler {
	return &AdminHandler{tracker: tracker, sessions: sessions}
}

// ResetUsage zeroes the daily counters of the target user, confirmed by the
// account service.
func (h *AdminHandler) ResetUsage(w http.ResponseWriter, r *http.Request) {
	if h.tracker == nil || h.sessions == nil {
		writeInternal(w, "METERING_SERVICE_UNAVAILABLE", "metering service is unavailable")
		return
	}

	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || userID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	sess := h.sessions.GetOrCreate(userID, enums.RoleUser)
	if err := h.tracker.ResetCounters(r.Context(), sess); err != nil {
		handlePurchaseError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, map[string]bool{"ok": true})
}
