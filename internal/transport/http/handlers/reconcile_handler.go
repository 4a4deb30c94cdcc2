package handlers

import (
	"net/http"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
	authsvc "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/auth"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/tracker"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/session"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/transport/http/dto"
	httperrors "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/transport/http/errors"
)

type ReconcileHandler struct {
	tracker  *tracker.Service
	sessions *session.Manager
}

func NewReconcileHandler(tracker *tracker.Service, sessions *session.Manager) *ReconcileHandler {
	return &ReconcileHandler{tracker: tracker, sessions: sessions}
}

// Handle forces a synchronous reconciliation. Even when the account service
// stays unreachable the session remains usable on fallback limits, so a
// degraded outcome is reported with the state rather than an error status.
func (h *ReconcileHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.tracker == nil || h.sessions == nil {
		writeInternal(w, "METERING_SERVICE_UNAVAILABLE", "metering service is unavailable")
		return
	}

	sess := h.sessions.GetOrCreate(identity.UserID, enums.Role(identity.Role))
	_ = h.tracker.ForceReconcile(r.Context(), sess)

	httperrors.Write(w, http.StatusOK, dto.ReconcileResponse{
		State: string(sess.Reconciler().State()),
	})
}
