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

type PointsHandler struct {
	tracker  *tracker.Service
	sessions *session.Manager
}

func NewPointsHandler(tracker *tracker.Service, sessions *session.Manager) *PointsHandler {
	return &PointsHandler{tracker: tracker, sessions: sessions}
}

func (h *PointsHandler) Handle(w http.ResponseWriter, r *http.Request) {
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
	resp := dto.PointsResponse{Balance: h.tracker.PointsBalance(sess)}
	if tariff, cost, ok := h.tracker.RenewalQuote(sess); ok {
		resp.RenewalTariff = string(tariff)
		resp.RenewalCost = cost
	}
	httperrors.Write(w, http.StatusOK, resp)
}
