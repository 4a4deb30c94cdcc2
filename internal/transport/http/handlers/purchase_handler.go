package handlers

import (
	"errors"
	"net/http"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
	authsvc "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/auth"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/tracker"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/session"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/transport/http/dto"
	httperrors "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/transport/http/errors"
)

type PurchaseHandler struct {
	tracker  *tracker.Service
	sessions *session.Manager
}

func NewPurchaseHandler(tracker *tracker.Service, sessions *session.Manager) *PurchaseHandler {
	return &PurchaseHandler{tracker: tracker, sessions: sessions}
}

func (h *PurchaseHandler) Tariff(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.tracker == nil || h.sessions == nil {
		writeInternal(w, "METERING_SERVICE_UNAVAILABLE", "metering service is unavailable")
		return
	}

	var req dto.TariffPurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	sess := h.sessions.GetOrCreate(identity.UserID, enums.Role(identity.Role))
	if err := h.tracker.PurchaseTariff(r.Context(), sess, enums.TariffType(req.Tariff)); err != nil {
		handlePurchaseError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.TariffPurchaseResponse{
		OK:     true,
		Tariff: req.Tariff,
	})
}

func (h *PurchaseHandler) Points(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.tracker == nil || h.sessions == nil {
		writeInternal(w, "METERING_SERVICE_UNAVAILABLE", "metering service is unavailable")
		return
	}

	var req dto.PointsPurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	sess := h.sessions.GetOrCreate(identity.UserID, enums.Role(identity.Role))
	balance, err := h.tracker.PurchasePoints(r.Context(), sess, req.Amount)
	if err != nil {
		handlePurchaseError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.PointsPurchaseResponse{
		OK:      true,
		Balance: balance,
	})
}

func handlePurchaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tracker.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid purchase request")
	case errors.Is(err, tracker.ErrRemoteWrite):
		writeBadGateway(w, "ACCOUNT_SERVICE_UNAVAILABLE", "failed to confirm the purchase")
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to process purchase")
	}
}
