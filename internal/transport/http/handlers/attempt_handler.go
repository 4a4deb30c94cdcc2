package handlers

import (
	"errors"
	"net/http"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
	authsvc "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/auth"
	ratesvc "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/rate"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/tracker"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/session"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/transport/http/dto"
	httperrors "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/transport/http/errors"
)

type AttemptHandler struct {
	tracker  *tracker.Service
	sessions *session.Manager
	limiter  *ratesvc.Limiter
}

func NewAttemptHandler(tracker *tracker.Service, sessions *session.Manager, limiter *ratesvc.Limiter) *AttemptHandler {
	return &AttemptHandler{tracker: tracker, sessions: sessions, limiter: limiter}
}

func (h *AttemptHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.tracker == nil || h.sessions == nil {
		writeInternal(w, "METERING_SERVICE_UNAVAILABLE", "metering service is unavailable")
		return
	}

	var req dto.AttemptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	if h.limiter != nil {
		retryAfter, allowed, err := h.limiter.AllowAttempt(r.Context(), identity.UserID)
		if err != nil {
			writeInternal(w, "RATE_LIMITER_ERROR", "failed to check attempt rate")
			return
		}
		if !allowed {
			httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
				Code:          "TOO_MANY_ATTEMPTS",
				Message:       "attempt rate limit exceeded",
				RetryAfterSec: retryAfter,
			})
			return
		}
	}

	sess := h.sessions.GetOrCreate(identity.UserID, enums.Role(identity.Role))
	result, err := h.tracker.Attempt(r.Context(), sess, enums.ActionCategory(req.Category), enums.AttemptMode(req.Mode))
	if err != nil {
		switch {
		case errors.Is(err, tracker.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid attempt request")
		case errors.Is(err, tracker.ErrRemoteWrite):
			writeBadGateway(w, "ACCOUNT_SERVICE_UNAVAILABLE", "failed to confirm the attempt")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to process attempt")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AttemptResponse{
		Allowed:        result.Allowed,
		Mode:           string(result.Mode),
		Reason:         result.Reason,
		RequestID:      result.RequestID,
		PointsBalance:  result.PointsBalance,
		RemainingQuota: result.RemainingQuota,
	})
}
