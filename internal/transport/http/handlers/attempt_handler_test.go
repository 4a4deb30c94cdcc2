package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/config"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/remote/accountapi"
	authsvc "github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/auth"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/entitlements"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/reconcile"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/tariffs"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/tracker"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/usage"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/session"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/transport/http/dto"
)

type remoteStub struct{}

func (remoteStub) GetTariffInfo(ctx context.Context, userID int64) (accountapi.TariffInfo, error) {
	return accountapi.TariffInfo{}, accountapi.ErrUnavailable
}

func (remoteStub) GetUsageStats(ctx context.Context, userID int64) (accountapi.UsageStats, error) {
	return accountapi.UsageStats{}, accountapi.ErrUnavailable
}

func (remoteStub) RecordUsage(ctx context.Context, userID int64, category enums.ActionCategory) error {
	return nil
}

func (remoteStub) DebitPoints(ctx context.Context, userID int64, amount int, requestID, reason string) (int, error) {
	return 0, accountapi.ErrUnavailable
}

func (remoteStub) CreditPoints(ctx context.Context, userID int64, amount int, source string) (int, error) {
	return 0, accountapi.ErrUnavailable
}

func (remoteStub) ResetUsageCounters(ctx context.Context, userID int64) (accountapi.DailyCounts, error) {
	return accountapi.DailyCounts{}, accountapi.ErrUnavailable
}

func (remoteStub) PurchaseTariff(ctx context.Context, userID int64, tariff enums.TariffType) error {
	return accountapi.ErrUnavailable
}

func newAttemptFixture(t *testing.T) (*AttemptHandler, *session.Manager) {
	t.Helper()

	catalog := tariffs.New(config.MeteringConfig{
		Tariffs: []config.TariffConfig{
			{Type: "basic", DailyGenerationLimit: 6, DailyImageLimit: 3, PointsCost: 10},
		},
		PointsCosts: config.PointsCosts{Generation: 8, Image: 15},
	})
	policy := reconcile.RetryPolicy{
		MaxAttempts:  1,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
	}
	sessions := session.NewManager(remoteStub{}, policy, zap.NewNop())
	svc := tracker.NewService(entitlements.NewEngine(catalog), remoteStub{}, zap.NewNop())

	return NewAttemptHandler(svc, sessions, nil), sessions
}

func seedSession(sessions *session.Manager, userID int64, dailyGenerations int) {
	until := time.Now().Add(time.Hour)
	sess := sessions.GetOrCreate(userID, enums.RoleUser)
	sess.ApplySnapshot(reconcile.Snapshot{
		Tariff: entitlements.TariffState{Type: enums.TariffTypeBasic, ValidUntil: &until},
		Usage:  usage.ServerSnapshot{DailyGenerations: dailyGenerations, TotalGenerations: dailyGenerations},
	})
}

func attemptRequest(body string, identity *authsvc.Identity) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/metering/attempt", strings.NewReader(body))
	if identity != nil {
		req = req.WithContext(authsvc.WithIdentity(req.Context(), *identity))
	}
	return req
}

func TestAttemptHandlerRequiresAuth(t *testing.T) {
	handler, _ := newAttemptFixture(t)

	rec := httptest.NewRecorder()
	handler.Handle(rec, attemptRequest(`{"category":"generation"}`, nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAttemptHandlerAllowsWithinQuota(t *testing.T) {
	handler, sessions := newAttemptFixture(t)
	seedSession(sessions, 42, 0)

	rec := httptest.NewRecorder()
	handler.Handle(rec, attemptRequest(`{"category":"generation"}`, &authsvc.Identity{UserID: 42, Role: "user"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.AttemptResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Allowed || resp.Mode != "tariff_quota" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.RemainingQuota != 5 {
		t.Fatalf("expected 5 remaining, got %d", resp.RemainingQuota)
	}
}

func TestAttemptHandlerDeniesAtLimit(t *testing.T) {
	handler, sessions := newAttemptFixture(t)
	seedSession(sessions, 42, 6)

	rec := httptest.NewRecorder()
	handler.Handle(rec, attemptRequest(`{"category":"generation"}`, &authsvc.Identity{UserID: 42, Role: "user"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp dto.AttemptResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Allowed || resp.Reason == "" {
		t.Fatalf("expected reasoned denial, got %+v", resp)
	}
}

func TestAttemptHandlerRejectsUnknownCategory(t *testing.T) {
	handler, sessions := newAttemptFixture(t)
	seedSession(sessions, 42, 0)

	rec := httptest.NewRecorder()
	handler.Handle(rec, attemptRequest(`{"category":"video"}`, &authsvc.Identity{UserID: 42, Role: "user"}))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAttemptHandlerSurfacesFailedDebit(t *testing.T) {
	handler, sessions := newAttemptFixture(t)
	seedSession(sessions, 42, 6)
	sessions.GetOrCreate(42, enums.RoleUser).Ledger().SetBalance(50)

	rec := httptest.NewRecorder()
	handler.Handle(rec, attemptRequest(`{"category":"generation","mode":"force_points"}`, &authsvc.Identity{UserID: 42, Role: "user"}))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 when the debit cannot be confirmed, got %d", rec.Code)
	}
}
