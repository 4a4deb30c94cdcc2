package accountapi

import (
	"context"
	"errors"
	"time"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
)

var (
	// ErrUnavailable covers transport failures, non-2xx statuses and
	// malformed payloads. They are all the same to callers: the answer is
	// not usable and the call may be retried.
	ErrUnavailable = errors.New("account service unavailable")
	// ErrRejected means the service understood the request and refused it;
	// retrying will not help.
	ErrRejected = errors.New("account service rejected request")
)

// LimitInfo is the authoritative per-tariff limit row as the account
// service reports it.
type LimitInfo struct {
	DailyGenerationLimit int
	DailyImageLimit      int
	PointsCost           int
}

// TariffInfo is the remote tariff record. Limits is nil when the service
// has no limit metadata for the tariff; callers degrade to the fallback
// table in that case.
type TariffInfo struct {
	Type       enums.TariffType
	ValidUntil *time.Time
	Limits     *LimitInfo
	Points     int
}

type UsageStats struct {
	DailyGenerations int
	DailyImages      int
	TotalGenerations int
	TotalImages      int
	LastActive       time.Time
}

type DailyCounts struct {
	DailyGenerations int
	DailyImages      int
}

// Service is the client-side contract against the remote account service
// that owns durable tariff, usage and points state.
type Service interface {
	GetTariffInfo(ctx context.Context, userID int64) (TariffInfo, error)
	GetUsageStats(ctx context.Context, userID int64) (UsageStats, error)
	RecordUsage(ctx context.Context, userID int64, category enums.ActionCategory) error
	DebitPoints(ctx context.Context, userID int64, amount int, requestID, reason string) (int, error)
	CreditPoints(ctx context.Context, userID int64, amount int, source string) (int, error)
	ResetUsageCounters(ctx context.Context, userID int64) (DailyCounts, error)
	PurchaseTariff(ctx context.Context, userID int64, tariff enums.TariffType) error
}
