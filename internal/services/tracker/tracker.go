package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/remote/accountapi"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/entitlements"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/points"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/services/reconcile"
	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/session"
)

var (
	ErrValidation = errors.New("validation error")
	// ErrRemoteWrite is returned when a write that must be confirmed
	// remotely (a points debit, a purchase) could not be completed. The
	// caller must not assume anything was spent.
	ErrRemoteWrite = errors.New("remote write failed")
)

// UnlimitedQuota is the RemainingQuota value for roles without limits.
const UnlimitedQuota = -1

// Recorder is the achievement side-channel; calls must never block the
// attempt path.
type Recorder interface {
	Record(userID int64, category enums.ActionCategory)
}

// Result is the outcome of one generation attempt.
type Result struct {
	Allowed        bool
	Mode           enums.AccountingMode
	Reason         string
	RequestID      string
	PointsBalance  int
	RemainingQuota int
}

// Service is the single entry point called per generation attempt. It
// sequences entitlement check, remote usage record or points debit,
// optimistic local counter update and the best-effort achievement call.
type Service struct {
	engine       *entitlements.Engine
	remote       accountapi.Service
	achievements Recorder
	log          *zap.Logger

	newRequestID     func() string
	reconcileTimeout time.Duration
}

func NewService(engine *entitlements.Engine, remote accountapi.Service, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		engine:           engine,
		remote:           remote,
		log:              log,
		newRequestID:     uuid.NewString,
		reconcileTimeout: 30 * time.Second,
	}
}

func (s *Service) AttachAchievements(recorder Recorder) {
	s.achievements = recorder
}

// Attempt decides and meters one action. Denials come back as a Result
// with Allowed=false and no error; errors are reserved for remote writes
// that could not be confirmed.
func (s *Service) Attempt(ctx context.Context, sess *session.Session, category enums.ActionCategory, mode enums.AttemptMode) (Result, error) {
	if sess == nil || !category.Valid() {
		return Result{}, ErrValidation
	}
	if mode == "" {
		mode = enums.AttemptModeAuto
	}
	if !mode.Valid() {
		return Result{}, ErrValidation
	}

	sess.Touch()
	decision := s.engine.Check(sess.CheckInput(category, mode))
	if !decision.Allowed {
		return s.result(sess, category, Result{
			Mode:   enums.AccountingModeDenied,
			Reason: decision.Reason,
		}), nil
	}

	userID := sess.Account().UserID
	res := Result{Allowed: true, Mode: decision.Mode}

	switch decision.Mode {
	case enums.AccountingModePoints:
		requestID, err := s.debitPoints(ctx, sess, userID, category, decision.PointsCost)
		if err != nil {
			if errors.Is(err, points.ErrInsufficientBalance) {
				return s.result(sess, category, Result{
					Mode:   enums.AccountingModeDenied,
					Reason: entitlements.ReasonInsufficientPoints,
				}), nil
			}
			return Result{}, err
		}
		res.RequestID = requestID

	default:
		// Quota and unlimited actions are recorded remotely; a failed
		// record is tolerated — the user is not blocked, the counters are
		// bumped optimistically and reconciliation sorts it out.
		if err := s.remote.RecordUsage(ctx, userID, category); err != nil {
			s.log.Warn("record usage failed, keeping optimistic increment",
				zap.Int64("user_id", userID),
				zap.String("category", string(category)),
				zap.Error(err),
			)
		}
	}

	sess.Counters().Increment(category)

	if s.achievements != nil {
		s.achievements.Record(userID, category)
	}

	s.reconcileAsync(sess)
	return s.result(sess, category, res), nil
}

// debitPoints runs the at-most-once debit: local reservation first (the
// balance check happens before any remote call), then the remote debit.
// A remote failure rolls the reservation back so the user never pays for
// an action that did not happen.
func (s *Service) debitPoints(ctx context.Context, sess *session.Session, userID int64, category enums.ActionCategory, cost int) (string, error) {
	requestID := s.newRequestID()

	if _, err := sess.Ledger().TryDebit(requestID, cost, string(category)); err != nil {
		return "", err
	}

	newBalance, err := s.remote.DebitPoints(ctx, userID, cost, requestID, string(category))
	if err != nil {
		if rbErr := sess.Ledger().Rollback(requestID); rbErr != nil {
			s.log.Error("debit rollback failed",
				zap.Int64("user_id", userID),
				zap.String("request_id", requestID),
				zap.Error(rbErr),
			)
		}
		return "", fmt.Errorf("debit points: %w: %w", ErrRemoteWrite, err)
	}

	if err := sess.Ledger().Settle(requestID); err != nil {
		s.log.Error("debit settle failed",
			zap.Int64("user_id", userID),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
	}
	sess.Ledger().SetBalance(newBalance)
	return requestID, nil
}

// RemainingQuota reports how many more actions of the category the session
// may take under its tariff today. UnlimitedQuota means no limit applies.
func (s *Service) RemainingQuota(sess *session.Session, category enums.ActionCategory) int {
	if sess == nil || !category.Valid() {
		return 0
	}

	d := s.engine.Check(sess.CheckInput(category, enums.AttemptModeAuto))
	if d.Mode == enums.AccountingModeUnlimited {
		return UnlimitedQuota
	}
	if d.DailyLimit <= 0 {
		return 0
	}

	left := d.DailyLimit - sess.Counters().Snapshot().Daily(category)
	if left < 0 {
		left = 0
	}
	return left
}

func (s *Service) PointsBalance(sess *session.Session) int {
	if sess == nil {
		return 0
	}
	return sess.Ledger().Balance()
}

// RenewalQuote reports the points price of renewing the session's tariff.
// Recently expired tariffs are still quotable for a grace window.
func (s *Service) RenewalQuote(sess *session.Session) (enums.TariffType, int, bool) {
	if sess == nil {
		return enums.TariffTypeNone, 0, false
	}
	return s.engine.RenewalCost(sess.Tariff())
}

// ForceReconcile runs one synchronous reconciliation against the account
// service. Superseded results are not an error to the caller.
func (s *Service) ForceReconcile(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return ErrValidation
	}
	err := sess.Reconciler().Sync(ctx, sess.Account().UserID, sess.ApplySnapshot)
	if err != nil && !errors.Is(err, reconcile.ErrSuperseded) {
		return err
	}
	return nil
}

// PurchaseTariff buys a tariff through the account service and applies the
// local effects: the new tariff is active immediately and the daily
// allotment is reset.
func (s *Service) PurchaseTariff(ctx context.Context, sess *session.Session, tariff enums.TariffType) error {
	if sess == nil || tariff.IsZero() {
		return ErrValidation
	}

	userID := sess.Account().UserID
	if err := s.remote.PurchaseTariff(ctx, userID, tariff); err != nil {
		return fmt.Errorf("purchase tariff: %w: %w", ErrRemoteWrite, err)
	}

	// ValidUntil is unknown until the next reconciliation; the purchase is
	// treated as active with no expiry in the meantime.
	sess.ApplyTariffPurchase(tariff, nil)
	s.reconcileAsync(sess)
	return nil
}

// PurchasePoints credits the points ledger through the account service.
func (s *Service) PurchasePoints(ctx context.Context, sess *session.Session, amount int) (int, error) {
	if sess == nil || amount <= 0 {
		return 0, ErrValidation
	}

	userID := sess.Account().UserID
	source := "purchase:" + s.newRequestID()
	newBalance, err := s.remote.CreditPoints(ctx, userID, amount, source)
	if err != nil {
		return 0, fmt.Errorf("credit points: %w: %w", ErrRemoteWrite, err)
	}

	if _, err := sess.Ledger().Credit(amount, source); err != nil {
		return 0, err
	}
	if sess.Ledger().Balance() != newBalance {
		sess.Ledger().SetBalance(newBalance)
	}

	s.reconcileAsync(sess)
	return sess.Ledger().Balance(), nil
}

// ResetCounters performs an administrative daily reset confirmed by the
// account service.
func (s *Service) ResetCounters(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return ErrValidation
	}

	if _, err := s.remote.ResetUsageCounters(ctx, sess.Account().UserID); err != nil {
		return fmt.Errorf("reset usage counters: %w: %w", ErrRemoteWrite, err)
	}

	sess.Counters().ResetDaily()
	s.reconcileAsync(sess)
	return nil
}

// reconcileAsync kicks a post-mutation reconciliation in the background.
// The attempt path never waits on the retry loop.
func (s *Service) reconcileAsync(sess *session.Session) {
	userID := sess.Account().UserID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.reconcileTimeout)
		defer cancel()

		err := sess.Reconciler().Sync(ctx, userID, sess.ApplySnapshot)
		if err != nil && !errors.Is(err, reconcile.ErrSuperseded) {
			s.log.Debug("background reconcile failed",
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}()
}

func (s *Service) result(sess *session.Session, category enums.ActionCategory, res Result) Result {
	res.PointsBalance = sess.Ledger().Balance()
	res.RemainingQuota = s.RemainingQuota(sess, category)
	return res
}
