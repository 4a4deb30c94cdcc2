package points

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrInsufficientBalance = errors.New("insufficient points balance")
	ErrAlreadyDebited      = errors.New("request already debited")
	ErrUnknownRequest      = errors.New("unknown debit request")
)

// Entry is one row of the append-only transaction log. Delta is negative
// for debits and positive for credits and refunds.
type Entry struct {
	RequestID    string
	Delta        int
	BalanceAfter int
	At           time.Time
	Reason       string
}

// Ledger is the session-local points balance. Debits are keyed by request id
// so a retried request can never charge twice: the second TryDebit with an
// id that is already pending or settled returns ErrAlreadyDebited without
// touching the balance.
type Ledger struct {
	mu      sync.Mutex
	balance int
	pending map[string]int
	settled map[string]int
	log     []Entry
	now     func() time.Time
}

func NewLedger(balance int) *Ledger {
	if balance < 0 {
		balance = 0
	}
	return &Ledger{
		balance: balance,
		pending: make(map[string]int),
		settled: make(map[string]int),
		now:     time.Now,
	}
}

// TryDebit reserves amount against the balance under requestID. The debit
// is pending until Settle or Rollback. The balance check happens here,
// before any remote call is made.
func (l *Ledger) TryDebit(requestID string, amount int, reason string) (int, error) {
	if strings.TrimSpace(requestID) == "" || amount <= 0 {
		return 0, ErrValidation
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.pending[requestID]; ok {
		return l.balance, ErrAlreadyDebited
	}
	if _, ok := l.settled[requestID]; ok {
		return l.balance, ErrAlreadyDebited
	}
	if amount > l.balance {
		return l.balance, ErrInsufficientBalance
	}

	l.balance -= amount
	l.pending[requestID] = amount
	l.append(Entry{
		RequestID:    requestID,
		Delta:        -amount,
		BalanceAfter: l.balance,
		Reason:       reason,
	})

	return l.balance, nil
}

// Settle finalizes a pending debit after the remote ledger confirmed it.
func (l *Ledger) Settle(requestID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	amount, ok := l.pending[requestID]
	if !ok {
		if _, done := l.settled[requestID]; done {
			return nil
		}
		return ErrUnknownRequest
	}

	delete(l.pending, requestID)
	l.settled[requestID] = amount
	return nil
}

// Rollback refunds a pending debit whose remote confirmation failed. The
// request id stays free for a fresh attempt.
func (l *Ledger) Rollback(requestID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	amount, ok := l.pending[requestID]
	if !ok {
		return ErrUnknownRequest
	}

	delete(l.pending, requestID)
	l.balance += amount
	l.append(Entry{
		RequestID:    requestID,
		Delta:        amount,
		BalanceAfter: l.balance,
		Reason:       "rollback",
	})

	return nil
}

// Credit adds points from a purchase or refund. It always succeeds.
func (l *Ledger) Credit(amount int, source string) (int, error) {
	if amount <= 0 {
		return 0, ErrValidation
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.balance += amount
	l.append(Entry{
		RequestID:    source,
		Delta:        amount,
		BalanceAfter: l.balance,
		Reason:       "credit",
	})

	return l.balance, nil
}

func (l *Ledger) Balance() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// SetBalance overwrites the balance with the remote ledger's value during
// reconciliation. Pending debits are left alone: their remote writes are
// either already reflected in the snapshot or about to be rolled back.
func (l *Ledger) SetBalance(balance int) {
	if balance < 0 {
		balance = 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if balance == l.balance {
		return
	}
	delta := balance - l.balance
	l.balance = balance
	l.append(Entry{
		Delta:        delta,
		BalanceAfter: l.balance,
		Reason:       "reconcile",
	})
}

// Entries returns a copy of the transaction log.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.log))
	copy(out, l.log)
	return out
}

func (l *Ledger) append(e Entry) {
	e.At = l.now().UTC()
	l.log = append(l.log, e)
}
