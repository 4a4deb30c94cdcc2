package dto

import "time"

type AttemptRequest struct {
	Category string `json:"category"`
	Mode     string `json:"mode,omitempty"`
}

type AttemptResponse struct {
	Allowed        bool   `json:"allowed"`
	Mode           string `json:"mode"`
	Reason         string `json:"reason,omitempty"`
	RequestID      string `json:"request_id,omitempty"`
	PointsBalance  int    `json:"points_balance"`
	RemainingQuota int    `json:"remaining_quota"`
}

type QuotaResponse struct {
	Category  string    `json:"category"`
	Remaining int       `json:"remaining"`
	Unlimited bool      `json:"unlimited"`
	ResetAt   time.Time `json:"reset_at"`
}

// PointsResponse carries the balance plus, when the account's tariff is
// still quotable, the points price of renewing it.
type PointsResponse struct {
	Balance       int    `json:"balance"`
	RenewalTariff string `json:"renewal_tariff,omitempty"`
	RenewalCost   int    `json:"renewal_cost,omitempty"`
}

type ReconcileResponse struct {
	State string `json:"state"`
}
