package accountapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yaroslav-smirnov8/ai-course-generator-sub000/internal/domain/enums"
)

// Client is the HTTP implementation of Service. Responses are decoded
// strictly into typed payloads; a shape mismatch is ErrUnavailable, never a
// silently coerced value.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type tariffInfoPayload struct {
	TariffType *string    `json:"tariff_type"`
	ValidUntil *time.Time `json:"valid_until"`
	Points     *int       `json:"points"`
	Limits     *struct {
		DailyGenerationLimit *int `json:"daily_generation_limit"`
		DailyImageLimit      *int `json:"daily_image_limit"`
		PointsCost           *int `json:"points_cost"`
	} `json:"limits"`
}

func (c *Client) GetTariffInfo(ctx context.Context, userID int64) (TariffInfo, error) {
	var payload tariffInfoPayload
	if err := c.call(ctx, http.MethodGet, c.userPath(userID, "tariff"), nil, &payload); err != nil {
		return TariffInfo{}, err
	}

	if payload.TariffType == nil {
		return TariffInfo{}, fmt.Errorf("tariff_type missing: %w", ErrUnavailable)
	}

	info := TariffInfo{
		Type:       enums.TariffType(*payload.TariffType),
		ValidUntil: payload.ValidUntil,
	}
	if payload.Points != nil {
		info.Points = *payload.Points
	}
	if payload.Limits != nil {
		l := payload.Limits
		if l.DailyGenerationLimit == nil || l.DailyImageLimit == nil || l.PointsCost == nil {
			return TariffInfo{}, fmt.Errorf("partial limits payload: %w", ErrUnavailable)
		}
		info.Limits = &LimitInfo{
			DailyGenerationLimit: *l.DailyGenerationLimit,
			DailyImageLimit:      *l.DailyImageLimit,
			PointsCost:           *l.PointsCost,
		}
	}

	return info, nil
}

type usageStatsPayload struct {
	DailyGenerations *int       `json:"daily_generations"`
	DailyImages      *int       `json:"daily_images"`
	TotalGenerations *int       `json:"total_generations"`
	TotalImages      *int       `json:"total_images"`
	LastActive       *time.Time `json:"last_active"`
}

func (c *Client) GetUsageStats(ctx context.Context, userID int64) (UsageStats, error) {
	var payload usageStatsPayload
	if err := c.call(ctx, http.MethodGet, c.userPath(userID, "usage"), nil, &payload); err != nil {
		return UsageStats{}, err
	}

	if payload.DailyGenerations == nil || payload.DailyImages == nil ||
		payload.TotalGenerations == nil || payload.TotalImages == nil {
		return UsageStats{}, fmt.Errorf("partial usage payload: %w", ErrUnavailable)
	}

	stats := UsageStats{
		DailyGenerations: *payload.DailyGenerations,
		DailyImages:      *payload.DailyImages,
		TotalGenerations: *payload.TotalGenerations,
		TotalImages:      *payload.TotalImages,
	}
	if payload.LastActive != nil {
		stats.LastActive = *payload.LastActive
	}
	if stats.DailyGenerations < 0 || stats.DailyImages < 0 ||
		stats.TotalGenerations < 0 || stats.TotalImages < 0 {
		return UsageStats{}, fmt.Errorf("negative usage counters: %w", ErrUnavailable)
	}

	return stats, nil
}

func (c *Client) RecordUsage(ctx context.Context, userID int64, category enums.ActionCategory) error {
	body := map[string]string{"category": string(category)}
	return c.call(ctx, http.MethodPost, c.userPath(userID, "usage"), body, nil)
}

type balancePayload struct {
	NewBalance *int `json:"new_balance"`
}

func (c *Client) DebitPoints(ctx context.Context, userID int64, amount int, requestID, reason string) (int, error) {
	body := map[string]any{
		"amount":     amount,
		"request_id": requestID,
		"reason":     reason,
	}
	var payload balancePayload
	if err := c.call(ctx, http.MethodPost, c.userPath(userID, "points/debit"), body, &payload); err != nil {
		return 0, err
	}
	if payload.NewBalance == nil || *payload.NewBalance < 0 {
		return 0, fmt.Errorf("invalid debit balance: %w", ErrUnavailable)
	}
	return *payload.NewBalance, nil
}

func (c *Client) CreditPoints(ctx context.Context, userID int64, amount int, source string) (int, error) {
	body := map[string]any{
		"amount": amount,
		"source": source,
	}
	var payload balancePayload
	if err := c.call(ctx, http.MethodPost, c.userPath(userID, "points/credit"), body, &payload); err != nil {
		return 0, err
	}
	if payload.NewBalance == nil || *payload.NewBalance < 0 {
		return 0, fmt.Errorf("invalid credit balance: %w", ErrUnavailable)
	}
	return *payload.NewBalance, nil
}

type dailyCountsPayload struct {
	DailyGenerations *int `json:"daily_generations"`
	DailyImages      *int `json:"daily_images"`
}

func (c *Client) ResetUsageCounters(ctx context.Context, userID int64) (DailyCounts, error) {
	var payload dailyCountsPayload
	if err := c.call(ctx, http.MethodPost, c.userPath(userID, "usage/reset"), nil, &payload); err != nil {
		return DailyCounts{}, err
	}
	if payload.DailyGenerations == nil || payload.DailyImages == nil {
		return DailyCounts{}, fmt.Errorf("partial reset payload: %w", ErrUnavailable)
	}
	return DailyCounts{
		DailyGenerations: *payload.DailyGenerations,
		DailyImages:      *payload.DailyImages,
	}, nil
}

func (c *Client) PurchaseTariff(ctx context.Context, userID int64, tariff enums.TariffType) error {
	body := map[string]string{"tariff_type": string(tariff)}
	return c.call(ctx, http.MethodPost, c.userPath(userID, "tariff/purchase"), body, nil)
}

func (c *Client) userPath(userID int64, suffix string) string {
	return "/v1/accounts/" + strconv.FormatInt(userID, 10) + "/" + suffix
}

func (c *Client) call(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, ErrUnavailable, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, ErrRejected)
	default:
		return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, ErrUnavailable)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w: %w", path, ErrUnavailable, err)
	}

	return nil
}
