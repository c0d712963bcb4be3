package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/spf13/cast"
)

// lowBalanceCooldownKey names the flag that suppresses repeated low-point alerts.
const lowBalanceCooldownKey = "low_point_notified"

// DefaultLowBalanceCooldown is how long an alert suppresses the next one.
const DefaultLowBalanceCooldown = 24 * time.Hour

// CooldownStore is a TTL-keyed flag store.
// Implementations live in infra/cooldown.
type CooldownStore interface {
	// Active reports whether the flag is currently set.
	Active(ctx context.Context, key string) (bool, error)

	// Acquire sets the flag for ttl if it is not already set and reports
	// whether this call set it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// BalanceMonitor alerts shop admins by SMS when the provider balance reported
// in an API response drops under the configured threshold. At most one alert
// goes out per cooldown window.
type BalanceMonitor struct {
	settings SettingsStore
	cooldown CooldownStore
	sms      SMSSender
	renderer *Renderer
	window   time.Duration
}

var _ BalanceObserver = (*BalanceMonitor)(nil)

// NewBalanceMonitor creates a new low-balance monitor.
func NewBalanceMonitor(settings SettingsStore, cooldown CooldownStore, sms SMSSender, window time.Duration) *BalanceMonitor {
	if window <= 0 {
		window = DefaultLowBalanceCooldown
	}
	return &BalanceMonitor{
		settings: settings,
		cooldown: cooldown,
		sms:      sms,
		renderer: NewRenderer(),
		window:   window,
	}
}

// Observe extracts the remaining points from a raw channel response and runs
// the low-balance check. Bodies without a positive point figure are ignored.
func (m *BalanceMonitor) Observe(ctx context.Context, raw []byte) {
	points, ok := ExtractPoints(raw)
	if !ok {
		return
	}

	// Skip the settings load entirely while the cooldown is running.
	if m.cooldownActive(ctx) {
		return
	}

	settings, err := m.settings.LoadSettings(ctx)
	if err != nil {
		slog.Error("low balance check: loading settings failed", "error", err)
		return
	}

	m.CheckAndNotify(ctx, settings, points)
}

// CheckAndNotify sends the low-balance alert to every enabled admin when
// currentPoints is under the threshold, and reports whether it did. The
// cooldown flag is claimed before sending so that the alert's own API
// response cannot trigger a second alert.
func (m *BalanceMonitor) CheckAndNotify(ctx context.Context, settings *Settings, currentPoints int) bool {
	if m.cooldownActive(ctx) {
		return false
	}

	cfg := settings.LowBalance
	if cfg.Threshold <= 0 || cfg.Message == "" || currentPoints >= cfg.Threshold {
		return false
	}

	phones := settings.AdminPhones()
	if len(phones) == 0 {
		return false
	}

	acquired, err := m.cooldown.Acquire(ctx, lowBalanceCooldownKey, m.window)
	if err != nil {
		slog.Error("low balance check: setting cooldown failed", "error", err)
		return false
	}
	if !acquired {
		return false
	}

	text := m.renderer.RenderText(cfg.Message, nil, settings.ShopName, map[string]string{
		"current_points": strconv.Itoa(currentPoints),
	})
	msgType := Classify(text)

	for _, phone := range phones {
		_, err := m.sms.Send(ctx, settings.SMSCredentials, &SMSMessage{
			To:   phone,
			From: settings.SenderNumber,
			Text: text,
			Type: msgType,
		})
		if err != nil {
			slog.Error("low balance alert failed", "to", phone, "error", err)
			continue
		}
		slog.Info("low balance alert sent", "to", phone, "points", currentPoints, "threshold", cfg.Threshold)
	}

	return true
}

// cooldownActive treats a store failure as an active cooldown, so an
// unreachable store never causes repeated alerts.
func (m *BalanceMonitor) cooldownActive(ctx context.Context) bool {
	active, err := m.cooldown.Active(ctx, lowBalanceCooldownKey)
	if err != nil {
		slog.Error("low balance check: reading cooldown failed", "error", err)
		return true
	}
	return active
}

// ExtractPoints reads the "point" figure (or "balance" when absent) from a
// JSON response body. It reports false unless a positive number is found.
func ExtractPoints(raw []byte) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return 0, false
	}

	for _, key := range []string{"point", "balance"} {
		v, ok := body[key]
		if !ok {
			continue
		}
		points, err := cast.ToIntE(v)
		if err != nil || points <= 0 {
			return 0, false
		}
		return points, true
	}
	return 0, false
}
