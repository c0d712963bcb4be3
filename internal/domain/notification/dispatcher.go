package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Changwoon-overview/Socialtalk/internal/common"
)

// SendRecorder observes every channel attempt. Implementations live in infra/metrics.
type SendRecorder interface {
	RecordSend(channel ChannelType, status DeliveryStatus, elapsed time.Duration)
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithSendRecorder attaches a recorder for send metrics.
func WithSendRecorder(r SendRecorder) DispatcherOption {
	return func(d *Dispatcher) { d.recorder = r }
}

// WithClock overrides the clock used for log timestamps.
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) { d.now = now }
}

// Dispatcher turns an event plus the stored configuration into channel sends
// and delivery log entries.
//
// Precedence for order events: a matching rule sends its own templates (both
// channels if both are set) and stops; otherwise the default Alimtalk template
// for the status wins over the default SMS template. Subscription and user
// events skip the rule step.
type Dispatcher struct {
	settings SettingsStore
	rules    RuleStore
	log      DeliveryLog
	sms      SMSSender
	alimtalk AlimtalkSender
	renderer *Renderer
	recorder SendRecorder
	now      func() time.Time
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(
	settings SettingsStore,
	rules RuleStore,
	log DeliveryLog,
	sms SMSSender,
	alimtalk AlimtalkSender,
	renderer *Renderer,
	opts ...DispatcherOption,
) *Dispatcher {
	d := &Dispatcher{
		settings: settings,
		rules:    rules,
		log:      log,
		sms:      sms,
		alimtalk: alimtalk,
		renderer: renderer,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch handles one event synchronously and returns the log entries it wrote.
// Channel failures are recorded as Failure entries and never returned; the only
// error is a failure to load the settings snapshot.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *Event) ([]*DeliveryLogEntry, error) {
	if ev == nil || ev.Context == nil {
		return nil, common.NewValidationError("event context is required")
	}

	settings, err := d.settings.LoadSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	run := &dispatchRun{
		Dispatcher: d,
		ev:         ev,
		cfg:        settings,
		tmpl:       d.renderer.WithMapping(settings.VariableMapping),
	}

	switch ev.Kind {
	case KindOrderStatusChanged:
		if rule := d.matchRule(ctx, ev); rule != nil {
			slog.Info("rule matched",
				"rule_id", rule.ID,
				"status_key", ev.StatusKey,
				"subject_id", ev.Context.SubjectID(),
			)
			run.sendRule(ctx, rule)
			return run.entries, nil
		}
		run.sendDefaults(ctx, true)
	case KindSubscriptionStatusChanged:
		run.sendDefaults(ctx, true)
	case KindUserRegistered, KindUserRoleChanged:
		run.sendDefaults(ctx, false)
	default:
		return nil, common.NewValidationError(fmt.Sprintf("unsupported event kind: %s", ev.Kind))
	}

	return run.entries, nil
}

// matchRule runs the rule matcher for an order event. A rule store failure
// is logged and treated as "no rules" so default templates still go out.
func (d *Dispatcher) matchRule(ctx context.Context, ev *Event) *Rule {
	if d.rules == nil {
		return nil
	}
	oc, ok := ev.Context.(OrderContext)
	if !ok {
		return nil
	}

	rules, err := d.rules.ListRules(ctx)
	if err != nil {
		slog.Error("loading rules failed, using default templates",
			"status_key", ev.StatusKey,
			"error", err,
		)
		return nil
	}
	if len(rules) == 0 {
		return nil
	}

	productIDs, categoryIDs := OrderIDSets(oc.Order.Items())
	return FindMatchingRule(rules, ev.StatusKey, productIDs, categoryIDs)
}

// dispatchRun holds the per-invocation state of one Dispatch call.
type dispatchRun struct {
	*Dispatcher
	ev      *Event
	cfg     *Settings
	tmpl    *Renderer
	entries []*DeliveryLogEntry
}

func (r *dispatchRun) sendRule(ctx context.Context, rule *Rule) {
	key := r.ev.StatusKey
	if rule.AlimtalkTemplateCode != "" {
		adminCopy := r.cfg.AlimtalkTemplates[key].SendToAdmin
		r.sendAlimtalk(ctx, rule.AlimtalkTemplateCode, r.recipients(adminCopy))
	}
	if rule.SMSBody != "" {
		adminCopy := r.cfg.SMSTemplates[key].SendToAdmin
		r.sendSMS(ctx, rule.SMSBody, r.recipients(adminCopy))
	}
}

func (r *dispatchRun) sendDefaults(ctx context.Context, allowAdmins bool) {
	key := r.ev.StatusKey

	if t, ok := r.cfg.AlimtalkTemplate(key); ok {
		r.sendAlimtalk(ctx, t.Content, r.recipients(allowAdmins && t.SendToAdmin))
		return
	}

	if t, ok := r.cfg.SMSTemplate(key); ok {
		r.sendSMS(ctx, t.Content, r.recipients(allowAdmins && t.SendToAdmin))
		return
	}

	slog.Debug("no template configured", "kind", r.ev.Kind, "status_key", key)
}

// recipients returns the subject's phone followed by enabled admin phones when
// includeAdmins is set. Blanks are dropped and duplicates removed.
func (r *dispatchRun) recipients(includeAdmins bool) []string {
	candidates := []string{r.ev.Context.Phone()}
	if includeAdmins {
		candidates = append(candidates, r.cfg.AdminPhones()...)
	}

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, phone := range candidates {
		if phone == "" || seen[phone] {
			continue
		}
		seen[phone] = true
		out = append(out, phone)
	}
	return out
}

func (r *dispatchRun) sendAlimtalk(ctx context.Context, templateCode string, to []string) {
	vars := r.tmpl.ExtractStructuredVars(r.ev.Context, r.cfg.ShopName, r.ev.ExtraVars)

	for _, phone := range to {
		start := time.Now()
		res, err := r.alimtalk.Send(ctx, r.cfg.AlimtalkCredentials, &AlimtalkMessage{
			TemplateCode: templateCode,
			To:           phone,
			Variables:    vars,
		})
		r.record(ctx, &DeliveryLogEntry{
			Recipient:    phone,
			ChannelType:  ChannelAlimtalk,
			TemplateCode: templateCode,
		}, res, err, time.Since(start))
	}
}

func (r *dispatchRun) sendSMS(ctx context.Context, body string, to []string) {
	text := r.tmpl.RenderText(body, r.ev.Context, r.cfg.ShopName, r.ev.ExtraVars)
	msgType := Classify(text)

	for _, phone := range to {
		start := time.Now()
		res, err := r.sms.Send(ctx, r.cfg.SMSCredentials, &SMSMessage{
			To:   phone,
			From: r.cfg.SenderNumber,
			Text: text,
			Type: msgType,
		})
		r.record(ctx, &DeliveryLogEntry{
			Recipient:   phone,
			ChannelType: msgType.ChannelType(),
			Message:     text,
		}, res, err, time.Since(start))
	}
}

// record classifies a channel outcome and appends it to the delivery log.
func (r *dispatchRun) record(ctx context.Context, entry *DeliveryLogEntry, res *ChannelResult, sendErr error, elapsed time.Duration) {
	entry.SentAt = r.now()
	entry.SubjectID = r.ev.Context.SubjectID()
	entry.EventKind = r.ev.Kind
	entry.StatusKey = r.ev.StatusKey

	if sendErr != nil {
		entry.Status = StatusFailure
		entry.RawResponse = failureDetail(sendErr)
		slog.Warn("notification delivery failed",
			"channel", entry.ChannelType,
			"status_key", entry.StatusKey,
			"to", entry.Recipient,
			"error", sendErr,
			"duration", elapsed,
		)
	} else {
		entry.Status = StatusSuccess
		if res != nil {
			entry.RawResponse = res.Body
		}
		slog.Info("notification sent",
			"channel", entry.ChannelType,
			"status_key", entry.StatusKey,
			"to", entry.Recipient,
			"duration", elapsed,
		)
	}

	if r.recorder != nil {
		r.recorder.RecordSend(entry.ChannelType, entry.Status, elapsed)
	}

	if err := r.log.Append(ctx, entry); err != nil {
		slog.Error("failed to write delivery log",
			"channel", entry.ChannelType,
			"to", entry.Recipient,
			"error", err,
		)
	}
	r.entries = append(r.entries, entry)
}

// failureDetail keeps the provider's raw body for API errors and the error
// text for everything else.
func failureDetail(err error) string {
	var apiErr *common.APIError
	if errors.As(err, &apiErr) && apiErr.Body != "" {
		return apiErr.Body
	}
	return err.Error()
}
