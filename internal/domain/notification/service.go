package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Changwoon-overview/Socialtalk/internal/common"
)

// Enqueuer defines the contract for queueing events for the worker.
// This allows the service to be decoupled from the specific queue implementation.
type Enqueuer interface {
	EnqueueDispatch(payload *EventPayload) error
}

// Service is the entry point for the HTTP handler: event intake, rule
// management and delivery log reads.
type Service struct {
	dispatcher *Dispatcher
	rules      RuleStore
	log        DeliveryLog
	enqueuer   Enqueuer
}

// NewService creates a new notification service. enqueuer may be nil, in
// which case asynchronous intake is rejected.
func NewService(dispatcher *Dispatcher, rules RuleStore, log DeliveryLog, enqueuer Enqueuer) *Service {
	return &Service{
		dispatcher: dispatcher,
		rules:      rules,
		log:        log,
		enqueuer:   enqueuer,
	}
}

// Dispatch validates the payload and handles the event inline.
func (s *Service) Dispatch(ctx context.Context, payload *EventPayload) ([]*DeliveryLogEntry, error) {
	ev, err := payload.ToEvent()
	if err != nil {
		return nil, err
	}

	entries, err := s.dispatcher.Dispatch(ctx, ev)
	if err != nil {
		return nil, fmt.Errorf("dispatching %s: %w", ev.StatusKey, err)
	}
	return entries, nil
}

// Enqueue validates the payload and hands it to the worker queue.
func (s *Service) Enqueue(ctx context.Context, payload *EventPayload) error {
	if _, err := payload.ToEvent(); err != nil {
		return err
	}
	if s.enqueuer == nil {
		return common.NewValidationError("asynchronous intake is not configured")
	}

	if err := s.enqueuer.EnqueueDispatch(payload); err != nil {
		return fmt.Errorf("enqueuing event: %w", err)
	}

	slog.Info("event enqueued",
		"kind", payload.Kind,
		"status_key", payload.StatusKey,
	)
	return nil
}

// ListRules returns the rule list in evaluation order.
func (s *Service) ListRules(ctx context.Context) ([]*Rule, error) {
	rules, err := s.rules.ListRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	return rules, nil
}

// CreateRule validates and appends a rule to the end of the list.
func (s *Service) CreateRule(ctx context.Context, rule *Rule) (*Rule, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	rule.ID = ""
	if err := s.rules.CreateRule(ctx, rule); err != nil {
		return nil, fmt.Errorf("creating rule: %w", err)
	}

	slog.Info("rule created",
		"rule_id", rule.ID,
		"condition_type", rule.ConditionType,
		"order_status", rule.OrderStatus,
	)
	return rule, nil
}

// DeleteRule removes a rule by id.
func (s *Service) DeleteRule(ctx context.Context, id string) error {
	deleted, err := s.rules.DeleteRule(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting rule: %w", err)
	}
	if !deleted {
		return common.NewNotFoundError("rule", id)
	}

	slog.Info("rule deleted", "rule_id", id)
	return nil
}

// ListLogs retrieves delivery log entries with pagination and filtering.
func (s *Service) ListLogs(ctx context.Context, filter LogFilter) (*LogListResponse, error) {
	filter.Normalize()

	entries, total, err := s.log.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing delivery logs: %w", err)
	}

	return &LogListResponse{
		Entries:  entries,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}
