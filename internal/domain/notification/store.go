package notification

import (
	"context"
)

// DeliveryLog is the append-only sink for delivery attempts.
// Implementations live in infra/store (Supabase) and infra/pgstore (Postgres).
type DeliveryLog interface {
	// Append inserts a new entry. Entries are never updated.
	Append(ctx context.Context, entry *DeliveryLogEntry) error

	// List retrieves entries with pagination and filtering, newest first.
	List(ctx context.Context, filter LogFilter) ([]*DeliveryLogEntry, int, error)
}

// RuleStore persists the ordered rule list.
type RuleStore interface {
	// ListRules returns all rules ordered by position.
	ListRules(ctx context.Context) ([]*Rule, error)

	// CreateRule appends a rule at the end of the list and fills in ID,
	// Position and CreatedAt.
	CreateRule(ctx context.Context, rule *Rule) error

	// DeleteRule removes a rule. Other rules keep their ids and positions.
	// Returns false when no rule has the id.
	DeleteRule(ctx context.Context, id string) (bool, error)
}
