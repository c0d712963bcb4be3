package store

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/Changwoon-overview/Socialtalk/internal/domain/notification"

	"github.com/google/uuid"
	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
)

const (
	logsTable    = "sms_connect_logs"
	rulesTable   = "sms_connect_rules"
	optionsTable = "sms_connect_options"
)

var (
	_ notification.DeliveryLog   = (*SupabaseStore)(nil)
	_ notification.RuleStore     = (*SupabaseStore)(nil)
	_ notification.SettingsStore = (*SupabaseStore)(nil)
)

// SupabaseStore implements the delivery log, rule store and settings store
// using the Supabase Go SDK.
type SupabaseStore struct {
	client *supa.Client
}

// NewSupabaseStore creates a new Supabase-backed store.
func NewSupabaseStore(supabaseURL, serviceKey string) (*SupabaseStore, error) {
	client, err := supa.NewClient(supabaseURL, serviceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("creating supabase client: %w", err)
	}
	return &SupabaseStore{client: client}, nil
}

// ==========================================
// Settings
// ==========================================

// optionRow is one key of the options table. Each key holds one top-level
// field of notification.Settings and is read and written as a whole.
type optionRow struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// LoadSettings reads every option row and assembles the settings snapshot.
func (s *SupabaseStore) LoadSettings(ctx context.Context) (*notification.Settings, error) {
	data, _, err := s.client.From(optionsTable).Select("key,value", "", false).Execute()
	if err != nil {
		return nil, fmt.Errorf("fetching options: %w", err)
	}

	var rows []optionRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing options: %w", err)
	}

	return decodeSettings(rows)
}

// decodeSettings folds option rows into a Settings value by field name.
func decodeSettings(rows []optionRow) (*notification.Settings, error) {
	fields := make(map[string]json.RawMessage, len(rows))
	for _, row := range rows {
		if len(row.Value) == 0 {
			continue
		}
		fields[row.Key] = row.Value
	}

	doc, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("assembling settings: %w", err)
	}

	settings := &notification.Settings{}
	if err := json.Unmarshal(doc, settings); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	return settings, nil
}

// ==========================================
// Rules
// ==========================================

type ruleRow struct {
	ID                   string  `json:"id"`
	Position             int     `json:"position"`
	ConditionType        string  `json:"condition_type"`
	ConditionValues      []int64 `json:"condition_values"`
	OrderStatus          string  `json:"order_status"`
	SMSBody              *string `json:"sms_body,omitempty"`
	AlimtalkTemplateCode *string `json:"alimtalk_template_code,omitempty"`
	CreatedAt            string  `json:"created_at,omitempty"`
}

// ListRules returns all rules ordered by position. Rules sharing a position
// keep creation order, oldest first.
func (s *SupabaseStore) ListRules(ctx context.Context) ([]*notification.Rule, error) {
	data, _, err := s.client.From(rulesTable).
		Select("*", "", false).
		Order("position", &postgrest.OrderOpts{Ascending: true}).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		Order("id", &postgrest.OrderOpts{Ascending: true}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}

	var rows []ruleRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}

	rules := make([]*notification.Rule, len(rows))
	for i := range rows {
		rules[i] = rowToRule(&rows[i])
	}
	sortRules(rules)
	return rules, nil
}

// sortRules orders by position, then created_at, then id. Concurrent creates
// can share a position.
func sortRules(rules []*notification.Rule) {
	slices.SortStableFunc(rules, func(a, b *notification.Rule) int {
		return cmp.Or(
			cmp.Compare(a.Position, b.Position),
			a.CreatedAt.Compare(b.CreatedAt),
			cmp.Compare(a.ID, b.ID),
		)
	})
}

// CreateRule appends a rule after the current last position.
func (s *SupabaseStore) CreateRule(ctx context.Context, rule *notification.Rule) error {
	data, _, err := s.client.From(rulesTable).
		Select("position", "", false).
		Order("position", &postgrest.OrderOpts{Ascending: false}).
		Limit(1, "").
		Execute()
	if err != nil {
		return fmt.Errorf("reading last rule position: %w", err)
	}

	var last []struct {
		Position int `json:"position"`
	}
	if err := json.Unmarshal(data, &last); err != nil {
		return fmt.Errorf("parsing last rule position: %w", err)
	}

	rule.ID = uuid.New().String()
	rule.Position = 0
	if len(last) > 0 {
		rule.Position = last[0].Position + 1
	}
	rule.CreatedAt = time.Now().UTC()

	row := ruleRow{
		ID:              rule.ID,
		Position:        rule.Position,
		ConditionType:   string(rule.ConditionType),
		ConditionValues: rule.ConditionValues,
		OrderStatus:     rule.OrderStatus,
		CreatedAt:       rule.CreatedAt.Format(time.RFC3339Nano),
	}
	if rule.SMSBody != "" {
		row.SMSBody = &rule.SMSBody
	}
	if rule.AlimtalkTemplateCode != "" {
		row.AlimtalkTemplateCode = &rule.AlimtalkTemplateCode
	}

	if _, _, err := s.client.From(rulesTable).Insert(row, false, "", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("inserting rule: %w", err)
	}
	return nil
}

// DeleteRule removes a rule by id without touching other rows.
func (s *SupabaseStore) DeleteRule(ctx context.Context, id string) (bool, error) {
	data, _, err := s.client.From(rulesTable).Delete("representation", "").Eq("id", id).Execute()
	if err != nil {
		return false, fmt.Errorf("deleting rule: %w", err)
	}

	var deleted []ruleRow
	if err := json.Unmarshal(data, &deleted); err != nil {
		return false, fmt.Errorf("parsing delete response: %w", err)
	}
	return len(deleted) > 0, nil
}

func rowToRule(row *ruleRow) *notification.Rule {
	rule := &notification.Rule{
		ID:              row.ID,
		Position:        row.Position,
		ConditionType:   notification.ConditionType(row.ConditionType),
		ConditionValues: row.ConditionValues,
		OrderStatus:     row.OrderStatus,
	}
	if row.SMSBody != nil {
		rule.SMSBody = *row.SMSBody
	}
	if row.AlimtalkTemplateCode != nil {
		rule.AlimtalkTemplateCode = *row.AlimtalkTemplateCode
	}
	if row.CreatedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, row.CreatedAt); err == nil {
			rule.CreatedAt = t
		}
	}
	return rule
}

// ==========================================
// Delivery log
// ==========================================

// logRow is the internal representation for Supabase PostgREST inserts.
type logRow struct {
	ID           int64  `json:"id,omitempty"`
	SentAt       string `json:"sent_at"`
	SubjectID    int64  `json:"subject_id"`
	EventKind    string `json:"event_kind"`
	StatusKey    string `json:"status_key"`
	Recipient    string `json:"recipient"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	Message      string `json:"message"`
	TemplateCode string `json:"template_code"`
	Response     string `json:"response"`
}

// Append inserts a delivery log entry.
func (s *SupabaseStore) Append(ctx context.Context, entry *notification.DeliveryLogEntry) error {
	row := logRow{
		SentAt:       entry.SentAt.UTC().Format(time.RFC3339Nano),
		SubjectID:    entry.SubjectID,
		EventKind:    string(entry.EventKind),
		StatusKey:    entry.StatusKey,
		Recipient:    entry.Recipient,
		Type:         string(entry.ChannelType),
		Status:       string(entry.Status),
		Message:      entry.Message,
		TemplateCode: entry.TemplateCode,
		Response:     entry.RawResponse,
	}

	data, _, err := s.client.From(logsTable).Insert(row, false, "", "representation", "").Execute()
	if err != nil {
		return fmt.Errorf("inserting delivery log: %w", err)
	}

	var results []logRow
	if err := json.Unmarshal(data, &results); err != nil {
		return fmt.Errorf("parsing insert response: %w", err)
	}
	if len(results) > 0 {
		entry.ID = results[0].ID
	}
	return nil
}

// List retrieves delivery log entries with pagination and filtering.
func (s *SupabaseStore) List(ctx context.Context, filter notification.LogFilter) ([]*notification.DeliveryLogEntry, int, error) {
	filter.Normalize()
	offset := filter.Offset()

	query := s.client.From(logsTable).Select("*", "exact", false)

	if filter.Status != "" {
		query = query.Eq("status", filter.Status)
	}
	if filter.Recipient != "" {
		query = query.Eq("recipient", filter.Recipient)
	}
	if filter.ChannelType != "" {
		query = query.Eq("type", filter.ChannelType)
	}
	if filter.SubjectID != 0 {
		query = query.Eq("subject_id", strconv.FormatInt(filter.SubjectID, 10))
	}

	query = query.Order("sent_at", &postgrest.OrderOpts{Ascending: false})
	query = query.Range(offset, offset+filter.PageSize-1, "")

	data, count, err := query.Execute()
	if err != nil {
		return nil, 0, fmt.Errorf("listing delivery logs: %w", err)
	}

	var rows []logRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, 0, fmt.Errorf("parsing delivery logs: %w", err)
	}

	entries := make([]*notification.DeliveryLogEntry, len(rows))
	for i := range rows {
		entries[i] = rowToEntry(&rows[i])
	}
	return entries, int(count), nil
}

func rowToEntry(row *logRow) *notification.DeliveryLogEntry {
	entry := &notification.DeliveryLogEntry{
		ID:           row.ID,
		SubjectID:    row.SubjectID,
		EventKind:    notification.EventKind(row.EventKind),
		StatusKey:    row.StatusKey,
		Recipient:    row.Recipient,
		ChannelType:  notification.ChannelType(row.Type),
		Status:       notification.DeliveryStatus(row.Status),
		Message:      row.Message,
		TemplateCode: row.TemplateCode,
		RawResponse:  row.Response,
	}
	if t, err := time.Parse(time.RFC3339Nano, row.SentAt); err == nil {
		entry.SentAt = t
	}
	return entry
}
