package notification

import (
	"context"
	"errors"
	"sync"
	"time"
)

type fakeSettings struct {
	settings *Settings
	err      error
	loads    int
}

func (f *fakeSettings) LoadSettings(_ context.Context) (*Settings, error) {
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return f.settings, nil
}

type fakeRules struct {
	rules   []*Rule
	err     error
	created []*Rule
}

func (f *fakeRules) ListRules(_ context.Context) ([]*Rule, error) {
	return f.rules, f.err
}

func (f *fakeRules) CreateRule(_ context.Context, rule *Rule) error {
	if f.err != nil {
		return f.err
	}
	rule.ID = "rule-new"
	rule.Position = len(f.rules)
	f.rules = append(f.rules, rule)
	f.created = append(f.created, rule)
	return nil
}

func (f *fakeRules) DeleteRule(_ context.Context, id string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for i, r := range f.rules {
		if r.ID == id {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type fakeLog struct {
	mu        sync.Mutex
	entries   []*DeliveryLogEntry
	appendErr error
	lastQuery LogFilter
}

func (f *fakeLog) Append(_ context.Context, entry *DeliveryLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	entry.ID = int64(len(f.entries) + 1)
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLog) List(_ context.Context, filter LogFilter) ([]*DeliveryLogEntry, int, error) {
	f.lastQuery = filter
	return f.entries, len(f.entries), nil
}

type fakeSMS struct {
	sent []*SMSMessage
	// errFor fails sends to the listed phones.
	errFor map[string]error
	body   string
}

func (f *fakeSMS) Send(_ context.Context, _ Credentials, msg *SMSMessage) (*ChannelResult, error) {
	f.sent = append(f.sent, msg)
	if err := f.errFor[msg.To]; err != nil {
		return nil, err
	}
	return &ChannelResult{StatusCode: 200, Body: f.body}, nil
}

type fakeAlimtalk struct {
	sent   []*AlimtalkMessage
	errFor map[string]error
}

func (f *fakeAlimtalk) Send(_ context.Context, _ Credentials, msg *AlimtalkMessage) (*ChannelResult, error) {
	f.sent = append(f.sent, msg)
	if err := f.errFor[msg.To]; err != nil {
		return nil, err
	}
	return &ChannelResult{StatusCode: 200, Body: `{"result":"ok"}`}, nil
}

type fakeCooldown struct {
	active    map[string]bool
	activeErr error
	acquires  int
}

func (f *fakeCooldown) Active(_ context.Context, key string) (bool, error) {
	if f.activeErr != nil {
		return false, f.activeErr
	}
	return f.active[key], nil
}

func (f *fakeCooldown) Acquire(_ context.Context, key string, _ time.Duration) (bool, error) {
	f.acquires++
	if f.active == nil {
		f.active = map[string]bool{}
	}
	if f.active[key] {
		return false, nil
	}
	f.active[key] = true
	return true, nil
}

var errBoom = errors.New("boom")

func testOrder() *OrderSnapshot {
	return &OrderSnapshot{
		OrderID:     1234,
		OrderNumber: "1234",
		DateCreated: time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC),
		Total:       "₩50,000",
		FirstName:   "길동",
		FullName:    "홍길동",
		Phone:       "01012345678",
		LineItems: []LineItem{
			{ProductID: 10, CategoryIDs: []int64{100}},
			{ProductID: 11, CategoryIDs: []int64{101, 102}},
		},
	}
}
