package notification

import (
	"fmt"
	"time"

	"github.com/Changwoon-overview/Socialtalk/internal/common"
)

// EventPayload is the wire form of an Event, posted by the host plugin or
// carried inside a queued task.
type EventPayload struct {
	Kind         EventKind             `json:"kind" binding:"required"`
	StatusKey    string                `json:"status_key" binding:"required"`
	Order        *OrderSnapshot        `json:"order,omitempty"`
	Subscription *SubscriptionSnapshot `json:"subscription,omitempty"`
	User         *UserSnapshot         `json:"user,omitempty"`
	ExtraVars    map[string]string     `json:"extra_vars,omitempty"`
}

// ToEvent validates the payload and builds the Event with the matching context.
func (p *EventPayload) ToEvent() (*Event, error) {
	if !IsValidKind(p.Kind) {
		return nil, common.NewValidationError(fmt.Sprintf("unsupported event kind: %s", p.Kind))
	}
	if p.StatusKey == "" {
		return nil, common.NewValidationError("status_key is required")
	}

	ev := &Event{
		Kind:      p.Kind,
		StatusKey: p.StatusKey,
		ExtraVars: p.ExtraVars,
	}

	switch p.Kind {
	case KindOrderStatusChanged:
		if p.Order == nil {
			return nil, common.NewValidationError("order is required for " + string(p.Kind))
		}
		ev.Context = OrderContext{Order: p.Order}
	case KindSubscriptionStatusChanged:
		if p.Subscription == nil {
			return nil, common.NewValidationError("subscription is required for " + string(p.Kind))
		}
		ev.Context = SubscriptionContext{Subscription: p.Subscription}
	case KindUserRegistered, KindUserRoleChanged:
		if p.User == nil {
			return nil, common.NewValidationError("user is required for " + string(p.Kind))
		}
		ev.Context = UserContext{User: p.User}
	}

	return ev, nil
}

// OrderSnapshot is a point-in-time copy of an order.
type OrderSnapshot struct {
	OrderID     int64      `json:"id"`
	OrderNumber string     `json:"number"`
	DateCreated time.Time  `json:"date_created"`
	Total       string     `json:"formatted_total"`
	FirstName   string     `json:"billing_first_name"`
	FullName    string     `json:"billing_full_name"`
	Phone       string     `json:"billing_phone"`
	LineItems   []LineItem `json:"items"`
}

var _ OrderAccessor = (*OrderSnapshot)(nil)

func (o *OrderSnapshot) ID() int64                { return o.OrderID }
func (o *OrderSnapshot) Number() string           { return o.OrderNumber }
func (o *OrderSnapshot) CreatedAt() time.Time     { return o.DateCreated }
func (o *OrderSnapshot) FormattedTotal() string   { return o.Total }
func (o *OrderSnapshot) BillingFirstName() string { return o.FirstName }
func (o *OrderSnapshot) BillingFullName() string  { return o.FullName }
func (o *OrderSnapshot) BillingPhone() string     { return o.Phone }
func (o *OrderSnapshot) Items() []LineItem        { return o.LineItems }

// SubscriptionSnapshot is a point-in-time copy of a subscription and its parent order.
type SubscriptionSnapshot struct {
	SubscriptionID int64          `json:"id"`
	Status         string         `json:"status_name"`
	DateCreated    time.Time      `json:"date_created"`
	NextPayment    time.Time      `json:"next_payment"`
	FirstName      string         `json:"billing_first_name"`
	FullName       string         `json:"billing_full_name"`
	Phone          string         `json:"billing_phone"`
	ParentOrder    *OrderSnapshot `json:"parent_order,omitempty"`
}

var _ SubscriptionAccessor = (*SubscriptionSnapshot)(nil)

func (s *SubscriptionSnapshot) ID() int64                  { return s.SubscriptionID }
func (s *SubscriptionSnapshot) StatusName() string         { return s.Status }
func (s *SubscriptionSnapshot) StartDate() time.Time       { return s.DateCreated }
func (s *SubscriptionSnapshot) NextPaymentDate() time.Time { return s.NextPayment }
func (s *SubscriptionSnapshot) BillingFirstName() string   { return s.FirstName }
func (s *SubscriptionSnapshot) BillingFullName() string    { return s.FullName }
func (s *SubscriptionSnapshot) BillingPhone() string       { return s.Phone }

// Parent returns the parent order, or nil. A nil *OrderSnapshot must not leak
// out as a non-nil interface.
func (s *SubscriptionSnapshot) Parent() OrderAccessor {
	if s.ParentOrder == nil {
		return nil
	}
	return s.ParentOrder
}

// UserSnapshot is a point-in-time copy of a user account.
type UserSnapshot struct {
	UserID   int64  `json:"id"`
	Username string `json:"login"`
	Mail     string `json:"email"`
	Display  string `json:"display_name"`
	Phone    string `json:"billing_phone"`
}

var _ UserAccessor = (*UserSnapshot)(nil)

func (u *UserSnapshot) ID() int64            { return u.UserID }
func (u *UserSnapshot) Login() string        { return u.Username }
func (u *UserSnapshot) Email() string        { return u.Mail }
func (u *UserSnapshot) DisplayName() string  { return u.Display }
func (u *UserSnapshot) BillingPhone() string { return u.Phone }
