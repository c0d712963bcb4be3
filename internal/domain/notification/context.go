package notification

import (
	"strconv"
	"time"
)

// dateLayout formats order and subscription dates in rendered messages.
const dateLayout = "2006-01-02"

// LineItem is one product line of an order.
type LineItem struct {
	ProductID   int64   `json:"product_id"`
	CategoryIDs []int64 `json:"category_ids"`
}

// OrderAccessor is the read-only view of a shop order.
type OrderAccessor interface {
	ID() int64
	Number() string
	CreatedAt() time.Time
	FormattedTotal() string
	BillingFirstName() string
	BillingFullName() string
	BillingPhone() string
	Items() []LineItem
}

// SubscriptionAccessor is the read-only view of a subscription.
// Parent returns nil when the subscription has no parent order.
type SubscriptionAccessor interface {
	ID() int64
	StatusName() string
	StartDate() time.Time
	NextPaymentDate() time.Time
	BillingFirstName() string
	BillingFullName() string
	BillingPhone() string
	Parent() OrderAccessor
}

// UserAccessor is the read-only view of a site user.
type UserAccessor interface {
	ID() int64
	Login() string
	Email() string
	DisplayName() string
	BillingPhone() string
}

// EventContext is the domain object an event is about. It is a closed set:
// OrderContext, SubscriptionContext and UserContext.
type EventContext interface {
	// SubjectID is the id recorded on delivery log entries.
	SubjectID() int64
	// Phone is the subject's billing phone, possibly empty.
	Phone() string

	variables(shopName string) map[string]string
}

// OrderContext wraps an order.
type OrderContext struct {
	Order OrderAccessor
}

func (c OrderContext) SubjectID() int64 { return c.Order.ID() }
func (c OrderContext) Phone() string    { return c.Order.BillingPhone() }

func (c OrderContext) variables(shopName string) map[string]string {
	return orderVariables(c.Order, shopName)
}

// SubscriptionContext wraps a subscription. Keys missing from the subscription
// table are looked up on the parent order.
type SubscriptionContext struct {
	Subscription SubscriptionAccessor
}

func (c SubscriptionContext) SubjectID() int64 { return c.Subscription.ID() }
func (c SubscriptionContext) Phone() string    { return c.Subscription.BillingPhone() }

func (c SubscriptionContext) variables(shopName string) map[string]string {
	vars := map[string]string{}
	if parent := c.Subscription.Parent(); parent != nil {
		vars = orderVariables(parent, shopName)
	}

	s := c.Subscription
	own := map[string]string{
		"subscription_id":           strconv.FormatInt(s.ID(), 10),
		"subscription_status":       s.StatusName(),
		"subscription_start_date":   formatDate(s.StartDate()),
		"subscription_next_payment": formatDate(s.NextPaymentDate()),
		"customer_name":             s.BillingFirstName(),
		"customer_fullname":         s.BillingFullName(),
		"billing_phone":             s.BillingPhone(),
		"shop_name":                 shopName,
	}
	for k, v := range own {
		vars[k] = v
	}
	return vars
}

// UserContext wraps a user account.
type UserContext struct {
	User UserAccessor
}

func (c UserContext) SubjectID() int64 { return c.User.ID() }
func (c UserContext) Phone() string    { return c.User.BillingPhone() }

func (c UserContext) variables(shopName string) map[string]string {
	u := c.User
	return map[string]string{
		"user_id":           strconv.FormatInt(u.ID(), 10),
		"user_login":        u.Login(),
		"user_email":        u.Email(),
		"user_display_name": u.DisplayName(),
		"billing_phone":     u.BillingPhone(),
		"shop_name":         shopName,
	}
}

func orderVariables(o OrderAccessor, shopName string) map[string]string {
	return map[string]string{
		"order_id":          strconv.FormatInt(o.ID(), 10),
		"order_number":      o.Number(),
		"order_date":        formatDate(o.CreatedAt()),
		"order_total":       o.FormattedTotal(),
		"customer_name":     o.BillingFirstName(),
		"customer_fullname": o.BillingFullName(),
		"billing_phone":     o.BillingPhone(),
		"shop_name":         shopName,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
