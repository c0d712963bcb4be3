package notification

// EventKind identifies which host event produced a notification.
type EventKind string

const (
	KindOrderStatusChanged        EventKind = "order_status_changed"
	KindSubscriptionStatusChanged EventKind = "subscription_status_changed"
	KindUserRegistered            EventKind = "user_registered"
	KindUserRoleChanged           EventKind = "user_role_changed"
)

// Status keys for user events. Order and subscription keys come from the host
// (e.g. "wc-completed", "subscription-cancelled").
const (
	StatusKeyUserRegister   = "user_register"
	StatusKeyUserRoleChange = "user_role_change"

	// StatusKeySubscriptionPaymentComplete is used for successful renewals.
	StatusKeySubscriptionPaymentComplete = "subscription-payment-complete"
)

// validKinds is the set of all recognized event kinds.
var validKinds = map[EventKind]bool{
	KindOrderStatusChanged:        true,
	KindSubscriptionStatusChanged: true,
	KindUserRegistered:            true,
	KindUserRoleChanged:           true,
}

// IsValidKind checks whether an event kind is recognized.
func IsValidKind(k EventKind) bool {
	return validKinds[k]
}

// Event is the unit of work entering the Dispatcher. It is built by the host
// at event time and never persisted.
type Event struct {
	Kind      EventKind
	StatusKey string
	Context   EventContext
	ExtraVars map[string]string
}

// ChannelType is the message channel recorded on a delivery log entry.
type ChannelType string

const (
	ChannelSMS      ChannelType = "SMS"
	ChannelLMS      ChannelType = "LMS"
	ChannelAlimtalk ChannelType = "Alimtalk"
)

// SMSMessage is a rendered SMS/LMS ready for the SMS client.
type SMSMessage struct {
	To   string
	From string
	Text string
	Type MessageType
}

// AlimtalkMessage is a template send request for the Alimtalk client.
type AlimtalkMessage struct {
	TemplateCode string
	To           string
	Variables    map[string]string
}

// ChannelResult is the outcome of a completed channel call.
type ChannelResult struct {
	StatusCode int
	Body       string
}
