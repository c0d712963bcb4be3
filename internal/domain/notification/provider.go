package notification

import "context"

// SMSSender delivers SMS/LMS messages.
// Implementations live in infra/sms.
type SMSSender interface {
	// Send delivers msg using creds. A non-nil error is one of the common
	// channel errors (invalid credentials, transport, API).
	Send(ctx context.Context, creds Credentials, msg *SMSMessage) (*ChannelResult, error)
}

// AlimtalkSender delivers Alimtalk template messages.
// Implementations live in infra/alimtalk.
type AlimtalkSender interface {
	Send(ctx context.Context, creds Credentials, msg *AlimtalkMessage) (*ChannelResult, error)
}

// BalanceObserver receives the raw body of every completed channel call.
type BalanceObserver interface {
	Observe(ctx context.Context, raw []byte)
}
