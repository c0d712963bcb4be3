package sms

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Changwoon-overview/Socialtalk/internal/common"
	"github.com/Changwoon-overview/Socialtalk/internal/domain/notification"
)

const (
	channelName  = "sms"
	sendEndpoint = "/messages/v4/send"
)

var _ notification.SMSSender = (*Client)(nil)

// Client sends SMS/LMS messages through the gateway's v4 API.
// Requests are signed with HMAC-SHA256 over date+salt using the API secret.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   notification.BalanceObserver
	now        func() time.Time
}

// NewClient creates a new SMS client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

// SetBalanceObserver registers the observer that receives every completed
// response body.
func (c *Client) SetBalanceObserver(o notification.BalanceObserver) {
	c.observer = o
}

type sendPayload struct {
	Message messagePayload `json:"message"`
}

type messagePayload struct {
	To   string `json:"to"`
	From string `json:"from"`
	Text string `json:"text"`
	Type string `json:"type"`
}

// Send delivers one message. It returns an InvalidCredentialsError without
// touching the network when the key or secret is missing.
func (c *Client) Send(ctx context.Context, creds notification.Credentials, msg *notification.SMSMessage) (*notification.ChannelResult, error) {
	if !creds.Complete() {
		return nil, common.NewInvalidCredentialsError(channelName)
	}

	jsonData, err := json.Marshal(sendPayload{Message: messagePayload{
		To:   msg.To,
		From: msg.From,
		Text: msg.Text,
		Type: string(msg.Type),
	}})
	if err != nil {
		return nil, fmt.Errorf("marshaling sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendEndpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	authz, err := c.authorization(creds)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authz)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, common.NewTransportError(channelName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max
	if err != nil {
		return nil, common.NewTransportError(channelName, fmt.Errorf("reading response: %w", err))
	}

	if c.observer != nil {
		c.observer.Observe(ctx, respBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, common.NewAPIError(channelName, resp.StatusCode, string(respBody))
	}

	return &notification.ChannelResult{
		StatusCode: resp.StatusCode,
		Body:       string(respBody),
	}, nil
}

// authorization builds the signed header value:
//
//	HMAC-SHA256 apiKey=<key>, date=<RFC3339>, salt=<hex>, signature=<hex>
func (c *Client) authorization(creds notification.Credentials) (string, error) {
	saltBytes := make([]byte, 16)
	if _, err := rand.Read(saltBytes); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}
	salt := hex.EncodeToString(saltBytes)
	date := c.now().UTC().Format(time.RFC3339)

	return fmt.Sprintf("HMAC-SHA256 apiKey=%s, date=%s, salt=%s, signature=%s",
		creds.APIKey, date, salt, Sign(creds.Secret, date, salt)), nil
}

// Sign returns hex(HMAC-SHA256(secret, date+salt)).
func Sign(secret, date, salt string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(date + salt))
	return hex.EncodeToString(mac.Sum(nil))
}
