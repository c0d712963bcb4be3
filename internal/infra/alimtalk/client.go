package alimtalk

import (
	"bytes"
	"context"
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
	channelName  = "alimtalk"
	sendEndpoint = "/send/alimtalk"
)

var _ notification.AlimtalkSender = (*Client)(nil)

// Client sends Kakao Alimtalk template messages.
type Client struct {
	baseURL    string
	httpClient *http.Client
	observer   notification.BalanceObserver
}

// NewClient creates a new Alimtalk client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetBalanceObserver registers the observer that receives every completed
// response body.
func (c *Client) SetBalanceObserver(o notification.BalanceObserver) {
	c.observer = o
}

type sendPayload struct {
	SenderKey    string            `json:"senderKey"`
	TemplateCode string            `json:"templateCode"`
	Recipient    string            `json:"recipient"`
	Variables    map[string]string `json:"variables"`
}

// Send delivers one template message. creds.Secret is the Kakao sender key.
func (c *Client) Send(ctx context.Context, creds notification.Credentials, msg *notification.AlimtalkMessage) (*notification.ChannelResult, error) {
	if !creds.Complete() {
		return nil, common.NewInvalidCredentialsError(channelName)
	}

	jsonData, err := json.Marshal(sendPayload{
		SenderKey:    creds.Secret,
		TemplateCode: msg.TemplateCode,
		Recipient:    msg.To,
		Variables:    wireVariables(msg.Variables),
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling alimtalk payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+sendEndpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.APIKey)

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

// wireVariables wraps each key in the #{...} form Alimtalk templates use.
func wireVariables(vars map[string]string) map[string]string {
	out := make(map[string]string, len(vars))
	for k, v := range vars {
		if !strings.HasPrefix(k, "#{") {
			k = "#{" + k + "}"
		}
		out[k] = v
	}
	return out
}
