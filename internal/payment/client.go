// Package payment talks to the hosted payment gateway: creating checkout
// sessions and parsing the signed webhook events it sends back.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SessionRequest describes one hosted-checkout attempt. The artwork id rides
// in Metadata so the completion event can be correlated back to a listing.
type SessionRequest struct {
	Title         string            `json:"title"`
	AmountMinor   int64             `json:"amount_minor"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email,omitempty"`
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Session is the gateway's ephemeral checkout object.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type Client struct {
	HTTP    *http.Client
	BaseURL string
	APIKey  string
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		BaseURL: baseURL,
		APIKey:  apiKey,
	}
}

// CreateSession asks the gateway for a hosted payment page. Gateway errors
// come back as plain errors carrying only the gateway's own message.
func (c *Client) CreateSession(ctx context.Context, sr SessionRequest) (*Session, error) {
	body, err := json.Marshal(sr)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1/checkout/sessions", c.BaseURL), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		var ge struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(res.Body).Decode(&ge); err == nil && ge.Error != "" {
			return nil, fmt.Errorf("gateway: %s", ge.Error)
		}
		return nil, fmt.Errorf("gateway: %s", res.Status)
	}

	var s Session
	if err := json.NewDecoder(res.Body).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}
