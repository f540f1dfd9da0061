package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/totegamma/misblock"
)

const (
	defaultTimeout   = 3 * time.Second
	defaultUserAgent = "misblock/1.0"
	maxErrorBody     = 4096
)

// ErrCircuitOpen is returned while the breaker rejects calls to the token service.
var ErrCircuitOpen = gobreaker.ErrOpenState

// StatusError is a non 2xx reply of the token service.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("token service returned %d", e.Code)
	}
	return fmt.Sprintf("token service returned %d: %s", e.Code, e.Message)
}

// Rejected reports whether the service refused the request itself, as opposed
// to failing to process it.
func (e *StatusError) Rejected() bool {
	return e.Code >= 400 && e.Code < 500
}

type BreakerSettings struct {
	MaxRequests  uint32
	Interval     time.Duration
	Timeout      time.Duration
	FailureRatio float64
	MinRequests  uint32
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

type Options struct {
	Timeout       time.Duration
	APIKey        string
	UserAgent     string
	Breaker       BreakerSettings
	OnStateChange func(from, to gobreaker.State)
}

// Client talks to the MIS token service that moves tokens on chain.
type Client struct {
	client    *http.Client
	breaker   *gobreaker.CircuitBreaker[[]byte]
	endpoint  string
	apiKey    string
	userAgent string
}

func New(endpoint string, opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Breaker == (BreakerSettings{}) {
		opts.Breaker = DefaultBreakerSettings()
	}

	httpClient := http.Client{
		Timeout: opts.Timeout,
	}
	c := &Client{
		client:    &httpClient,
		endpoint:  strings.TrimSuffix(endpoint, "/"),
		apiKey:    opts.APIKey,
		userAgent: opts.UserAgent,
	}
	httpClient.Transport = c

	bs := opts.Breaker
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "token-service",
		MaxRequests: bs.MaxRequests,
		Interval:    bs.Interval,
		Timeout:     bs.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bs.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= bs.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if opts.OnStateChange != nil {
				opts.OnStateChange(from, to)
			}
		},
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var se *StatusError
			return errors.As(err, &se) && se.Rejected()
		},
	})
	return c
}

func (c *Client) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return http.DefaultTransport.RoundTrip(req)
}

func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// TransferRequest moves tokens. The service applies a given IdempotencyKey
// once and answers 409 to a repeated one.
type TransferRequest struct {
	IdempotencyKey string         `json:"idempotencyKey,omitempty"`
	From           string         `json:"from"`
	To             string         `json:"to"`
	Quantity       misblock.Asset `json:"quantity"`
	Memo           string         `json:"memo"`
}

type TransferReceipt struct {
	TxID string `json:"txId"`
}

// Transfer asks the token service to move quantity from one account to another.
func (c *Client) Transfer(ctx context.Context, req TransferRequest) (TransferReceipt, error) {
	var receipt TransferReceipt
	err := c.HttpRequest(ctx, http.MethodPost, "/v1/transfers", req, &receipt)
	if err != nil {
		return TransferReceipt{}, err
	}
	return receipt, nil
}

// Health checks that the token service is reachable.
func (c *Client) Health(ctx context.Context) error {
	return c.HttpRequest(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *Client) HttpRequest(ctx context.Context, method, path string, body any, response any) error {
	if c.endpoint == "" {
		return fmt.Errorf("token service endpoint is not configured")
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %v", err)
		}
	}

	data, err := c.breaker.Execute(func() ([]byte, error) {
		var reader io.Reader = http.NoBody
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %v", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to perform request: %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return nil, &StatusError{Code: resp.StatusCode, Message: errorMessage(raw)}
		}
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %v", err)
		}
		return raw, nil
	})
	if err != nil {
		return err
	}

	if response == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, response); err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}

func errorMessage(raw []byte) string {
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}
