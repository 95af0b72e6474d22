package tinkoff

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Method paths for the invest REST API.
const (
	MethodGetAccounts     = "tinkoff.public.invest.api.contract.v1.UsersService/GetAccounts"
	MethodGetPortfolio    = "tinkoff.public.invest.api.contract.v1.OperationsService/GetPortfolio"
	MethodGetPositions    = "tinkoff.public.invest.api.contract.v1.OperationsService/GetPositions"
	MethodGetInstrumentBy = "tinkoff.public.invest.api.contract.v1.InstrumentsService/GetInstrumentBy"
)

// RemoteAPIError wraps a transport failure, non-2xx response, or undecodable
// body from the invest API.
type RemoteAPIError struct {
	Method string
	Err    error
}

func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("tinkoff invest api error: %s: %v", e.Method, e.Err)
}

func (e *RemoteAPIError) Unwrap() error { return e.Err }

// Client issues RPC-style POST calls to the invest REST gateway. It holds no
// per-user state: the bearer token is an argument of every call, so one
// client serves concurrent requests for different users.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the given gateway base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Call posts payload as JSON to {base}/{method} with the user's bearer token
// and decodes the response into out. A nil payload is sent as `{}` — the
// gateway rejects array-encoded empty bodies. No retries: any failure is
// returned as a *RemoteAPIError.
func (c *Client) Call(ctx context.Context, token, method string, payload, out any) error {
	if payload == nil {
		payload = struct{}{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return &RemoteAPIError{Method: method, Err: fmt.Errorf("encode request: %w", err)}
	}

	url := c.baseURL + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &RemoteAPIError{Method: method, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteAPIError{Method: method, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &RemoteAPIError{Method: method, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteAPIError{
			Method: method,
			Err:    fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(data))),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &RemoteAPIError{Method: method, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
