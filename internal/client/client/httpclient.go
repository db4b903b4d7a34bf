package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/TanmayDhobale/splvault/internal/common"
	"github.com/TanmayDhobale/splvault/internal/host"
)

// HTTPClient talks to the vault daemon's HTTP API. The operator token is
// attached to every request; mint a new client to rotate it.
type HTTPClient struct {
	baseURL string
	token   string
	httpc   *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *HTTPClient) Close() error {
	c.httpc.CloseIdleConnections()
	return nil
}

// do runs one request cycle: marshal in (when non-nil), attach the token,
// map non-2xx responses to errors, decode the body into out (when non-nil).
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeError maps a non-2xx response to a sentinel where the category is
// unambiguous and to an APIError otherwise.
func decodeError(resp *http.Response) error {
	var body struct {
		Error string  `json:"error"`
		Code  *uint32 `json:"code,omitempty"`
	}
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	}
	return &APIError{Status: resp.StatusCode, Message: msg, Code: body.Code}
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var res struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/healthz", nil, &res); err != nil {
		return err
	}
	if res.Status != "ok" {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) SubmitUnit(ctx context.Context, signed *host.SignedUnit) (*UnitResult, error) {
	var res UnitResult
	if err := c.do(ctx, http.MethodPost, "/v1/units", signed, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) SeedAccounts(ctx context.Context, accounts []Account) (int, error) {
	req := struct {
		Accounts []Account `json:"accounts"`
	}{Accounts: accounts}

	var res struct {
		Seeded int `json:"seeded"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/accounts", req, &res); err != nil {
		return 0, err
	}
	return res.Seeded, nil
}

func (c *HTTPClient) ListVaults(ctx context.Context) ([]Vault, error) {
	var res []Vault
	if err := c.do(ctx, http.MethodGet, "/v1/vaults", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *HTTPClient) GetVault(ctx context.Context, address string) (*Vault, error) {
	var res Vault
	if err := c.do(ctx, http.MethodGet, "/v1/vaults/"+address, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *HTTPClient) ListBalances(ctx context.Context, address string) ([]Balance, error) {
	var res []Balance
	if err := c.do(ctx, http.MethodGet, "/v1/vaults/"+address+"/balances", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *HTTPClient) GetAccount(ctx context.Context, address string) (*Account, error) {
	var res Account
	if err := c.do(ctx, http.MethodGet, "/v1/accounts/"+address, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
