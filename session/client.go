package session

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/goliatone/go-errors"

	webauth "github.com/caldris/go-webauth"
)

// Client talks to the authentication endpoints over HTTP and implements
// API. Timeouts belong to the injected http.Client, not here.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authScheme string
}

var _ API = (*Client)(nil)

type ClientOption func(*Client)

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithAuthScheme(scheme string) ClientOption {
	return func(c *Client) {
		if scheme != "" {
			c.authScheme = scheme
		}
	}
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		authScheme: "Bearer",
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

type userResponse struct {
	User *webauth.AccountSummary `json:"user"`
}

type loginResponse struct {
	Token string                  `json:"token"`
	User  *webauth.AccountSummary `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*webauth.AccountSummary, error) {
	out := userResponse{}
	payload := map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}

	if err := c.postJSON(ctx, "/auth/register", payload, &out); err != nil {
		return nil, err
	}

	return out.User, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (string, *webauth.AccountSummary, error) {
	out := loginResponse{}
	payload := map[string]string{
		"email":    email,
		"password": password,
	}

	if err := c.postJSON(ctx, "/auth/login", payload, &out); err != nil {
		return "", nil, err
	}

	return out.Token, out.User, nil
}

func (c *Client) WhoAmI(ctx context.Context, token string) (*webauth.AccountSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/me", nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to build request")
	}
	req.Header.Set("Authorization", c.authScheme+" "+token)

	out := userResponse{}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}

	return out.User, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "request failed")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "failed to read response")
	}

	if res.StatusCode >= http.StatusBadRequest {
		return apiError(res.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return errors.Wrap(err, errors.CategoryOperation, "failed to decode response")
		}
	}

	return nil
}

// apiError converts an HTTP failure into the shared error taxonomy so
// the manager can surface the server's message.
func apiError(status int, raw []byte) error {
	body := errorResponse{}
	if err := json.Unmarshal(raw, &body); err != nil || body.Error == "" {
		body.Error = http.StatusText(status)
	}

	category := errors.CategoryInternal
	switch status {
	case http.StatusUnauthorized:
		category = errors.CategoryAuth
	case http.StatusNotFound:
		category = errors.CategoryNotFound
	case http.StatusConflict:
		category = errors.CategoryConflict
	case http.StatusBadRequest:
		category = errors.CategoryValidation
	}

	return errors.New(body.Error, category).WithCode(status)
}
