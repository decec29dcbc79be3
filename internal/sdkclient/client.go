// Package sdkclient implements api.IdentitySDK against the identity
// service's REST API. Requests are authorised with OAuth2 client
// credentials obtained when the client is configured.
package sdkclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/petrijr/sessionflow/pkg/api"
)

// TokenPath is appended to the base URL to obtain access tokens.
const TokenPath = "/oauth/token"

var errNotConfigured = errors.New("sdk not configured")

// Client is an api.IdentitySDK over HTTP. It is unusable until Configure
// succeeds.
type Client struct {
	base   *http.Client
	logger *slog.Logger

	mu      sync.RWMutex
	http    *http.Client
	baseURL string
}

var _ api.IdentitySDK = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the client used both for token requests and as the
// transport underneath the authorised client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.base = hc
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns an unconfigured Client.
func New(opts ...Option) *Client {
	c := &Client{
		base:   http.DefaultClient,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configure fetches a first access token for clientID and clientSecret and
// switches the client to baseURL. On failure the previous configuration is
// kept.
func (c *Client) Configure(ctx context.Context, baseURL, clientID, clientSecret string) error {
	baseURL = strings.TrimRight(baseURL, "/")
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return &api.SDKError{Op: "configure", Message: "invalid base URL: " + baseURL, Err: err}
	}

	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     baseURL + TokenPath,
	}

	// The token source outlives ctx, so it gets its own context carrying
	// only the base HTTP client.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, c.base)
	ts := cfg.TokenSource(tokenCtx)

	if _, err := tokenWithContext(ctx, ts); err != nil {
		return asSDKError("configure", err)
	}

	c.mu.Lock()
	c.http = oauth2.NewClient(tokenCtx, ts)
	c.baseURL = baseURL
	c.mu.Unlock()

	c.logger.Info("sdk_configured", slog.String("base_url", baseURL), slog.String("client_id", clientID))
	return nil
}

// tokenWithContext fetches a token but gives up when ctx ends.
func tokenWithContext(ctx context.Context, ts oauth2.TokenSource) (*oauth2.Token, error) {
	type result struct {
		tok *oauth2.Token
		err error
	}
	ch := make(chan result, 1)
	go func() {
		tok, err := ts.Token()
		ch <- result{tok, err}
	}()
	select {
	case r := <-ch:
		return r.tok, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) RecoverDigitalAddress(ctx context.Context, qr string) (api.LinkResult, error) {
	var out api.LinkResult
	err := c.do(ctx, "recoverDigitalAddress", http.MethodPost, "/v1/digital-address/recover", qrRequest{QR: qr}, &out)
	return out, err
}

func (c *Client) ImportDigitalAddress(ctx context.Context, qr string) (api.LinkResult, error) {
	var out api.LinkResult
	err := c.do(ctx, "importDigitalAddress", http.MethodPost, "/v1/digital-address/import", qrRequest{QR: qr}, &out)
	return out, err
}

func (c *Client) GetDevices(ctx context.Context) ([]api.Device, error) {
	var out []api.Device
	err := c.do(ctx, "getDevices", http.MethodGet, "/v1/devices", nil, &out)
	return out, err
}

func (c *Client) DeleteDevice(ctx context.Context, identifier string) error {
	return c.do(ctx, "deleteDevice", http.MethodDelete, "/v1/devices/"+url.PathEscape(identifier), nil, nil)
}

func (c *Client) GetCredentials(ctx context.Context, statuses, schemaIDs []string) ([]api.Credential, error) {
	q := url.Values{}
	for _, s := range statuses {
		q.Add("status", s)
	}
	for _, s := range schemaIDs {
		q.Add("schema", s)
	}
	path := "/v1/credentials"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out []api.Credential
	err := c.do(ctx, "getCredentials", http.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) GetLanguage(ctx context.Context) (string, error) {
	var out languageBody
	err := c.do(ctx, "getLanguage", http.MethodGet, "/v1/language", nil, &out)
	return out.Language, err
}

func (c *Client) SetLanguage(ctx context.Context, code string) (string, error) {
	var out messageBody
	err := c.do(ctx, "setLanguage", http.MethodPut, "/v1/language", languageBody{Language: code}, &out)
	return out.Message, err
}

func (c *Client) SendRecoveryEmail(ctx context.Context, email string) error {
	return c.do(ctx, "sendRecoveryEmail", http.MethodPost, "/v1/recovery-email/send", emailBody{Email: email}, nil)
}

func (c *Client) SetRecoveryEmail(ctx context.Context, email string) error {
	return c.do(ctx, "setRecoveryEmail", http.MethodPut, "/v1/recovery-email", emailBody{Email: email}, nil)
}

func (c *Client) StartCredentialVerificationProcess(ctx context.Context, transactionID string) (api.VerificationResult, error) {
	var out api.VerificationResult
	err := c.do(ctx, "startCredentialVerificationProcess", http.MethodPost, verificationPath(transactionID, "start"), nil, &out)
	return out, err
}

func (c *Client) AcceptProof(ctx context.Context, transactionID, credentialIdentifier string) (api.TransactionResult, error) {
	var out api.TransactionResult
	body := acceptBody{CredentialIdentifier: credentialIdentifier}
	err := c.do(ctx, "acceptProof", http.MethodPost, verificationPath(transactionID, "accept"), body, &out)
	return out, err
}

func (c *Client) RejectProof(ctx context.Context, transactionID string) (api.TransactionResult, error) {
	var out api.TransactionResult
	err := c.do(ctx, "rejectProof", http.MethodPost, verificationPath(transactionID, "reject"), nil, &out)
	return out, err
}

func (c *Client) DeviceBootstrappingVerification(ctx context.Context) (api.TransactionResult, error) {
	var out api.TransactionResult
	err := c.do(ctx, "deviceBootstrappingVerification", http.MethodPost, "/v1/bootstrapping", nil, &out)
	return out, err
}

func (c *Client) CheckBootstrappingStatus(ctx context.Context, transactionID string) (api.StatusResult, error) {
	var out api.StatusResult
	err := c.do(ctx, "checkBootstrappingStatus", http.MethodGet, "/v1/bootstrapping/"+url.PathEscape(transactionID), nil, &out)
	return out, err
}

func (c *Client) ProofProcess(ctx context.Context, qrData string) error {
	return c.do(ctx, "proofProcess", http.MethodPost, "/v1/proofs", qrRequest{QR: qrData}, nil)
}

func verificationPath(transactionID, verb string) string {
	return "/v1/verifications/" + url.PathEscape(transactionID) + "/" + verb
}

// do sends one JSON request. A nil in skips the body, a nil out discards
// the response body.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	c.mu.RLock()
	hc, baseURL := c.http, c.baseURL
	c.mu.RUnlock()
	if hc == nil {
		return &api.SDKError{Op: op, Message: errNotConfigured.Error(), Err: errNotConfigured}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &api.SDKError{Op: op, Err: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, body)
	if err != nil {
		return &api.SDKError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return api.NewCancelledError(ctx.Err())
		}
		return asSDKError(op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("sdk_request",
		slog.String("op", op),
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(op, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &api.SDKError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func decodeError(op string, resp *http.Response) error {
	var eb errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &eb); err != nil || eb.Error == "" {
		eb.Error = strings.TrimSpace(string(data))
	}
	if eb.Error == "" {
		eb.Error = fmt.Sprintf("%s failed with status %d", op, resp.StatusCode)
	}
	return &api.SDKError{Op: op, Status: resp.StatusCode, Message: eb.Error}
}

// asSDKError maps transport and token failures onto *api.SDKError.
func asSDKError(op string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		msg := re.ErrorDescription
		if msg == "" {
			msg = re.ErrorCode
		}
		if msg == "" {
			msg = "authorisation failed"
		}
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return &api.SDKError{Op: op, Status: status, Message: msg, Err: err}
	}
	return &api.SDKError{Op: op, Err: err}
}
