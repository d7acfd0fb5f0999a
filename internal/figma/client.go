package figma

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"git.home.luguber.info/inful/figicons/internal/foundation/errors"
	"git.home.luguber.info/inful/figicons/internal/version"
)

// TokenHeader carries the personal access token on every API request.
const TokenHeader = "X-Figma-Token"

// ClientConfig addresses the API.
type ClientConfig struct {
	APIURL string
	Token  string
	// Depth is sent with document reads when positive.
	Depth int
}

// Client talks to the remote design API: document reads, batch exports and
// asset downloads.
type Client struct {
	httpClient *http.Client
	apiURL     *url.URL
	token      string
	depth      int
	userAgent  string
}

// NewClient creates a Client. A nil httpClient uses http.DefaultClient.
func NewClient(cfg ClientConfig, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	u, err := url.Parse(cfg.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.ConfigError("invalid figma api url").
			WithCause(err).
			WithContext("api_url", cfg.APIURL).
			Build()
	}
	return &Client{
		httpClient: httpClient,
		apiURL:     u,
		token:      cfg.Token,
		depth:      cfg.Depth,
		userAgent:  "figicons/" + version.Version,
	}, nil
}

// newRequest builds an authenticated API request. Endpoint is relative to the
// API URL, e.g. "files/{key}".
func (c *Client) newRequest(ctx context.Context, endpoint string, query url.Values) (*http.Request, error) {
	u := *c.apiURL
	u.Path = path.Join(strings.TrimSuffix(u.Path, "/"), strings.TrimPrefix(endpoint, "/"))
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, errors.InternalError("failed to create request").
			WithCause(err).
			WithContext("url", u.String()).
			Build()
	}
	req.Header.Set(TokenHeader, c.token)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// doJSON executes an API request and decodes a 200 response into result.
// 400 and 403 mean a bad token or a missing file; everything else, transport
// failures included, is a transient service error.
func (c *Client) doJSON(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.From(errors.ErrTransientService).
			WithCause(err).
			WithContext("url", req.URL.String()).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return statusError(req, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return errors.From(errors.ErrTransientService).
			WithCause(fmt.Errorf("decode response: %w", err)).
			WithContext("url", req.URL.String()).
			Build()
	}
	return nil
}

// statusError classifies a non-200 API response.
func statusError(req *http.Request, resp *http.Response) error {
	// Read limited body for diagnostics
	limitedBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	bodyStr := strings.ReplaceAll(string(limitedBody), "\n", " ")

	b := errors.From(errors.ErrTransientService)
	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusForbidden:
		b = errors.From(errors.ErrAuthOrNotFound).
			WithContext("hint", "check the access token and the file key")
	}

	return b.
		WithContext("status", resp.StatusCode).
		WithContext("url", req.URL.String()).
		WithContext("response", bodyStr).
		Build()
}
