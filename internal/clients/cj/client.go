// Package cj is the client for the CJdropshipping catalog API. All fetch
// paths are fail-soft: a missing token or a non-success response is logged
// and surfaced as a nil payload, never as an error the caller must handle.
package cj

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the CJ API 2.0 endpoint.
	DefaultBaseURL = "https://developers.cjdropshipping.com/api2.0/v1"

	// CJ rejects token issuance more frequent than roughly once per five
	// minutes. The limiter exists to respect that constraint, not for
	// performance.
	tokenIssueInterval = 5 * time.Minute

	// Used when the token response carries neither an expiry date nor a TTL.
	defaultTokenTTL = 4 * time.Hour

	// Refresh slightly before the advertised expiry.
	tokenExpiryBuffer = time.Minute
)

// Config holds supplier API credentials and endpoint configuration.
type Config struct {
	BaseURL string
	APIKey  string
}

// Client talks to the supplier's REST API. The issued access token is cached
// in memory and reused until shortly before its expiry.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
	limiter    *rate.Limiter
	now        func() time.Time

	mu             sync.Mutex
	token          string
	tokenExpiresAt time.Time
}

// NewClient creates a supplier API client.
func NewClient(cfg Config, logger *logrus.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Every(tokenIssueInterval), 1),
		now:        time.Now,
	}
}

// ListFilters narrows a catalog list fetch.
type ListFilters struct {
	Keyword    string
	CategoryID string
	Page       int
	Size       int
}

// EnsureToken returns a valid access token, issuing a new one when the
// cached token is absent or expired. Returns "" when credentials are missing
// or issuance fails; callers must treat that as "supplier unavailable".
func (c *Client) EnsureToken(ctx context.Context) string {
	if c.apiKey == "" {
		c.logger.Warn("supplier API key is missing, catalog is unavailable")
		return ""
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.tokenExpiresAt) {
		return c.token
	}

	if !c.limiter.Allow() {
		c.logger.Warn("supplier token issuance rate limit reached")
		return ""
	}

	token, expiresAt, err := c.issueToken(ctx)
	if err != nil {
		c.logger.WithError(err).Warn("supplier token issuance failed")
		return ""
	}

	c.token = token
	c.tokenExpiresAt = expiresAt
	return token
}

func (c *Client) issueToken(ctx context.Context) (string, time.Time, error) {
	payload, err := json.Marshal(map[string]string{"apiKey": c.apiKey})
	if err != nil {
		return "", time.Time{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/authentication/getAccessToken", bytes.NewReader(payload))
	if err != nil {
		return "", time.Time{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", time.Time{}, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp struct {
		Data struct {
			AccessToken           string `json:"accessToken"`
			AccessTokenExpiryDate string `json:"accessTokenExpiryDate"`
			ExpiresIn             int64  `json:"expiresIn"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.Data.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("token response missing accessToken: %s", string(body))
	}

	return tokenResp.Data.AccessToken, c.resolveExpiry(tokenResp.Data.AccessTokenExpiryDate, tokenResp.Data.ExpiresIn), nil
}

// resolveExpiry picks the token lifetime: explicit expiry date, else a
// seconds-based TTL, else a conservative default.
func (c *Client) resolveExpiry(expiryDate string, expiresIn int64) time.Time {
	if expiryDate != "" {
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
			if t, err := time.Parse(layout, expiryDate); err == nil {
				return t.Add(-tokenExpiryBuffer)
			}
		}
	}
	if expiresIn > 0 {
		return c.now().Add(time.Duration(expiresIn)*time.Second - tokenExpiryBuffer)
	}
	return c.now().Add(defaultTokenTTL)
}

// FetchProducts fetches one page of raw catalog data. Returns nil on missing
// token or non-success status; there is no retry.
func (c *Client) FetchProducts(ctx context.Context, filters ListFilters) json.RawMessage {
	token := c.EnsureToken(ctx)
	if token == "" {
		return nil
	}

	params := url.Values{}
	if filters.Keyword != "" {
		params.Set("keyWord", filters.Keyword)
	}
	if filters.CategoryID != "" {
		params.Set("categoryId", filters.CategoryID)
	}
	page := filters.Page
	if page <= 0 {
		page = 1
	}
	size := filters.Size
	if size <= 0 {
		size = 20
	}
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))

	return c.doGet(ctx, "/product/listV2", params, token)
}

// FetchProductByID fetches raw detail data for a single product. Same
// null-on-failure policy as FetchProducts.
func (c *Client) FetchProductByID(ctx context.Context, id string) json.RawMessage {
	token := c.EnsureToken(ctx)
	if token == "" {
		return nil
	}

	params := url.Values{}
	params.Set("pid", id)

	return c.doGet(ctx, "/product/query", params, token)
}

func (c *Client) doGet(ctx context.Context, path string, params url.Values, token string) json.RawMessage {
	fullURL := c.baseURL + path
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		c.logger.WithError(err).Warn("supplier request build failed")
		return nil
	}
	req.Header.Set("CJ-Access-Token", token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("path", path).Warn("supplier fetch failed")
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.WithError(err).WithField("path", path).Warn("supplier response read failed")
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode,
			"body":   string(body),
		}).Warn("supplier fetch returned non-success status")
		return nil
	}

	return body
}
