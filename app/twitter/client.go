package twitter

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.twitter.com/1.1"
	defaultAuthURL = "https://api.twitter.com/oauth2/token"

	lookupResource = "/statuses/lookup"
)

// ErrQuotaExceeded is returned when the provider reports the lookup quota is
// exhausted (HTTP 429). It is the only error class callers may retry.
var ErrQuotaExceeded = errors.New("rate limit quota exceeded")

// Client talks to the document provider using application-only auth.
type Client struct {
	httpClient *http.Client
	baseURL    string
	authURL    string
	userAgent  string
	creds      Credentials

	bearerToken string
}

func NewClient(creds Credentials, httpClient *http.Client, userAgent string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    defaultBaseURL,
		authURL:    defaultAuthURL,
		userAgent:  userAgent,
		creds:      creds,
	}
}

// Authenticate exchanges the consumer credentials for a bearer token.
// Lookup and QuotaStatus call it lazily when no token is held yet.
func (c *Client) Authenticate(ctx context.Context) error {
	body := strings.NewReader("grant_type=client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, body)
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}

	key := url.QueryEscape(c.creds.ConsumerKey)
	secret := url.QueryEscape(c.creds.ConsumerSecret)
	basic := base64.StdEncoding.EncodeToString([]byte(key + ":" + secret))

	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth request failed: HTTP %d %s", resp.StatusCode, resp.Status)
	}

	var token struct {
		TokenType   string `json:"token_type"`
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("auth response contained no access token")
	}

	c.bearerToken = token.AccessToken
	return nil
}

// Lookup retrieves the documents for the given IDs in a single call. With
// options.Map set, the result contains one Status per requested ID, absence
// markers included, in request order.
func (c *Client) Lookup(ctx context.Context, ids []string, opts LookupOptions) ([]Status, error) {
	if err := c.ensureToken(ctx); err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("id", strings.Join(ids, ","))
	if opts.TweetMode != "" {
		form.Set("tweet_mode", opts.TweetMode)
	}
	form.Set("map", strconv.FormatBool(opts.Map))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/statuses/lookup.json", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("lookup: %w", ErrQuotaExceeded)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("lookup request failed: HTTP %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read lookup response: %w", err)
	}

	if opts.Map {
		return decodeMappedLookup(data, ids)
	}

	var statuses []Status
	if err := json.Unmarshal(data, &statuses); err != nil {
		return nil, fmt.Errorf("failed to decode lookup response: %w", err)
	}
	return statuses, nil
}

// decodeMappedLookup decodes the map-mode response {"id": {"<id>": doc|null}}
// into one Status per requested ID, preserving request order. IDs mapped to
// null, and IDs missing from the response entirely, become absence markers.
func decodeMappedLookup(data []byte, ids []string) ([]Status, error) {
	var envelope struct {
		ID map[string]json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode lookup response: %w", err)
	}

	statuses := make([]Status, 0, len(ids))
	for _, id := range ids {
		raw, ok := envelope.ID[id]
		if !ok || string(raw) == "null" {
			statuses = append(statuses, Status{IDStr: id, NotFound: true})
			continue
		}

		var status Status
		if err := json.Unmarshal(raw, &status); err != nil {
			return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
		}
		if status.IDStr == "" {
			status.IDStr = id
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

// QuotaStatus queries the provider's authoritative rate-limit state for the
// lookup resource.
func (c *Client) QuotaStatus(ctx context.Context) (Quota, error) {
	if err := c.ensureToken(ctx); err != nil {
		return Quota{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/application/rate_limit_status.json?resources=statuses", nil)
	if err != nil {
		return Quota{}, fmt.Errorf("failed to create quota request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Quota{}, fmt.Errorf("quota request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Quota{}, fmt.Errorf("quota request failed: HTTP %d %s", resp.StatusCode, resp.Status)
	}

	var envelope struct {
		Resources struct {
			Statuses map[string]struct {
				Limit     int   `json:"limit"`
				Remaining int   `json:"remaining"`
				Reset     int64 `json:"reset"`
			} `json:"statuses"`
		} `json:"resources"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return Quota{}, fmt.Errorf("failed to decode quota response: %w", err)
	}

	entry, ok := envelope.Resources.Statuses[lookupResource]
	if !ok {
		return Quota{}, fmt.Errorf("quota response missing %s resource", lookupResource)
	}

	return Quota{
		Limit:     entry.Limit,
		Remaining: entry.Remaining,
		ResetAt:   time.Unix(entry.Reset, 0),
	}, nil
}

func (c *Client) ensureToken(ctx context.Context) error {
	if c.bearerToken != "" {
		return nil
	}
	return c.Authenticate(ctx)
}
