package ebay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"driver-rewards/internal/logger"
	"driver-rewards/internal/metrics"
)

const (
	// tokenSkew is subtracted from expires_in so a token is never used right at expiry
	tokenSkew = 60 * time.Second

	// minTokenTTL keeps short-lived tokens cached for at least this long
	minTokenTTL = 5 * time.Second

	// refreshTimeout bounds a shared refresh, which outlives the caller that started it
	refreshTimeout = 15 * time.Second
)

// TokenCache holds an application access token obtained with the OAuth
// client-credentials grant. Concurrent callers share a single refresh.
type TokenCache struct {
	httpClient   *http.Client
	baseURL      string
	clientID     string
	clientSecret string
	scope        string
	now          func() time.Time

	mu      sync.Mutex
	token   string
	expires time.Time
	group   singleflight.Group
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// NewTokenCache creates a token cache for the given credentials
func NewTokenCache(httpClient *http.Client, baseURL, clientID, clientSecret, scope string) *TokenCache {
	if scope == "" {
		scope = DefaultScope
	}
	return &TokenCache{
		httpClient:   httpClient,
		baseURL:      strings.TrimRight(baseURL, "/"),
		clientID:     clientID,
		clientSecret: clientSecret,
		scope:        scope,
		now:          time.Now,
	}
}

// Token returns a cached token or fetches a new one once the cached token has expired
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.token != "" && c.now().Before(c.expires) {
		token := c.token
		c.mu.Unlock()
		return token, nil
	}
	c.mu.Unlock()

	ch := c.group.DoChan("token", func() (interface{}, error) {
		refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return c.refresh(refreshCtx)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// Invalidate drops the cached token, used after eBay rejects it
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	c.token = ""
	c.expires = time.Time{}
	c.mu.Unlock()
}

func (c *TokenCache) refresh(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", c.scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/identity/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: failed to fetch token: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		metrics.TokenRefreshes.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: token endpoint returned %d - %s", ErrUpstream, resp.StatusCode, string(body))
	}

	var result tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		metrics.TokenRefreshes.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: failed to decode token: %v", ErrUpstream, err)
	}
	if result.AccessToken == "" {
		metrics.TokenRefreshes.WithLabelValues("error").Inc()
		return "", fmt.Errorf("%w: token response without access_token", ErrUpstream)
	}

	ttl := time.Duration(result.ExpiresIn)*time.Second - tokenSkew
	if ttl < minTokenTTL {
		ttl = minTokenTTL
	}
	c.mu.Lock()
	c.token = result.AccessToken
	c.expires = c.now().Add(ttl)
	c.mu.Unlock()

	metrics.TokenRefreshes.WithLabelValues("ok").Inc()
	logger.Log.Debug("eBay token refreshed", zap.Duration("ttl", ttl))
	return result.AccessToken, nil
}
