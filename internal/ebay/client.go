package ebay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client calls the eBay Browse item_summary search
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     *TokenCache
}

type searchResponse struct {
	ItemSummaries []itemSummary `json:"itemSummaries"`
}

type itemSummary struct {
	ItemID string `json:"itemId"`
	Title  string `json:"title"`
	Price  *struct {
		Value    string `json:"value"`
		Currency string `json:"currency"`
	} `json:"price"`
	Image *struct {
		ImageURL string `json:"imageUrl"`
	} `json:"image"`
	ItemWebURL string `json:"itemWebUrl"`
}

// NewClient creates a Browse API client that takes its tokens from tokens
func NewClient(httpClient *http.Client, baseURL string, tokens *TokenCache) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
	}
}

// NewClientFromCredentials wires a client and its token cache against baseURL
func NewClientFromCredentials(baseURL, clientID, clientSecret, scope string) *Client {
	httpClient := &http.Client{Timeout: 15 * time.Second}
	return NewClient(httpClient, baseURL, NewTokenCache(httpClient, baseURL, clientID, clientSecret, scope))
}

// Search returns fixed-price items matching keyword
func (c *Client) Search(ctx context.Context, keyword string, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", keyword)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("filter", "buyingOptions:{FIXED_PRICE}")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/buy/browse/v1/item_summary/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate()
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: browse API returned %d - %s", ErrUpstream, resp.StatusCode, string(body))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrUpstream, err)
	}

	items := make([]Item, 0, len(result.ItemSummaries))
	for _, s := range result.ItemSummaries {
		item := Item{
			EbayItemID: s.ItemID,
			Title:      s.Title,
			Price:      "0.00",
			ItemWebURL: s.ItemWebURL,
		}
		if s.Price != nil && s.Price.Value != "" {
			item.Price = s.Price.Value
		}
		if s.Image != nil {
			item.ImageURL = s.Image.ImageURL
		}
		items = append(items, item)
	}
	return items, nil
}
