package orders

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

	"github.com/konainfatima28/Turbothrill-Webhook-Test/pkg/logging"
)

// ErrNotFound covers every lookup that did not yield an order.
var ErrNotFound = errors.New("orders: order not found")

const (
	defaultAPIVersion  = "2024-01"
	defaultHTTPTimeout = 10 * time.Second
)

const orderSearchQuery = `query($q: String!) {
  orders(first: 1, query: $q) {
    edges {
      node {
        name
        createdAt
        displayFinancialStatus
        displayFulfillmentStatus
        fulfillments(first: 1) {
          trackingInfo(first: 1) { number url company }
        }
      }
    }
  }
}`

// Order is the subset of a storefront order the bot reports back.
type Order struct {
	Name              string
	CreatedAt         time.Time
	FinancialStatus   string
	FulfillmentStatus string
	TrackingNumber    string
	TrackingURL       string
	Carrier           string
}

// Status is a human readable order state.
func (o Order) Status() string {
	s := strings.ReplaceAll(strings.ToLower(o.FulfillmentStatus), "_", " ")
	if s == "" {
		s = "processing"
	}
	if o.Carrier != "" {
		s += " via " + o.Carrier
	}
	return s
}

// Finder finds at most one order for a query.
type Finder interface {
	Lookup(ctx context.Context, q Query) (Order, error)
}

// ShopifyClient searches orders with the Admin GraphQL API.
type ShopifyClient struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	logger      *logging.Logger
}

// NewShopifyClient returns nil when the store domain or token is missing.
func NewShopifyClient(storeDomain, accessToken, apiVersion string, timeout time.Duration, logger *logging.Logger) *ShopifyClient {
	storeDomain = strings.TrimSpace(storeDomain)
	if storeDomain == "" || strings.TrimSpace(accessToken) == "" {
		return nil
	}
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	base := storeDomain
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &ShopifyClient{
		endpoint:    fmt.Sprintf("%s/admin/api/%s/graphql.json", strings.TrimRight(base, "/"), apiVersion),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type orderSearchResponse struct {
	Data struct {
		Orders struct {
			Edges []struct {
				Node struct {
					Name                     string    `json:"name"`
					CreatedAt                time.Time `json:"createdAt"`
					DisplayFinancialStatus   string    `json:"displayFinancialStatus"`
					DisplayFulfillmentStatus string    `json:"displayFulfillmentStatus"`
					Fulfillments             []struct {
						TrackingInfo []struct {
							Number  string `json:"number"`
							URL     string `json:"url"`
							Company string `json:"company"`
						} `json:"trackingInfo"`
					} `json:"fulfillments"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"orders"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Lookup runs exactly one search and returns the first match. Transport
// failures, GraphQL errors and empty results all map to ErrNotFound; the
// cause is logged.
func (c *ShopifyClient) Lookup(ctx context.Context, q Query) (Order, error) {
	if c == nil {
		return Order{}, ErrNotFound
	}
	search := q.Search()
	if search == "" {
		return Order{}, ErrNotFound
	}
	order, err := c.search(ctx, search)
	if err != nil {
		c.logger.Warn("orders: shopify lookup failed", "kind", q.Kind, "error", err)
		return Order{}, ErrNotFound
	}
	return order, nil
}

func (c *ShopifyClient) search(ctx context.Context, search string) (Order, error) {
	body, err := json.Marshal(graphQLRequest{Query: orderSearchQuery, Variables: map[string]any{"q": search}})
	if err != nil {
		return Order{}, fmt.Errorf("orders: marshal query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Order{}, fmt.Errorf("orders: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Order{}, fmt.Errorf("orders: shopify request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 256<<10))
	if err != nil {
		return Order{}, fmt.Errorf("orders: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Order{}, fmt.Errorf("orders: unexpected status %d", resp.StatusCode)
	}
	var parsed orderSearchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Order{}, fmt.Errorf("orders: decode response: %w", err)
	}
	if len(parsed.Errors) > 0 {
		return Order{}, fmt.Errorf("orders: graphql error: %s", parsed.Errors[0].Message)
	}
	edges := parsed.Data.Orders.Edges
	if len(edges) == 0 {
		return Order{}, ErrNotFound
	}
	node := edges[0].Node
	order := Order{
		Name:              node.Name,
		CreatedAt:         node.CreatedAt,
		FinancialStatus:   node.DisplayFinancialStatus,
		FulfillmentStatus: node.DisplayFulfillmentStatus,
	}
	if len(node.Fulfillments) > 0 && len(node.Fulfillments[0].TrackingInfo) > 0 {
		ti := node.Fulfillments[0].TrackingInfo[0]
		order.TrackingNumber = ti.Number
		order.TrackingURL = ti.URL
		order.Carrier = ti.Company
	}
	return order, nil
}

var _ Finder = (*ShopifyClient)(nil)
