package orders

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShopifyLookup(t *testing.T) {
	var got graphQLRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/api/2024-01/graphql.json", r.URL.Path)
		assert.Equal(t, "shpat_test", r.Header.Get("X-Shopify-Access-Token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"orders":{"edges":[{"node":{
			"name":"#1023","createdAt":"2024-05-30T10:00:00Z",
			"displayFinancialStatus":"PAID","displayFulfillmentStatus":"IN_TRANSIT",
			"fulfillments":[{"trackingInfo":[{"number":"AWB1","url":"https://track.example/AWB1","company":"Delhivery"}]}]
		}}]}}}`))
	}))
	defer srv.Close()

	c := NewShopifyClient(srv.URL, "shpat_test", "", time.Second, nil)
	require.NotNil(t, c)

	order, err := c.Lookup(context.Background(), Query{Kind: KindOrderNumber, Value: "#1023"})
	require.NoError(t, err)
	assert.Equal(t, "#1023", order.Name)
	assert.Equal(t, "https://track.example/AWB1", order.TrackingURL)
	assert.Equal(t, "in transit via Delhivery", order.Status())
	assert.Equal(t, "name:#1023", got.Variables["q"])
	assert.Contains(t, got.Query, "orders(first: 1, query: $q)")
}

func TestShopifyLookupNotFound(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"empty edges", http.StatusOK, `{"data":{"orders":{"edges":[]}}}`},
		{"graphql error", http.StatusOK, `{"errors":[{"message":"Throttled"}]}`},
		{"server error", http.StatusInternalServerError, `oops`},
		{"malformed", http.StatusOK, `{"data":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewShopifyClient(srv.URL, "t", "2024-01", time.Second, nil)
			_, err := c.Lookup(context.Background(), Query{Kind: KindPhone, Value: "9812345678"})
			assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
		})
	}
}

func TestShopifyNotConfigured(t *testing.T) {
	c := NewShopifyClient("", "", "", 0, nil)
	assert.Nil(t, c)
	_, err := c.Lookup(context.Background(), Query{Kind: KindEmail, Value: "a@b.c"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOrderStatusDefault(t *testing.T) {
	assert.Equal(t, "processing", Order{}.Status())
	assert.Equal(t, "fulfilled", Order{FulfillmentStatus: "FULFILLED"}.Status())
}
