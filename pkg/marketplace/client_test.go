package marketplace

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-market-dashboard/components/status"
)

func TestHTTPClientAdminUsers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/users" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("expected auth header, got %s", got)
		}
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "100", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{
			"users": [
				{"id":"1","name":"Amara","role":"seller"},
				{"id":"2","name":"Tunde","role":"buyer"},
				{"id":"3","name":"Ngozi","role":"customer"}
			],
			"pagination": {"total":3,"pages":1,"sellerCount":1,"buyerCount":2}
		}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL, Token: "secret"})
	require.NoError(t, err)

	page, err := client.AdminUsers(context.Background(), 1, 100)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 1, page.Pagination.Pages)
	assert.Equal(t, 1, page.SellerCount)
	assert.Equal(t, 2, page.BuyerCount)
	assert.Equal(t, status.RoleBuyer, page.Items[2].Role)
}

func TestHTTPClientTokenSource(t *testing.T) {
	var seen string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"data":{"items":[],"pagination":{"pages":0}}}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{
		BaseURL:     server.URL,
		TokenSource: func(context.Context) string { return "seller-token" },
	})
	require.NoError(t, err)

	page, err := client.SellerOrders(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, "Bearer seller-token", seen)
	assert.Equal(t, 1, page.Pagination.Pages)
	assert.Empty(t, page.Items)
}

func TestHTTPClientNon2xxIsFetchFailed(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusInternalServerError} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"message":"nope"}`))
		}))

		client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
		require.NoError(t, err)
		_, err = client.AdminOrders(context.Background(), 1, 20)
		server.Close()

		require.Error(t, err)
		assert.True(t, IsFetchFailed(err), "code %d", code)
		assert.True(t, goerrors.IsRetryableError(err))
		assert.Equal(t, "nope", Detail(err))
	}
}

func TestRemoteMessageTruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("a", maxRemoteMessage-1) + "é" + strings.Repeat("b", 50)

	msg := remoteMessage([]byte(body))
	assert.True(t, utf8.ValidString(msg))
	assert.Equal(t, strings.Repeat("a", maxRemoteMessage-1), msg)

	short := "échec du serveur"
	assert.Equal(t, short, remoteMessage([]byte(short)))
	assert.Equal(t, "bad token", remoteMessage([]byte(`{"error":"bad token"}`)))
}

func TestHTTPClientTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewHTTPClient(HTTPConfig{BaseURL: url})
	require.NoError(t, err)
	_, err = client.BusinessIntelligence(context.Background())
	require.Error(t, err)
	assert.True(t, IsFetchFailed(err))
	assert.Equal(t, FetchFailedMessage, Detail(err))
}

func TestHTTPClientWriteRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/seller/orders/ord-1/reject", r.URL.Path)
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "out of stock", body["reason"])
		_, _ = w.Write([]byte(`{"success":false,"message":"order already shipped"}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	require.NoError(t, err)
	_, err = client.RejectOrder(context.Background(), "ord-1", "out of stock")
	require.Error(t, err)
	assert.False(t, IsFetchFailed(err))
	assert.Equal(t, "order already shipped", Detail(err))
}

func TestHTTPClientCreateCouponDecodesData(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in CreateCouponInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, status.CouponFixed, in.Type)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": "created",
			"data":    map[string]any{"id": "c1", "code": in.Code, "type": "fixed", "value": in.Value, "usedCount": 0},
		})
	}))
	t.Cleanup(server.Close)

	client, err := NewHTTPClient(HTTPConfig{BaseURL: server.URL})
	require.NoError(t, err)
	coupon, err := client.CreateCoupon(context.Background(), CreateCouponInput{Code: "SAVE5", Type: status.CouponFixed, Value: 500})
	require.NoError(t, err)
	assert.Equal(t, "c1", coupon.ID)
	assert.Equal(t, 500.0, coupon.Value)
	assert.Zero(t, coupon.UsedCount)
}

func TestNewHTTPClientRequiresBaseURL(t *testing.T) {
	_, err := NewHTTPClient(HTTPConfig{})
	assert.Error(t, err)
}
