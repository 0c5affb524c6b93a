package dashboard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()

	event := WidgetEvent{AreaCode: AdminMainArea, Reason: "add"}
	require.NoError(t, hook.WidgetUpdated(context.Background(), event))

	select {
	case got := <-ch:
		assert.Equal(t, event, got)
	default:
		t.Fatal("expected event to be delivered")
	}
}

func TestBroadcastHookCancelIsIdempotent(t *testing.T) {
	hook := NewBroadcastHook()
	_, cancel := hook.Subscribe()
	assert.Equal(t, 1, hook.Subscribers())
	cancel()
	cancel()
	assert.Equal(t, 0, hook.Subscribers())
}

func TestBroadcastHookDropsWhenSubscriberIsFull(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	for range broadcastBuffer + 5 {
		require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{Reason: "x"}))
	}
	assert.Len(t, ch, broadcastBuffer)
}

func TestForViewerFiltersByPanel(t *testing.T) {
	sellerOrders := WidgetEvent{Resource: "seller.orders", Reason: "accept"}
	adminReturns := WidgetEvent{Resource: "admin.returns", Reason: "classify"}
	shared := WidgetEvent{AreaCode: "shared.overview", Reason: "add"}

	seller := ForViewer(sellerViewer)
	assert.True(t, seller(sellerOrders))
	assert.False(t, seller(adminReturns))
	assert.True(t, seller(shared))

	admin := ForViewer(adminViewer)
	assert.True(t, admin(sellerOrders))
	assert.True(t, admin(adminReturns))
}

func TestBroadcastHookServeWebSocket(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hook.WidgetUpdated(context.Background(), WidgetEvent{Resource: "buyer.returns", Reason: "request"}))

	var got WidgetEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "buyer.returns", got.Resource)
	assert.Equal(t, "request", got.Reason)
}
