package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/goliatone/go-market-dashboard/components/status"
)

const (
	broadcastBuffer    = 16
	broadcastKeepAlive = 25 * time.Second
)

// BroadcastHook fans out widget and resource refresh events to subscribers.
// Slow subscribers drop events instead of blocking mutations.
type BroadcastHook struct {
	mu   sync.RWMutex
	subs map[int]subscription
	next int
}

type subscription struct {
	ch     chan WidgetEvent
	filter func(WidgetEvent) bool
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{subs: make(map[int]subscription)}
}

// WidgetUpdated satisfies RefreshHook and broadcasts the event.
func (h *BroadcastHook) WidgetUpdated(_ context.Context, event WidgetEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if sub.filter != nil && !sub.filter(event) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel of every event and a cancel func.
func (h *BroadcastHook) Subscribe() (<-chan WidgetEvent, func()) {
	return h.SubscribeFiltered(nil)
}

// SubscribeFiltered only delivers events accepted by filter.
func (h *BroadcastHook) SubscribeFiltered(filter func(WidgetEvent) bool) (<-chan WidgetEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan WidgetEvent, broadcastBuffer)
	h.subs[id] = subscription{ch: ch, filter: filter}
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub.ch)
			}
		})
	}
	return ch, cancel
}

// Subscribers reports the number of live subscriptions.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// ForViewer keeps events relevant to the viewer's panel. Resource events are
// prefixed with the panel role ("seller.orders"); admins receive everything.
func ForViewer(viewer ViewerContext) func(WidgetEvent) bool {
	role := viewer.Role()
	return func(event WidgetEvent) bool {
		if role == status.RoleAdmin {
			return true
		}
		scope := event.Resource
		if scope == "" {
			scope = event.AreaCode
		}
		if scope == "" {
			return true
		}
		prefix, _, _ := strings.Cut(scope, ".")
		return prefix == role.String() || prefix == "shared"
	}
}

// ViewerResolver returns the viewer behind an event stream request.
type ViewerResolver func(*http.Request) ViewerContext

func (resolve ViewerResolver) filter(r *http.Request) func(WidgetEvent) bool {
	if resolve == nil {
		return nil
	}
	return ForViewer(resolve(r))
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

// ServeWebSocket streams every event as a JSON text frame.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	h.WebSocketHandler(nil)(w, r)
}

// WebSocketHandler streams the events visible to the resolved viewer. The
// connection is pinged every broadcastKeepAlive so proxies keep it open.
func (h *BroadcastHook) WebSocketHandler(resolve ViewerResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		ping := func() error {
			return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		}
		send := func(event WidgetEvent) error { return conn.WriteJSON(event) }
		h.stream(r, resolve.filter(r), send, ping)
	}
}

// ServeSSE streams every event as Server-Sent Events.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	h.SSEHandler(nil)(w, r)
}

// SSEHandler streams the events visible to the resolved viewer. Messages are
// named after the event reason; keep-alives are SSE comments.
func (h *BroadcastHook) SSEHandler(resolve ViewerResolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Set("Content-Type", "text/event-stream")
		header.Set("Cache-Control", "no-cache")
		header.Set("Connection", "keep-alive")
		flusher, _ := w.(http.Flusher)
		flush := func() {
			if flusher != nil {
				flusher.Flush()
			}
		}
		flush()
		send := func(event WidgetEvent) error {
			payload, err := json.Marshal(event)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Reason, payload); err != nil {
				return err
			}
			flush()
			return nil
		}
		ping := func() error {
			_, err := io.WriteString(w, ": ping\n\n")
			flush()
			return err
		}
		h.stream(r, resolve.filter(r), send, ping)
	}
}

// stream forwards subscribed events through send until the client leaves,
// the subscription closes or a write fails.
func (h *BroadcastHook) stream(r *http.Request, filter func(WidgetEvent) bool, send func(WidgetEvent) error, ping func() error) {
	events, cancel := h.SubscribeFiltered(filter)
	defer cancel()
	keepAlive := time.NewTicker(broadcastKeepAlive)
	defer keepAlive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			if ping() != nil {
				return
			}
		case event, ok := <-events:
			if !ok || send(event) != nil {
				return
			}
		}
	}
}
