package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"itinera/globals"
)

const channel = "itinerary-notifications"

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func startWorker(t *testing.T, client *redis.Client, hub *Hub) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	w := NewWorker(client, channel, hub, nil)
	go w.Run(ctx)
	select {
	case <-w.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not subscribe")
	}
}

func TestPublishReachesSubscribedHub(t *testing.T) {
	_, client := newRedis(t)
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()
	startWorker(t, client, hub)

	c := &Client{Send: make(chan []byte, 4), UserID: "m1"}
	hub.Register(c)

	pub := NewPublisher(client, channel, nil)
	err := pub.Send(context.Background(), []string{"m1"}, "Trip started", "Da Nang has started", map[string]string{"itinerary_id": "it-1"})
	require.NoError(t, err)

	select {
	case raw := <-c.Send:
		var n Notification
		require.NoError(t, json.Unmarshal(raw, &n))
		assert.Equal(t, "Trip started", n.Title)
		assert.Equal(t, "it-1", n.Metadata["itinerary_id"])
		assert.NotEmpty(t, n.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for notification")
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	mr, client := newRedis(t)
	core, logs := observer.New(zap.WarnLevel)
	pub := NewPublisher(client, channel, zap.New(core))
	mr.Close()

	ctx := context.Background()
	for i := 0; i < breakerConsecutiveFailures; i++ {
		err := pub.Send(ctx, []string{"m1"}, "t", "m", nil)
		require.Error(t, err)
		assert.False(t, errors.Is(err, gobreaker.ErrOpenState))
	}
	assert.Equal(t, gobreaker.StateOpen, pub.State())

	err := pub.Send(ctx, []string{"m1"}, "t", "m", nil)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, 1, logs.FilterMessage("notification breaker state changed").Len())
}

func TestWebsocketStream(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	handle := Handler(hub, nil)
	router := httprouter.New()
	router.GET("/ws/notifications", func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		ctx := context.WithValue(r.Context(), globals.UserIDKey, r.URL.Query().Get("user"))
		handle(w, r.WithContext(ctx), ps)
	})
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications?user=m1"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Online("m1") == 1 }, 2*time.Second, 10*time.Millisecond)
	hub.Deliver("m1", []byte(`{"title":"hi"}`))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"hi"}`, string(msg))

	resp, err := http.Get(srv.URL + "/ws/notifications")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
