package ws_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duskfall/internal/ws"
)

// newFeed starts a server that subscribes every websocket client to the topic
// named by the request path.
func newFeed(t *testing.T, hub *ws.Hub) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		hub.Serve(r.Context(), strings.TrimPrefix(r.URL.Path, "/"), conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, topic string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/"+topic, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	return string(data)
}

func TestHub_BroadcastReachesOnlyTopicSubscribers(t *testing.T) {
	hub := ws.NewHub(time.Second, zap.NewNop())
	srv := newFeed(t, hub)

	a1 := dial(t, srv, "battle-a")
	a2 := dial(t, srv, "battle-a")
	b := dial(t, srv, "battle-b")
	require.Eventually(t, func() bool {
		return hub.Count("battle-a") == 2 && hub.Count("battle-b") == 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, 2, hub.Broadcast("battle-a", []byte(`{"round":1}`)))
	assert.Equal(t, `{"round":1}`, read(t, a1))
	assert.Equal(t, `{"round":1}`, read(t, a2))

	n, err := hub.Publish("battle-b", map[string]int{"round": 7})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, `{"round":7}`, read(t, b))
}

func TestHub_ClientDisconnectUnsubscribes(t *testing.T) {
	hub := ws.NewHub(time.Second, zap.NewNop())
	srv := newFeed(t, hub)

	c := dial(t, srv, "battle-a")
	require.Eventually(t, func() bool { return hub.Count("battle-a") == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Close(websocket.StatusNormalClosure, "bye"))
	assert.Eventually(t, func() bool { return hub.Count("battle-a") == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.Broadcast("battle-a", []byte("x")))
}

func TestHub_CloseTopicDisconnectsSubscribers(t *testing.T) {
	hub := ws.NewHub(time.Second, zap.NewNop())
	srv := newFeed(t, hub)

	c := dial(t, srv, "battle-a")
	require.Eventually(t, func() bool { return hub.Count("battle-a") == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.CloseTopic("battle-a", "battle ended")
	assert.Equal(t, 0, hub.Count("battle-a"))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, _, err := c.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))
}

func TestHub_PublishRejectsUnencodable(t *testing.T) {
	hub := ws.NewHub(0, zap.NewNop())
	_, err := hub.Publish("battle-a", func() {})
	assert.Error(t, err)
}
