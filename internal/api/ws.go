package api

import (
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/its-jojoo/ottervault/internal/adapter/storage"
)

type SafeConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewSafeConn(conn *websocket.Conn) *SafeConn {
	return &SafeConn{conn: conn}
}

func (sc *SafeConn) WriteJSON(v interface{}) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	_ = sc.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return sc.conn.WriteJSON(v)
}

func (sc *SafeConn) Close() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.conn.Close()
}

// checkOrigin allows non-browser clients and same-host pages.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

type eventMessage struct {
	storage.Change
	Items int `json:"items"`
}

// events streams one message per change to the items or query key until the
// client disconnects.
func (s *Server) events(c *gin.Context) {
	if !websocket.IsWebSocketUpgrade(c.Request) {
		RespondError(c, http.StatusBadRequest, "Require WebSocket upgrade")
		return
	}
	upgrader := websocket.Upgrader{CheckOrigin: checkOrigin}
	raw, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn := NewSafeConn(raw)
	defer conn.Close()

	changes, cancel := s.notifier.Subscribe("content-vault-*")
	defer cancel()

	// Reader loop: only used to notice the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := raw.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-s.ctx.Done():
			return
		case ch, ok := <-changes:
			if !ok {
				return
			}
			if err := conn.WriteJSON(eventMessage{Change: ch, Items: s.store.Len()}); err != nil {
				s.log.Debug().Err(err).Msg("websocket write failed")
				return
			}
		}
	}
}
