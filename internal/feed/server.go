package feed

import (
	"context"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
)

const (
	defaultReadLimit    = 8 << 20
	defaultWriteTimeout = 5 * time.Second
)

// Server is a websocket endpoint the exchange connects to. Each snapshot
// envelope is answered on the same connection.
type Server struct {
	responder *Responder
	upgrader  websocket.Upgrader
}

func NewServer(responder *Responder) *Server {
	return &Server{
		responder: responder,
		upgrader:  websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }},
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(defaultReadLimit)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logs.Warnf("read feed message from %s, err: %+v", r.RemoteAddr, err)
			}
			return
		}

		var env Envelope
		var reply Envelope
		if err := sonic.ConfigStd.Unmarshal(data, &env); err != nil {
			reply = Envelope{Type: TypeError, Error: errors.Wrap(err, "decode envelope").Error()}
		} else if reply, err = s.responder.Answer(env); err != nil {
			logs.Warnf("answer seq %d, err: %+v", env.Seq, err)
		}

		payload, err := sonic.ConfigStd.Marshal(reply)
		if err != nil {
			logs.Errorf("marshal reply seq %d, err: %+v", reply.Seq, err)
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logs.Warnf("write reply seq %d, err: %+v", reply.Seq, err)
			return
		}
	}
}

// ListenAndServe serves the feed on addr under /ws until ctx is done or
// the process is shutting down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", s)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logs.Infof("feed server listening on %s", addr)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "listen feed server")
		}
		return nil
	case <-ctx.Done():
	case <-sys.Shutdown():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown feed server")
	}
	return nil
}
