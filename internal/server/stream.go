package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultStreamInterval = 60 * time.Second
	streamWriteTimeout    = 5 * time.Second
	streamLoadTimeout     = 30 * time.Second
)

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			host := strings.ToLower(strings.TrimSpace(r.Host))
			if strings.ToLower(strings.TrimSpace(u.Host)) == host {
				return true
			}
			for _, allowed := range s.corsOrigins {
				if allowed == "*" || strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// handleStream pushes the full schedule on connect and then on every stream
// interval until the client goes away.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug().Err(err).Msg("websocket upgrade")
		return
	}
	s.serveStream(conn)
}

func (s *Server) serveStream(conn *websocket.Conn) {
	defer conn.Close()

	if err := writeStreamPayload(conn, s.streamPayload()); err != nil {
		return
	}

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ticker.C:
			if err := writeStreamPayload(conn, s.streamPayload()); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (s *Server) streamPayload() any {
	ctx, cancel := context.WithTimeout(context.Background(), streamLoadTimeout)
	defer cancel()
	outage, err := s.loadOutage(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("load outage data for stream")
		return outageError(err)
	}
	return s.outagePayload(outage)
}

func writeStreamPayload(conn *websocket.Conn, payload any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
	return conn.WriteJSON(payload)
}
