package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/taigrr/avatarfit/internal/studio"
)

// broadcast sends st to all connected websocket clients.
func (s *Server) broadcast(st studio.State) {
	data, err := json.Marshal(st)
	if err != nil {
		s.log.Error("marshal state", zap.Error(err))
		return
	}

	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()

	for client := range s.clients {
		if err := client.WriteMessage(websocket.TextMessage, data); err != nil {
			s.log.Debug("websocket write", zap.Error(err))
			client.Close()
			delete(s.clients, client)
		}
	}
}

func (s *Server) closeClients() {
	s.clientsMutex.Lock()
	defer s.clientsMutex.Unlock()
	for client := range s.clients {
		client.Close()
		delete(s.clients, client)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade", zap.Error(err))
		return
	}

	// Register and send the current state under the same lock so no
	// broadcast can slip in between.
	s.clientsMutex.Lock()
	s.clients[conn] = true
	data, _ := json.Marshal(s.session.State())
	err = conn.WriteMessage(websocket.TextMessage, data)
	s.clientsMutex.Unlock()
	if err != nil {
		s.drop(conn)
		return
	}
	s.log.Debug("websocket client connected", zap.String("remote", r.RemoteAddr))

	defer func() {
		s.drop(conn)
		s.log.Debug("websocket client disconnected", zap.String("remote", r.RemoteAddr))
	}()

	// Clients only read; incoming messages just keep the connection alive.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) drop(conn *websocket.Conn) {
	s.clientsMutex.Lock()
	delete(s.clients, conn)
	s.clientsMutex.Unlock()
	conn.Close()
}
