package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Abhinavv2k5/MyPyShell-WebTerminal/pkg/metrics"
)

// handleWS answers every {"cmd": "..."} text message with the /api/exec body.
func (s *HTTPServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("ws_upgrade_failed")
		return
	}
	defer conn.Close()

	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()

	log := s.logger.WithField("requestId", requestIDFrom(r.Context()))
	log.Info("ws_session_start")
	defer log.Info("ws_session_end")

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				log.WithError(err).Debug("ws_read_failed")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var req execRequest
		var reply interface{}
		if err := json.Unmarshal(data, &req); err != nil {
			reply = errorResponse{Error: "invalid JSON message"}
		} else {
			_, reply = s.execute(r.Context(), req.Cmd)
		}
		if err := conn.WriteJSON(reply); err != nil {
			log.WithError(err).Debug("ws_write_failed")
			return
		}
	}
}
