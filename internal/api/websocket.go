package api

import (
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// streamTelemetry pushes the latest sample as JSON every interval until the
// client goes away or the server stops. Nothing is sent before the first
// physics step.
func (s *Server) streamTelemetry(conn *websocket.Conn) {
	s.log.Infof("telemetry stream connected: %s", conn.RemoteAddr())
	defer s.log.Infof("telemetry stream disconnected: %s", conn.RemoteAddr())

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	lastStep := -1
	for {
		select {
		case <-closed:
			return
		case <-s.done:
			return
		case <-ticker.C:
		}
		sample, ok := s.telemetry.Snapshot()
		if !ok || sample.Step == lastStep {
			continue
		}
		lastStep = sample.Step
		if err := conn.WriteJSON(sample); err != nil {
			s.log.Debugf("telemetry stream write: %v", err)
			return
		}
	}
}

// readControl accepts one CommandMsg per text frame. Malformed or out of
// range commands are answered with an error frame and otherwise ignored.
func (s *Server) readControl(conn *websocket.Conn) {
	s.log.Infof("control stream connected: %s", conn.RemoteAddr())
	for {
		mt, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warnf("control stream read: %v", err)
			}
			break
		}
		if mt != websocket.TextMessage {
			s.log.Debugf("ignoring non-text control frame (type %d)", mt)
			continue
		}

		var cmd CommandMsg
		if err := json.Unmarshal(msg, &cmd); err != nil {
			s.reply(conn, map[string]interface{}{"error": "malformed command: " + err.Error()})
			continue
		}
		p, err := s.control.Submit(cmd)
		if err != nil {
			s.reply(conn, map[string]interface{}{"error": err.Error()})
			continue
		}
		s.reply(conn, map[string]interface{}{"status": "accepted", "seq": p.Seq})
	}
	s.log.Infof("control stream disconnected: %s", conn.RemoteAddr())
}

func (s *Server) reply(conn *websocket.Conn, v interface{}) {
	if err := conn.WriteJSON(v); err != nil {
		s.log.Debugf("control stream write: %v", err)
	}
}
