package gateway

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// wsFrame is one message on the browser websocket channel, both directions.
type wsFrame struct {
	Type       string  `json:"type"` // "message", "reply", "error"
	Text       string  `json:"text,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Status     string  `json:"status,omitempty"`
	SessionID  string  `json:"session_id,omitempty"`
	QuestionID string  `json:"question_id,omitempty"`
	ResponseID string  `json:"response_id,omitempty"`
}

const (
	wsWriteTimeout = 10 * time.Second
	wsIdleTimeout  = 20 * time.Minute
)

// handleWebSocket serves the browser chat widget. Each connection is one
// anonymous user; turns are request/response over the same socket.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = "web:" + uuid.NewString()
	}

	slog.Info("web client connected", "user", userID)
	defer slog.Info("web client disconnected", "user", userID)

	for {
		conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))

		var frame wsFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("web client read failed", "user", userID, "error", err)
			}
			return
		}

		if frame.Type != "message" || strings.TrimSpace(frame.Text) == "" {
			s.writeFrame(conn, wsFrame{Type: "error", Text: "expected a non-empty message frame"})
			continue
		}

		reply := s.engine.HandleMessage(r.Context(), userID, frame.Text)

		s.writeFrame(conn, wsFrame{
			Type:       "reply",
			Text:       reply.Text,
			Confidence: reply.Confidence,
			Status:     reply.Status.String(),
			SessionID:  reply.SessionID,
			QuestionID: reply.QuestionID,
			ResponseID: reply.ResponseID,
		})
	}
}

func (s *Server) writeFrame(conn *websocket.Conn, frame wsFrame) {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(frame); err != nil {
		slog.Warn("web client write failed", "error", err)
	}
}
