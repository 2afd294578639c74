package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/openjus/balcao/internal/dialog"
	"github.com/openjus/balcao/internal/feedback"
)

// maxBodyBytes caps request bodies on the public API routes.
const maxBodyBytes = 64 << 10

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// chatResponse carries the conversation status as the numeric contract codes
// (200 normal, 204 ended, 205 handoff) in the body; the transport-level HTTP
// status stays 200 for every successful turn.
type chatResponse struct {
	Response   string  `json:"response"`
	Confidence float64 `json:"confidence"`
	Status     int     `json:"status"`
	StatusText string  `json:"status_text"`
	SessionID  string  `json:"session_id"`
	QuestionID string  `json:"question_id"`
	ResponseID string  `json:"response_id"`
}

// statusCode maps a dialog status onto the chat API's numeric codes.
func statusCode(s dialog.Status) int {
	switch s {
	case dialog.StatusEnded:
		return 204
	case dialog.StatusHandoff:
		return 205
	default:
		return 200
	}
}

// handleChat runs one dialog turn for an API client.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.UserID == "" {
		req.UserID = "api:" + uuid.NewString()
	}

	reply := s.engine.HandleMessage(r.Context(), req.UserID, req.Message)

	writeJSON(w, http.StatusOK, chatResponse{
		Response:   reply.Text,
		Confidence: reply.Confidence,
		Status:     statusCode(reply.Status),
		StatusText: reply.Status.String(),
		SessionID:  reply.SessionID,
		QuestionID: reply.QuestionID,
		ResponseID: reply.ResponseID,
	})
}

type feedbackRequest struct {
	UserID     string `json:"user_id"`
	QuestionID string `json:"question_id"`
	ResponseID string `json:"response_id"`
	Rating     *int   `json:"rating"`
	Comments   string `json:"comments,omitempty"`
}

// handleFeedback records one rating of a previous response.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	switch {
	case req.UserID == "":
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	case req.ResponseID == "":
		writeError(w, http.StatusBadRequest, "response_id is required")
		return
	case req.Rating == nil || (*req.Rating != 0 && *req.Rating != 1):
		writeError(w, http.StatusBadRequest, "rating must be 0 or 1")
		return
	}

	err := s.feedback.Submit(r.Context(), feedback.Entry{
		UserID:     req.UserID,
		QuestionID: req.QuestionID,
		ResponseID: req.ResponseID,
		Rating:     *req.Rating,
		Comments:   req.Comments,
	})
	switch {
	case errors.Is(err, feedback.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "feedback already submitted for this response, try again later")
		return
	case err != nil:
		slog.Error("feedback submit failed", "user", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to record feedback")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// handleFeedbackStats reports aggregate feedback numbers.
func (s *Server) handleFeedbackStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.feedback.Stats(r.Context())
	if err != nil {
		slog.Error("feedback stats failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleWhatsAppVerify answers the Graph API subscription handshake.
func (s *Server) handleWhatsAppVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("hub.mode") == "subscribe" && q.Get("hub.verify_token") == s.cfg.Channels.WhatsApp.VerifyToken {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, q.Get("hub.challenge"))
		return
	}
	writeError(w, http.StatusForbidden, "verification failed")
}

// handleWhatsAppWebhook forwards a Graph API delivery to the channel.
func (s *Server) handleWhatsAppWebhook(w http.ResponseWriter, r *http.Request) {
	s.forwardWebhook(w, r, s.whatsappWebhook, "whatsapp")
}

// handleLiveChatWebhook forwards a desk delivery to the channel.
func (s *Server) handleLiveChatWebhook(w http.ResponseWriter, r *http.Request) {
	s.forwardWebhook(w, r, s.livechatWebhook, "livechat")
}

func (s *Server) forwardWebhook(w http.ResponseWriter, r *http.Request, ch WebhookChannel, name string) {
	if ch == nil {
		writeError(w, http.StatusNotFound, name+" channel not enabled")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body failed")
		return
	}

	// Webhook senders retry on non-2xx; parse failures are logged and acked
	// so a malformed event does not wedge the delivery queue.
	if err := ch.HandleWebhook(body); err != nil {
		slog.Warn("webhook processing failed", "channel", name, "error", err)
	}
	w.WriteHeader(http.StatusOK)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
