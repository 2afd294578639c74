// Package gateway is the HTTP surface of the service: the chat API, feedback
// endpoints, channel webhooks and the browser websocket channel.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/openjus/balcao/internal/config"
	"github.com/openjus/balcao/internal/engine"
	"github.com/openjus/balcao/internal/feedback"
)

// WebhookChannel is implemented by channel adapters that receive traffic on
// a gateway webhook route.
type WebhookChannel interface {
	HandleWebhook(body []byte) error
}

// Server is the gateway HTTP server.
type Server struct {
	cfg      *config.Config
	engine   *engine.Engine
	feedback *feedback.Service

	whatsappWebhook WebhookChannel
	livechatWebhook WebhookChannel

	upgrader    websocket.Upgrader
	rateLimiter *RateLimiter

	httpServer *http.Server
	mux        *http.ServeMux
}

// NewServer creates the gateway server.
func NewServer(cfg *config.Config, eng *engine.Engine, fb *feedback.Service) *Server {
	s := &Server{
		cfg:      cfg,
		engine:   eng,
		feedback: fb,
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		// Browser widget is embedded on court sites; origin policy is
		// enforced upstream by the reverse proxy.
		CheckOrigin: func(*http.Request) bool { return true },
	}

	s.rateLimiter = NewRateLimiter(cfg.Gateway.RateLimitRPM, 5)
	return s
}

// SetWhatsAppWebhook wires the WhatsApp adapter into POST /webhooks/whatsapp.
func (s *Server) SetWhatsAppWebhook(c WebhookChannel) { s.whatsappWebhook = c }

// SetLiveChatWebhook wires the live chat adapter into POST /webhooks/livechat.
func (s *Server) SetLiveChatWebhook(c WebhookChannel) { s.livechatWebhook = c }

// BuildMux creates and caches the HTTP mux with all routes registered.
func (s *Server) BuildMux() *http.ServeMux {
	if s.mux != nil {
		return s.mux
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /v1/chat", s.withAuth(s.handleChat))
	mux.HandleFunc("POST /v1/feedback", s.withAuth(s.handleFeedback))
	mux.HandleFunc("GET /v1/feedback/stats", s.withAuth(s.handleFeedbackStats))

	mux.HandleFunc("GET /webhooks/whatsapp", s.handleWhatsAppVerify)
	mux.HandleFunc("POST /webhooks/whatsapp", s.handleWhatsAppWebhook)
	mux.HandleFunc("POST /webhooks/livechat", s.handleLiveChatWebhook)

	if s.cfg.Channels.Web.Enabled {
		mux.HandleFunc("/ws", s.handleWebSocket)
	}

	s.mux = mux
	return mux
}

// Start begins listening. Blocks until ctx is cancelled or the listener
// fails.
func (s *Server) Start(ctx context.Context) error {
	mux := s.BuildMux()

	addr := fmt.Sprintf("%s:%d", s.cfg.Gateway.Host, s.cfg.Gateway.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	slog.Info("gateway starting", "addr", addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("gateway server: %w", err)
	}
	return nil
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"ok"}`)
}

// withAuth wraps a handler with optional bearer token auth and per-client
// rate limiting.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := s.cfg.Gateway.Token; token != "" {
			if r.Header.Get("Authorization") != "Bearer "+token {
				writeError(w, http.StatusUnauthorized, "invalid or missing token")
				return
			}
		}

		if !s.rateLimiter.Allow(clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next(w, r)
	}
}

// clientKey identifies a client for rate limiting: explicit user header
// first, remote address otherwise.
func clientKey(r *http.Request) string {
	if id := r.Header.Get("X-User-ID"); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// StartTestServer creates a listener on 127.0.0.1:0 and returns the actual
// address and a start function. Used for integration tests.
func StartTestServer(s *Server, ctx context.Context) (addr string, start func()) {
	mux := s.BuildMux()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		panic("listen: " + err.Error())
	}

	s.httpServer = &http.Server{Handler: mux}
	addr = ln.Addr().String()

	start = func() {
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			s.httpServer.Shutdown(shutdownCtx)
		}()
		s.httpServer.Serve(ln)
	}

	return addr, start
}
