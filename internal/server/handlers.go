package server

import (
	"io"
	"net/http"
)

// HealthHandler reports liveness on /healthz.
type HealthHandler struct {
	version string
}

// NewHealthHandler creates a [HealthHandler]. The version is sent in the X-Version header.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

func (h *HealthHandler) Routes() []string {
	return []string{"/healthz"}
}

// Methods registers GET, which also answers HEAD.
func (h *HealthHandler) Methods() []string {
	return []string{http.MethodGet}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if h.version != "" {
		w.Header().Set("X-Version", h.version)
	}
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = io.WriteString(w, "ok")
}

// WebhookHandler accepts Telegram update deliveries on a single path and hands them to the bot.
type WebhookHandler struct {
	path   string
	secret string
	next   http.Handler
}

// SecretHeader is the header Telegram sends the configured webhook secret in.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// NewWebhookHandler creates a [WebhookHandler] serving path. An empty secret disables the check.
func NewWebhookHandler(path, secret string, next http.Handler) *WebhookHandler {
	if path == "" {
		path = "/webhook"
	}
	return &WebhookHandler{path: path, secret: secret, next: next}
}

func (h *WebhookHandler) Routes() []string {
	return []string{h.path}
}

func (h *WebhookHandler) Methods() []string {
	return []string{http.MethodPost}
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" && r.Header.Get(SecretHeader) != h.secret {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	h.next.ServeHTTP(w, r)
}
