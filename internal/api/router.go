package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/kingdom-bot/internal/api/handler"
	apimiddleware "github.com/mcoot/kingdom-bot/internal/api/middleware"
	"github.com/mcoot/kingdom-bot/internal/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger     *slog.Logger
	Dispatcher handler.Dispatcher
}

// NewRouter creates the webhook router
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	webhook := handler.NewWebhookHandler(cfg.Dispatcher, cfg.Logger)

	// Recovery runs inside Logging so panics are still logged with their status
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(apimiddleware.Recovery(cfg.Logger))
	r.Use(middleware.SecureHeaders)

	r.HandleFunc("/", webhook.Handle).Methods(http.MethodPost)
	r.HandleFunc("/", handler.Banner).Methods(http.MethodGet)
	r.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	return r
}
