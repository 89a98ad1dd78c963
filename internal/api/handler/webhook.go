package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/mcoot/kingdom-bot/internal/api/request"
	"github.com/mcoot/kingdom-bot/internal/api/response"
	"github.com/mcoot/kingdom-bot/internal/middleware"
	"github.com/mcoot/kingdom-bot/internal/model"
)

// MaxBodyBytes limits the webhook request body
const MaxBodyBytes = 200 << 10

// Dispatcher routes one inbound event to the plugins
type Dispatcher interface {
	Handle(ctx context.Context, ev model.Event) (model.Response, error)
}

// WebhookHandler handles messages posted by the gateway
type WebhookHandler struct {
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(dispatcher Dispatcher, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
		logger:     logger.With(slog.String("component", "webhook")),
	}
}

// Handle handles POST /
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	var req request.WebhookRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Failure(w, http.StatusRequestEntityTooLarge)
			return
		}
		h.logger.Debug("rejected malformed webhook body",
			slog.String("request_id", middleware.RequestID(r.Context())),
			slog.String("error", err.Error()),
		)
		response.Failure(w, http.StatusBadRequest)
		return
	}

	resp, err := h.dispatcher.Handle(r.Context(), req.Query.Event())
	if err != nil {
		h.logger.Error("webhook dispatch failed",
			slog.String("request_id", middleware.RequestID(r.Context())),
			slog.String("error", err.Error()),
		)
		response.Failure(w, http.StatusInternalServerError)
		return
	}

	response.JSON(w, http.StatusOK, response.RepliesFromModel(resp))
}

// Health handles GET /health
func Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{OK: true})
}

// Banner handles GET /
func Banner(w http.ResponseWriter, _ *http.Request) {
	response.Text(w, http.StatusOK, response.Banner)
}
