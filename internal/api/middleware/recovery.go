package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/kingdom-bot/internal/api/response"
	"github.com/mcoot/kingdom-bot/internal/middleware"
)

// Recovery creates panic recovery middleware for the webhook.
// A panic answers 500 with an empty replies list.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	response.Failure(w, http.StatusInternalServerError)
}
