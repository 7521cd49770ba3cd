package httpapi

import (
	"fmt"
	"html/template"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/volleyball-bot/external/telegram"
	"github.com/riskibarqy/volleyball-bot/internal/usecase"
)

var statusPage = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Volleyball Bot Status</title>
</head>
<body>
    <h1>Volleyball Bot Status</h1>
    <p><strong>Mode:</strong> {{.Mode}}</p>
    <p><strong>Telegram Bot:</strong> {{.Bot}}</p>
    <p><strong>Database:</strong> {{.Database}}</p>
</body>
</html>
`))

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) StatusPage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StatusPage")
	defer span.End()

	status := ServiceStatus{Mode: "unknown", Bot: "Not Initialized", Database: "Not Connected"}
	if h.status != nil {
		status = h.status.Status(ctx)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := statusPage.Execute(w, status); err != nil {
		h.logger.ErrorContext(ctx, "render status page failed", "error", err)
	}
}

// TelegramWebhook acknowledges a delivery as soon as it is queued. Handling
// errors are logged by the bot and never turned into retries.
func (h *Handler) TelegramWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TelegramWebhook")
	defer span.End()

	if h.dispatcher == nil {
		writeError(ctx, w, fmt.Errorf("%w: bot is not running", usecase.ErrDependencyUnavailable))
		return
	}

	var update telegram.Update
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid update payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	if err := h.dispatcher.Dispatch(ctx, update); err != nil {
		h.logger.ErrorContext(ctx, "dispatch webhook update failed", "update_id", update.UpdateID, "error", err)
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
