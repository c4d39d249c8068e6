package telegram

import (
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"study-helper/api/internal/logger"
)

// WebhookPath is a stable, unguessable path derived from the bot token.
func WebhookPath(token string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(token))
	return fmt.Sprintf("/webhook/%016x", h.Sum64())
}

// WebhookURL joins the public base URL with WebhookPath.
func WebhookURL(base, token string) string {
	return strings.TrimRight(strings.TrimSpace(base), "/") + WebhookPath(token)
}

// WebhookHandler decodes an update with parse (usually (*tgbotapi.BotAPI).HandleUpdate)
// and passes it to handle. Telegram only needs a quick 2xx, so handle must not block.
func WebhookHandler(parse func(*http.Request) (*tgbotapi.Update, error), handle func(tgbotapi.Update), log *logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		upd, err := parse(r)
		if err != nil {
			log.Warn("webhook: bad update", "error", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		handle(*upd)
		w.WriteHeader(http.StatusOK)
	})
}
