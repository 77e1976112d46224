package http

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/telegram"
)

// secret_token aceito pelo Telegram: [A-Za-z0-9_-], até 256 chars
var webhookSecretRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,256}$`)

func validWebhookSecret(s string) bool {
	return webhookSecretRe.MatchString(s)
}

// handleWebhook recebe updates do Telegram. Só reage a /start (mensagem com
// o botão do web app) e a callback queries; todo o resto é 200 "ok" para o
// Telegram não reentregar.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeText(w, http.StatusOK, "ok")
		return
	}

	if validWebhookSecret(s.cfg.WebhookSecret) {
		if got := r.Header.Get("X-Telegram-Bot-Api-Secret-Token"); got != s.cfg.WebhookSecret {
			writeText(w, http.StatusForbidden, "forbidden")
			return
		}
	}

	var update telegram.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeText(w, http.StatusOK, "ok")
		return
	}

	if msg := update.Message; msg != nil && msg.Chat != nil && strings.HasPrefix(strings.TrimSpace(msg.Text), "/start") {
		err := s.tg.SendMessage(r.Context(), msg.Chat.ID,
			"🎮 Ready! Tap the button below or Menu → Play",
			&telegram.ReplyMarkup{
				InlineKeyboard: [][]telegram.InlineKeyboardButton{{
					{Text: "Open the game", WebApp: &telegram.WebAppInfo{URL: s.cfg.WebAppURL}},
				}},
			})
		if err != nil {
			s.log.Warn("send start message", zap.Error(err))
		}
	}

	if cq := update.CallbackQuery; cq != nil && cq.ID != "" {
		if err := s.tg.AnswerCallbackQuery(r.Context(), cq.ID); err != nil {
			s.log.Warn("answer callback", zap.Error(err))
		}
	}

	writeText(w, http.StatusOK, "ok")
}

// handleSetup registra o webhook e o menu button do bot.
// Protegido por SETUP_SECRET; config incompleta é 500, não 403.
func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	if s.cfg.BotToken == "" || s.cfg.WebAppURL == "" || s.cfg.SetupSecret == "" {
		writeError(w, http.StatusInternalServerError, "Missing env vars: BOT_TOKEN / WEBAPP_URL / SETUP_SECRET", nil)
		return
	}

	if r.URL.Query().Get("secret") != s.cfg.SetupSecret {
		writeError(w, http.StatusForbidden, "Forbidden", nil)
		return
	}

	origin := requestOrigin(r)
	webhookURL := origin + "/webhook"

	menu, err := s.tg.SetChatMenuButton(r.Context(), "Play", s.cfg.WebAppURL)
	if err != nil {
		writeError(w, http.StatusBadGateway, "setChatMenuButton: "+err.Error(), nil)
		return
	}

	secretToken := ""
	if validWebhookSecret(s.cfg.WebhookSecret) {
		secretToken = s.cfg.WebhookSecret
	}
	webhook, err := s.tg.SetWebhook(r.Context(), webhookURL, secretToken)
	if err != nil {
		writeError(w, http.StatusBadGateway, "setWebhook: "+err.Error(), nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"origin":     origin,
		"webhookUrl": webhookURL,
		"menu":       menu,
		"webhook":    webhook,
	})
}

// requestOrigin reconstrói a origem pública do serviço (atrás de proxy TLS)
func requestOrigin(r *http.Request) string {
	scheme := "https"
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	} else if r.TLS == nil && strings.HasPrefix(r.Host, "localhost") {
		scheme = "http"
	}
	return scheme + "://" + r.Host
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
