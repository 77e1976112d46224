package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client fala com a Bot API do Telegram (sendMessage, setWebhook, menu button)
type Client struct {
	Token   string
	BaseURL string // default https://api.telegram.org
	HTTP    *http.Client
}

func New(token string) *Client {
	return &Client{
		Token:   token,
		BaseURL: "https://api.telegram.org",
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

// APIResponse é o envelope padrão da Bot API
type APIResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// Call invoca um método da Bot API com payload JSON
func (c *Client) Call(ctx context.Context, method string, payload any) (*APIResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.BaseURL, c.Token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var out APIResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("telegram %s: bad response: %w", method, err)
	}
	return &out, nil
}

// InlineKeyboardButton com suporte a web_app (o que o Mini App usa)
type InlineKeyboardButton struct {
	Text   string      `json:"text"`
	WebApp *WebAppInfo `json:"web_app,omitempty"`
}

type WebAppInfo struct {
	URL string `json:"url"`
}

type ReplyMarkup struct {
	InlineKeyboard [][]InlineKeyboardButton `json:"inline_keyboard"`
}

// SendMessage envia texto com markup opcional para um chat
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup *ReplyMarkup) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	_, err := c.Call(ctx, "sendMessage", payload)
	return err
}

// SetWebhook registra a URL de webhook; secretToken vazio é omitido
func (c *Client) SetWebhook(ctx context.Context, url, secretToken string) (*APIResponse, error) {
	payload := map[string]any{"url": url}
	if secretToken != "" {
		payload["secret_token"] = secretToken
	}
	return c.Call(ctx, "setWebhook", payload)
}

// SetChatMenuButton aponta o botão de menu do bot para o web app
func (c *Client) SetChatMenuButton(ctx context.Context, text, webAppURL string) (*APIResponse, error) {
	return c.Call(ctx, "setChatMenuButton", map[string]any{
		"menu_button": map[string]any{
			"type":    "web_app",
			"text":    text,
			"web_app": map[string]any{"url": webAppURL},
		},
	})
}

// AnswerCallbackQuery confirma um callback de botão inline
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackID string) error {
	_, err := c.Call(ctx, "answerCallbackQuery", map[string]any{
		"callback_query_id": callbackID,
	})
	return err
}

// Update é o subconjunto de update do Telegram que o webhook trata
type Update struct {
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

type Message struct {
	Text string `json:"text"`
	Chat *Chat  `json:"chat"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type CallbackQuery struct {
	ID string `json:"id"`
}
