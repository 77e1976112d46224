package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/dto"
	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/engine"
	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/store"
	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/telegram"
	"github.com/radieske/coinflip-miniapp-poc/internal/shared/config"
)

const testToken = "12345:TEST_TOKEN"

func testConfig() config.Config {
	return config.Config{
		Env:            "local",
		ServiceName:    "game-service",
		BotToken:       testToken,
		WebAppURL:      "https://game.example",
		SetupSecret:    "setup-secret",
		WebhookSecret:  "hook-secret",
		DefaultBalance: 1000,
		FeedMax:        50,
	}
}

func newTestServer(t *testing.T) (*Server, *store.Memory) {
	t.Helper()
	cfg := testConfig()
	mem := store.NewMemory(cfg.DefaultBalance, cfg.FeedMax)
	gen := engine.NewGenerator(engine.DefaultRoster, mem)
	eng := engine.New(zap.NewNop(), mem, gen, nil)
	return NewServer(zap.NewNop(), cfg, mem, eng, telegram.New(cfg.BotToken)), mem
}

func signedInitData(userJSON string) string {
	values := url.Values{
		"auth_date": {"1700000000"},
		"user":      {userJSON},
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}

	mac := hmac.New(sha256.New, []byte("WebAppData"))
	mac.Write([]byte(testToken))
	secret := mac.Sum(nil)

	mac = hmac.New(sha256.New, secret)
	mac.Write([]byte(strings.Join(pairs, "\n")))
	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))

	return values.Encode()
}

func postAPI(t *testing.T, srv *Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api", bytes.NewReader(b))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAPI_BadRequest(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postAPI(t, srv, map[string]any{"action": "teleport"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unknown action", decode[dto.ErrorResponse](t, rec).Error)
}

func TestAPI_FeedIsPublicAndEmptySafe(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postAPI(t, srv, dto.APIRequest{Action: dto.ActionFeed, Limit: 10})
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[dto.FeedResponse](t, rec)
	assert.True(t, res.OK)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}

func TestAPI_BalanceRequiresProof(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postAPI(t, srv, dto.APIRequest{Action: dto.ActionBalance})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postAPI(t, srv, dto.APIRequest{Action: dto.ActionBalance, InitData: "hash=bogus"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_BalanceLazyInit(t *testing.T) {
	srv, _ := newTestServer(t)
	initData := signedInitData(`{"id":42,"username":"alice"}`)

	rec := postAPI(t, srv, dto.APIRequest{Action: dto.ActionBalance, InitData: initData})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1000), decode[dto.BalanceResponse](t, rec).Balance)

	// idempotente sem aposta no meio
	rec = postAPI(t, srv, dto.APIRequest{Action: dto.ActionBalance, InitData: initData})
	assert.Equal(t, int64(1000), decode[dto.BalanceResponse](t, rec).Balance)
}

func TestAPI_BetValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	initData := signedInitData(`{"id":42,"username":"alice"}`)

	cases := []dto.APIRequest{
		{Action: dto.ActionBet, InitData: initData, Side: "edge", Amount: 100},
		{Action: dto.ActionBet, InitData: initData, Side: "heads", Amount: 0},
		{Action: dto.ActionBet, InitData: initData, Side: "heads", Amount: -5},
		{Action: dto.ActionBet, InitData: initData, Side: "heads", Amount: 0.4}, // floor -> 0
	}
	for _, c := range cases {
		rec := postAPI(t, srv, c)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "case %+v", c)
		assert.Equal(t, "Bad bet params", decode[dto.ErrorResponse](t, rec).Error)
	}
}

func TestAPI_BetInsufficientFunds(t *testing.T) {
	srv, mem := newTestServer(t)
	initData := signedInitData(`{"id":42,"username":"alice"}`)

	rec := postAPI(t, srv, dto.APIRequest{Action: dto.ActionBet, InitData: initData, Side: "heads", Amount: 1001})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	res := decode[dto.ErrorResponse](t, rec)
	assert.Equal(t, "Not enough balance", res.Error)
	require.NotNil(t, res.Balance)
	assert.Equal(t, int64(1000), *res.Balance)

	// saldo intacto
	bal, _ := mem.GetBalance(context.Background(), "42")
	assert.Equal(t, int64(1000), bal)
}

func TestAPI_BetRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	initData := signedInitData(`{"id":42,"username":"alice"}`)

	rec := postAPI(t, srv, dto.APIRequest{Action: dto.ActionBet, InitData: initData, Side: "TAILS", Amount: 100})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[dto.BetResponse](t, rec)
	assert.True(t, res.OK)
	assert.Contains(t, []string{"heads", "tails"}, string(res.Result))
	assert.Equal(t, int64(100), res.You.Amount)

	// saldo fecha: novo = 1000 - aposta + payout
	assert.Equal(t, int64(1000)-100+res.You.Payout, res.You.Balance)
	assert.Equal(t, res.You.Win, res.You.Payout > 0)

	// usuário presente no detalhamento, pools batem com as apostas
	var stakes int64
	found := false
	for _, p := range res.Round.Participants {
		stakes += p.Amount
		if !p.IsNPC {
			found = true
			assert.Equal(t, "@alice", p.Name)
		}
	}
	assert.True(t, found)
	assert.Equal(t, stakes, res.Round.WinnersPool+res.Round.LosersPool)

	// round publicado no feed
	rec = postAPI(t, srv, dto.APIRequest{Action: dto.ActionFeed})
	feed := decode[dto.FeedResponse](t, rec)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, res.Result, feed.Items[0].Result)
}

func TestWebhook_NonPostIsOK(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWebhook_SecretMismatch(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{}"))
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "wrong")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhook_StartSendsWebAppButton(t *testing.T) {
	var sent struct {
		ChatID      int64 `json:"chat_id"`
		ReplyMarkup struct {
			InlineKeyboard [][]struct {
				WebApp *telegram.WebAppInfo `json:"web_app"`
			} `json:"inline_keyboard"`
		} `json:"reply_markup"`
	}

	tgStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/sendMessage") {
			_ = json.NewDecoder(r.Body).Decode(&sent)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer tgStub.Close()

	srv, _ := newTestServer(t)
	srv.tg.BaseURL = tgStub.URL

	update := `{"message":{"text":"/start","chat":{"id":777}}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(update))
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "hook-secret")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(777), sent.ChatID)
	require.Len(t, sent.ReplyMarkup.InlineKeyboard, 1)
	require.NotNil(t, sent.ReplyMarkup.InlineKeyboard[0][0].WebApp)
	assert.Equal(t, "https://game.example", sent.ReplyMarkup.InlineKeyboard[0][0].WebApp.URL)
}

func TestSetup_Guards(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/setup?secret=wrong", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// config incompleta é 500, não 403
	broken := testConfig()
	broken.SetupSecret = ""
	mem := store.NewMemory(1000, 50)
	gen := engine.NewGenerator(engine.DefaultRoster, mem)
	eng := engine.New(zap.NewNop(), mem, gen, nil)
	srv2 := NewServer(zap.NewNop(), broken, mem, eng, telegram.New(broken.BotToken))

	req = httptest.NewRequest(http.MethodGet, "/setup?secret=", nil)
	rec = httptest.NewRecorder()
	srv2.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
