package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/auth"
	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/dto"
	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/engine"
	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/metrics"
	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/store"
	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/telegram"
	"github.com/radieske/coinflip-miniapp-poc/internal/shared/config"
	"github.com/radieske/coinflip-miniapp-poc/pkg/contracts/rounds"
)

const defaultFeedLimit = 20

// Server expõe a API do Mini App (/api), o webhook do bot e o /setup
type Server struct {
	log    *zap.Logger
	cfg    config.Config
	store  store.Store
	engine *engine.Engine
	tg     *telegram.Client
}

func NewServer(log *zap.Logger, cfg config.Config, st store.Store, eng *engine.Engine, tg *telegram.Client) *Server {
	return &Server{log: log, cfg: cfg, store: st, engine: eng, tg: tg}
}

// Router retorna o roteador HTTP do serviço
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Post("/api", s.handleAPI)               // API do Mini App (balance/bet/feed)
	r.HandleFunc("/webhook", s.handleWebhook) // updates do Telegram
	r.Get("/setup", s.handleSetup)            // registra webhook + menu button
	return r
}

// handleAPI despacha o corpo único do /api pelo enum fechado de ações.
// feed é público; balance e bet exigem initData válido.
func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	var req dto.APIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Action == "" {
		writeError(w, http.StatusBadRequest, "Bad request", nil)
		return
	}

	switch req.Action {
	case dto.ActionFeed:
		s.feed(w, r, req)
	case dto.ActionBalance:
		s.balance(w, r, req)
	case dto.ActionBet:
		s.bet(w, r, req)
	default:
		writeError(w, http.StatusBadRequest, "Unknown action", nil)
	}
}

// feed é leitura pública; falha transitória do store degrada para lista vazia
func (s *Server) feed(w http.ResponseWriter, r *http.Request, req dto.APIRequest) {
	limit := req.Limit
	if limit == 0 {
		limit = defaultFeedLimit
	}

	items, err := s.store.ListRounds(r.Context(), limit)
	if err != nil {
		s.log.Warn("feed read failed", zap.Error(err))
		items = []rounds.Record{}
	}
	if items == nil {
		items = []rounds.Record{}
	}
	writeJSON(w, http.StatusOK, dto.FeedResponse{OK: true, Items: items})
}

func (s *Server) balance(w http.ResponseWriter, r *http.Request, req dto.APIRequest) {
	user, ok := s.authenticate(req)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	bal, err := s.store.GetBalance(r.Context(), user.Identity())
	if err != nil {
		s.log.Error("balance read failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal error", nil)
		return
	}
	writeJSON(w, http.StatusOK, dto.BalanceResponse{OK: true, Balance: bal})
}

func (s *Server) bet(w http.ResponseWriter, r *http.Request, req dto.APIRequest) {
	user, ok := s.authenticate(req)
	if !ok {
		metrics.BetsRejected.WithLabelValues("unauthorized").Inc()
		writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
		return
	}

	side, okSide := rounds.ParseSide(req.Side)
	amount := int64(math.Floor(req.Amount))
	if !okSide || req.Amount <= 0 || req.Amount > math.MaxInt32 || amount <= 0 {
		metrics.BetsRejected.WithLabelValues("validation").Inc()
		writeError(w, http.StatusBadRequest, "Bad bet params", nil)
		return
	}

	out, err := s.engine.PlayRound(r.Context(), engine.Bet{
		UserID: user.Identity(),
		Name:   user.DisplayName(),
		Side:   side,
		Amount: amount,
	})
	if err != nil {
		var insufficient *engine.InsufficientFundsError
		switch {
		case errors.As(err, &insufficient):
			metrics.BetsRejected.WithLabelValues("insufficient_funds").Inc()
			writeError(w, http.StatusBadRequest, "Not enough balance", &insufficient.Balance)
		case errors.Is(err, engine.ErrRoundInconsistent):
			// dinheiro já debitado: não é um erro genérico de retry
			writeError(w, http.StatusInternalServerError, "Settlement interrupted, do not retry", nil)
		default:
			s.log.Error("bet failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Internal error", nil)
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.BetResponse{
		OK:     true,
		Result: out.Record.Result,
		Coef:   out.Record.Coef,
		You: dto.YouView{
			Side:    side,
			Amount:  amount,
			Win:     out.UserWin,
			Payout:  out.UserPayout,
			Balance: out.UserBalance,
		},
		Round: dto.RoundView{
			Participants: out.Record.Participants,
			WinnersPool:  out.Record.Totals.WinnersPool,
			LosersPool:   out.Record.Totals.LosersPool,
		},
	})
}

// authenticate valida a prova de identidade do request
func (s *Server) authenticate(req dto.APIRequest) (auth.User, bool) {
	return auth.VerifyInitData(req.InitData, s.cfg.BotToken)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, balance *int64) {
	writeJSON(w, status, dto.ErrorResponse{OK: false, Error: msg, Balance: balance})
}
