package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/metrics"
	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/store"
	"github.com/radieske/coinflip-miniapp-poc/pkg/contracts/rounds"
)

// Participant é um apostador dentro de um round, humano ou NPC.
// Existe só durante a liquidação; nunca é persistido individualmente.
type Participant struct {
	ID     string
	Name   string
	IsNPC  bool
	Side   rounds.Side
	Amount int64
}

// InsufficientFundsError rejeita a aposta antes de qualquer débito,
// carregando o saldo atual para a resposta
type InsufficientFundsError struct {
	Balance int64
}

func (e *InsufficientFundsError) Error() string { return "not enough balance" }

// ErrRoundInconsistent marca falha de store depois que algum débito já foi
// aplicado: o round parou entre débito e crédito/registro. Não há estorno
// automático; o log de Error carrega o que a reconciliação manual precisa.
var ErrRoundInconsistent = errors.New("round left inconsistent state")

// Publisher publica rounds liquidados para consumidores externos
type Publisher interface {
	PublishRoundSettled(ctx context.Context, rec rounds.Record) error
}

// ParticipantSource fornece os participantes sintéticos de um round
type ParticipantSource interface {
	Participants(ctx context.Context) ([]Participant, error)
}

// Engine liquida rounds: monta participantes, debita, sorteia o resultado,
// reparte o pote pari-mutuel, credita vencedores e registra no feed
type Engine struct {
	log   *zap.Logger
	store store.Store
	gen   ParticipantSource
	publ  Publisher // opcional

	flip func() rounds.Side
}

func New(log *zap.Logger, st store.Store, gen ParticipantSource, publ Publisher) *Engine {
	return &Engine{log: log, store: st, gen: gen, publ: publ, flip: CoinFlip}
}

// Bet é a aposta humana já validada na borda (lado reconhecido, valor > 0)
type Bet struct {
	UserID string
	Name   string
	Side   rounds.Side
	Amount int64
}

// Outcome é a visão do round para quem apostou
type Outcome struct {
	Record      rounds.Record
	UserWin     bool
	UserPayout  int64
	UserBalance int64
}

// Settlement é o resultado puro da matemática pari-mutuel de um round
type Settlement struct {
	Outcome     rounds.Side
	Coef        float64
	WinnersPool int64
	LosersPool  int64
	Winners     []Participant
	Losers      []Participant
	Payouts     []rounds.Payout
}

// Settle reparte o pote dos perdedores entre os vencedores, proporcional à
// aposta de cada um: payout = floor(aposta + losersPool*aposta/winnersPool).
// O floor só trunca para baixo, então sum(payouts) <= winnersPool+losersPool;
// o resíduo da truncagem simplesmente evapora. Com winnersPool == 0 ninguém
// recebe nada; as apostas já debitadas ficam perdidas.
func Settle(participants []Participant, outcome rounds.Side) Settlement {
	st := Settlement{Outcome: outcome}

	for _, p := range participants {
		if p.Side == outcome {
			st.Winners = append(st.Winners, p)
			st.WinnersPool += p.Amount
		} else {
			st.Losers = append(st.Losers, p)
			st.LosersPool += p.Amount
		}
	}

	if st.WinnersPool == 0 {
		return st
	}

	// coeficiente informativo do round, 4 casas
	coef := 1 + float64(st.LosersPool)/float64(st.WinnersPool)
	st.Coef = math.Round(coef*10000) / 10000

	for _, w := range st.Winners {
		share := float64(st.LosersPool) * (float64(w.Amount) / float64(st.WinnersPool))
		payout := int64(math.Floor(float64(w.Amount) + share))
		st.Payouts = append(st.Payouts, rounds.Payout{
			ID:     w.ID,
			Name:   w.Name,
			IsNPC:  w.IsNPC,
			Amount: w.Amount,
			Payout: payout,
			Profit: payout - w.Amount,
		})
	}
	return st
}

// PlayRound executa um round completo para a aposta do usuário.
// A ordem importa: todos os débitos acontecem antes do sorteio e os créditos
// depois; a partir do primeiro débito o round vai até o fim ou vira
// ErrRoundInconsistent.
func (e *Engine) PlayRound(ctx context.Context, bet Bet) (*Outcome, error) {
	bal, err := e.store.GetBalance(ctx, bet.UserID)
	if err != nil {
		return nil, fmt.Errorf("user balance: %w", err)
	}
	if bet.Amount > bal {
		return nil, &InsufficientFundsError{Balance: bal}
	}

	participants := []Participant{{
		ID:     bet.UserID,
		Name:   bet.Name,
		IsNPC:  false,
		Side:   bet.Side,
		Amount: bet.Amount,
	}}

	npcs, err := e.gen.Participants(ctx)
	if err != nil {
		return nil, fmt.Errorf("assemble npcs: %w", err)
	}
	participants = append(participants, npcs...)

	roundID := uuid.New().String()

	// débitos: usuário primeiro, depois NPCs na ordem da lista
	for i, p := range participants {
		if _, err := e.store.AddBalance(ctx, p.ID, -p.Amount); err != nil {
			if i == 0 {
				// nada foi debitado ainda, rejeição limpa
				return nil, fmt.Errorf("debit stake: %w", err)
			}
			return nil, e.inconsistent(roundID, p.ID, "debit", err)
		}
	}

	result := e.flip()
	st := Settle(participants, result)

	for _, pay := range st.Payouts {
		if _, err := e.store.AddBalance(ctx, pay.ID, pay.Payout); err != nil {
			return nil, e.inconsistent(roundID, pay.ID, "credit", err)
		}
		metrics.CreditsPaid.Add(float64(pay.Payout))
	}

	newBal, err := e.store.GetBalance(ctx, bet.UserID)
	if err != nil {
		return nil, e.inconsistent(roundID, bet.UserID, "balance", err)
	}

	rec := rounds.Record{
		RoundID: roundID,
		Ts:      time.Now().UTC(),
		Type:    "round",
		Result:  result,
		Coef:    st.Coef,
		Totals: rounds.Totals{
			Players:     len(participants),
			Winners:     len(st.Winners),
			Losers:      len(st.Losers),
			WinnersPool: st.WinnersPool,
			LosersPool:  st.LosersPool,
		},
		Participants: make([]rounds.ParticipantOutcome, 0, len(participants)),
		Payouts:      st.Payouts,
	}
	for _, p := range participants {
		rec.Participants = append(rec.Participants, rounds.ParticipantOutcome{
			Name:   p.Name,
			IsNPC:  p.IsNPC,
			Side:   p.Side,
			Amount: p.Amount,
			Win:    p.Side == result,
		})
	}

	if err := e.store.PushRound(ctx, rec); err != nil {
		return nil, e.inconsistent(roundID, bet.UserID, "record", err)
	}

	if e.publ != nil {
		if err := e.publ.PublishRoundSettled(ctx, rec); err != nil {
			e.log.Warn("publish round", zap.String("roundId", roundID), zap.Error(err))
		}
	}

	metrics.RoundsSettled.WithLabelValues(string(result)).Inc()

	out := &Outcome{Record: rec, UserBalance: newBal}
	for _, pay := range st.Payouts {
		if pay.ID == bet.UserID {
			out.UserWin = true
			out.UserPayout = pay.Payout
			break
		}
	}
	return out, nil
}

// inconsistent loga a falha pós-débito com tudo que a reconciliação precisa
// e devolve o erro distinto da taxonomia
func (e *Engine) inconsistent(roundID, identity, stage string, err error) error {
	e.log.Error("round settlement interrupted",
		zap.String("roundId", roundID),
		zap.String("identity", identity),
		zap.String("stage", stage),
		zap.Error(err),
	)
	return fmt.Errorf("%w: stage %s: %v", ErrRoundInconsistent, stage, err)
}
