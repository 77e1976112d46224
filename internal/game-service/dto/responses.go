package dto

import (
	"github.com/radieske/coinflip-miniapp-poc/pkg/contracts/rounds"
)

type ErrorResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Balance *int64 `json:"balance,omitempty"` // presente em saldo insuficiente
}

type BalanceResponse struct {
	OK      bool  `json:"ok"`
	Balance int64 `json:"balance"`
}

type FeedResponse struct {
	OK    bool            `json:"ok"`
	Items []rounds.Record `json:"items"`
}

// YouView é a visão personalizada do apostador sobre o round
type YouView struct {
	Side    rounds.Side `json:"side"`
	Amount  int64       `json:"amount"`
	Win     bool        `json:"win"`
	Payout  int64       `json:"payout"`
	Balance int64       `json:"balance"`
}

// RoundView é o detalhamento público do round devolvido junto com a aposta
type RoundView struct {
	Participants []rounds.ParticipantOutcome `json:"participants"`
	WinnersPool  int64                       `json:"winnersPool"`
	LosersPool   int64                       `json:"losersPool"`
}

type BetResponse struct {
	OK     bool        `json:"ok"`
	Result rounds.Side `json:"result"`
	Coef   float64     `json:"coef"`
	You    YouView     `json:"you"`
	Round  RoundView   `json:"round"`
}
