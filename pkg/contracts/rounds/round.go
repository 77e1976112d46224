package rounds

import (
	"strings"
	"time"
)

// Side representa o lado escolhido na moeda
type Side string

const (
	SideHeads Side = "heads"
	SideTails Side = "tails"
)

// ParseSide normaliza a entrada do cliente; retorna false para valores desconhecidos
func ParseSide(s string) (Side, bool) {
	switch Side(strings.ToLower(strings.TrimSpace(s))) {
	case SideHeads:
		return SideHeads, true
	case SideTails:
		return SideTails, true
	}
	return "", false
}

// Opposite retorna o lado contrário
func (s Side) Opposite() Side {
	if s == SideHeads {
		return SideTails
	}
	return SideHeads
}

// Totals agrega os números do round para o feed público
type Totals struct {
	Players     int   `json:"players"`
	Winners     int   `json:"winners"`
	Losers      int   `json:"losers"`
	WinnersPool int64 `json:"winnersPool"`
	LosersPool  int64 `json:"losersPool"`
}

// ParticipantOutcome é a visão pública de um participante no round
// (sem o id, que não é exposto no feed)
type ParticipantOutcome struct {
	Name   string `json:"name"`
	IsNPC  bool   `json:"isNpc"`
	Side   Side   `json:"side"`
	Amount int64  `json:"amount"`
	Win    bool   `json:"win"`
}

// Payout registra o crédito de um vencedor
type Payout struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsNPC  bool   `json:"isNpc"`
	Amount int64  `json:"amount"`
	Payout int64  `json:"payout"`
	Profit int64  `json:"profit"`
}

// Record é o registro imutável de um round liquidado, persistido no feed
// e publicado no tópico round_settled
type Record struct {
	RoundID      string               `json:"roundId"`
	Ts           time.Time            `json:"ts"`
	Type         string               `json:"type"` // sempre "round"
	Result       Side                 `json:"result"`
	Coef         float64              `json:"coef"`
	Totals       Totals               `json:"totals"`
	Participants []ParticipantOutcome `json:"participants"`
	Payouts      []Payout             `json:"payouts"`
}
