package dto

// Action é o conjunto fechado de ações do endpoint /api
type Action string

const (
	ActionBalance Action = "balance"
	ActionBet     Action = "bet"
	ActionFeed    Action = "feed"
)

// APIRequest é o corpo único do POST /api, discriminado por Action
type APIRequest struct {
	Action   Action  `json:"action"`
	InitData string  `json:"initData,omitempty"` // prova de identidade (balance/bet)
	Side     string  `json:"side,omitempty"`     // bet
	Amount   float64 `json:"amount,omitempty"`   // bet; truncado para inteiro
	Limit    int     `json:"limit,omitempty"`    // feed
}
