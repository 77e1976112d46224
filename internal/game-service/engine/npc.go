package engine

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/store"
	"github.com/radieske/coinflip-miniapp-poc/pkg/contracts/rounds"
)

// NPC é uma identidade sintética fixa que aposta junto com o usuário
type NPC struct {
	ID   string
	Name string
}

// Roster padrão de NPCs. Identidades fixas: os saldos deles vivem no mesmo
// ledger dos usuários e se esgotam de verdade.
var DefaultRoster = []NPC{
	{ID: "npc_1", Name: "BotAlpha"},
	{ID: "npc_2", Name: "BotBeta"},
	{ID: "npc_3", Name: "CoinGhost"},
}

// Denominações possíveis de aposta de NPC
var npcStakes = []int64{10, 25, 50, 75, 100, 150, 200}

const (
	minNPCBets = 1
	maxNPCBets = 3
)

// Generator sorteia participantes sintéticos para um round
type Generator struct {
	roster []NPC
	ledger store.Store
}

func NewGenerator(roster []NPC, ledger store.Store) *Generator {
	return &Generator{roster: roster, ledger: ledger}
}

// Participants sorteia de 1 a 3 apostas de NPC. Cada candidata é limitada ao
// saldo atual do NPC; com saldo zerado a candidata é descartada sem nova
// tentativa, então um round pode sair sem nenhum NPC.
func (g *Generator) Participants(ctx context.Context) ([]Participant, error) {
	count := minNPCBets + rand.Intn(maxNPCBets-minNPCBets+1)

	out := make([]Participant, 0, count)
	for i := 0; i < count; i++ {
		npc := g.roster[rand.Intn(len(g.roster))]
		amount := npcStakes[rand.Intn(len(npcStakes))]

		bal, err := g.ledger.GetBalance(ctx, npc.ID)
		if err != nil {
			return nil, fmt.Errorf("npc balance %s: %w", npc.ID, err)
		}
		if bal < amount {
			amount = bal
		}
		if amount <= 0 {
			continue
		}

		out = append(out, Participant{
			ID:     npc.ID,
			Name:   npc.Name,
			IsNPC:  true,
			Side:   CoinFlip(),
			Amount: amount,
		})
	}
	return out, nil
}

// CoinFlip sorteia um lado com moeda não viciada
func CoinFlip() rounds.Side {
	if rand.Intn(2) == 0 {
		return rounds.SideHeads
	}
	return rounds.SideTails
}
