package store

import (
	"context"

	"github.com/radieske/coinflip-miniapp-poc/pkg/contracts/rounds"
)

// Store define as operações de persistência do jogo: ledger de saldos e feed
// de rounds. Implementações precisam garantir atomicidade por chave no ledger
// (rounds concorrentes debitam/creditam as mesmas identidades).
type Store interface {
	// GetBalance retorna o saldo da identidade, criando com o saldo default
	// na primeira leitura
	GetBalance(ctx context.Context, id string) (int64, error)

	// AddBalance aplica o delta e retorna o novo saldo, nunca negativo:
	// newBalance = max(0, saldo + delta)
	AddBalance(ctx context.Context, id string, delta int64) (int64, error)

	// PushRound insere o registro no topo do feed, descartando o que passar
	// do tamanho máximo
	PushRound(ctx context.Context, rec rounds.Record) error

	// ListRounds retorna os registros mais recentes primeiro; limit é
	// normalizado para [1, max do feed]
	ListRounds(ctx context.Context, limit int) ([]rounds.Record, error)

	Ping(ctx context.Context) error
	Close() error
}

// clampLimit normaliza o limite pedido pelo cliente
func clampLimit(limit, max int) int {
	if limit < 1 {
		return 1
	}
	if limit > max {
		return max
	}
	return limit
}
