package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/coinflip-miniapp-poc/pkg/contracts/rounds"
)

const feedKey = "feed:v1"

func balanceKey(id string) string { return "bal:" + id }

// addScript aplica o delta com clamp em zero numa única operação no servidor,
// inicializando saldos não vistos com o default. Evita read-modify-write
// entre processos.
var addScript = redis.NewScript(`
local bal = tonumber(redis.call('GET', KEYS[1]) or ARGV[2])
bal = bal + tonumber(ARGV[1])
if bal < 0 then bal = 0 end
redis.call('SET', KEYS[1], bal)
return bal
`)

// getScript lê o saldo, materializando o default na primeira leitura
var getScript = redis.NewScript(`
local bal = redis.call('GET', KEYS[1])
if not bal then
	redis.call('SET', KEYS[1], ARGV[1])
	return tonumber(ARGV[1])
end
return tonumber(bal)
`)

// Redis implementa o Store sobre um Redis: saldos como inteiros em bal:<id>,
// feed como lista limitada (LPUSH + LTRIM) em feed:v1
type Redis struct {
	client         *redis.Client
	defaultBalance int64
	feedMax        int
}

func NewRedis(client *redis.Client, defaultBalance int64, feedMax int) *Redis {
	return &Redis{client: client, defaultBalance: defaultBalance, feedMax: feedMax}
}

func (s *Redis) GetBalance(ctx context.Context, id string) (int64, error) {
	bal, err := getScript.Run(ctx, s.client, []string{balanceKey(id)}, s.defaultBalance).Int64()
	if err != nil {
		return 0, fmt.Errorf("get balance %s: %w", id, err)
	}
	return bal, nil
}

func (s *Redis) AddBalance(ctx context.Context, id string, delta int64) (int64, error) {
	bal, err := addScript.Run(ctx, s.client, []string{balanceKey(id)}, delta, s.defaultBalance).Int64()
	if err != nil {
		return 0, fmt.Errorf("add balance %s: %w", id, err)
	}
	return bal, nil
}

func (s *Redis) PushRound(ctx context.Context, rec rounds.Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal round: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, feedKey, b)
	pipe.LTrim(ctx, feedKey, 0, int64(s.feedMax-1))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push round: %w", err)
	}
	return nil
}

func (s *Redis) ListRounds(ctx context.Context, limit int) ([]rounds.Record, error) {
	limit = clampLimit(limit, s.feedMax)

	raw, err := s.client.LRange(ctx, feedKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("list rounds: %w", err)
	}

	out := make([]rounds.Record, 0, len(raw))
	for _, item := range raw {
		var rec rounds.Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			continue // entrada corrompida não derruba o feed
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Redis) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *Redis) Close() error { return s.client.Close() }
