package config

import (
	"os"
	"strconv"

	ctopics "github.com/radieske/coinflip-miniapp-poc/pkg/contracts/topics"
)

// Config centraliza variáveis de ambiente e parâmetros de execução do serviço
// Inclui conexões, segredos do bot, portas e ajustes do jogo
type Config struct {
	Env         string // "local", "dev", "prod"
	ServiceName string // ex: "game-service"

	RedisAddr    string // vazio -> store em memória
	KafkaBrokers string // "a:9092,b:9092"; vazio -> sem publisher

	TopicRoundSettled string

	// Telegram
	BotToken      string
	WebAppURL     string
	SetupSecret   string
	WebhookSecret string // opcional; só [A-Za-z0-9_-], <=256

	// Ajustes do jogo
	DefaultBalance int64 // saldo inicial de identidade nova
	FeedMax        int   // tamanho máximo do feed

	HTTPPort    string // Porta pública (API do Mini App)
	MetricsPort string // Porta exclusiva para /metrics e /healthz
}

// Load carrega variáveis de ambiente e define defaults
func Load() Config {
	return Config{
		Env:         getEnv("ENV", "local"),
		ServiceName: getEnv("SERVICE_NAME", "game-service"),

		RedisAddr:    getEnv("REDIS_ADDR", ""),
		KafkaBrokers: getEnv("KAFKA_BROKERS", ""),

		TopicRoundSettled: getEnv("KAFKA_TOPIC_ROUNDS", ctopics.RoundSettled),

		BotToken:      getEnv("BOT_TOKEN", ""),
		WebAppURL:     getEnv("WEBAPP_URL", ""),
		SetupSecret:   getEnv("SETUP_SECRET", ""),
		WebhookSecret: getEnv("WEBHOOK_SECRET", ""),

		DefaultBalance: getEnvInt64("DEFAULT_BALANCE", 1000),
		FeedMax:        int(getEnvInt64("FEED_MAX", 50)),

		HTTPPort:    getEnv("HTTP_PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9095"),
	}
}

// getEnv retorna o valor da variável de ambiente ou o default
func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

// getEnvInt64 idem, para valores numéricos; valores inválidos caem no default
func getEnvInt64(key string, def int64) int64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
