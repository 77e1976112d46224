package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/engine"
	ghttp "github.com/radieske/coinflip-miniapp-poc/internal/game-service/http"
	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/producer"
	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/store"
	"github.com/radieske/coinflip-miniapp-poc/internal/game-service/telegram"
	"github.com/radieske/coinflip-miniapp-poc/internal/shared/cache"
	"github.com/radieske/coinflip-miniapp-poc/internal/shared/config"
	skafka "github.com/radieske/coinflip-miniapp-poc/internal/shared/kafka"
	"github.com/radieske/coinflip-miniapp-poc/internal/shared/logger"
	"github.com/radieske/coinflip-miniapp-poc/internal/shared/metrics"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("env", cfg.Env))

	// segredo ausente é condição fatal de startup, não erro por request
	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}

	// Store: Redis quando configurado, memória caso contrário
	var st store.Store
	if cfg.RedisAddr != "" {
		rdb, err := cache.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			log.Fatal("redis connect", zap.Error(err))
		}
		st = store.NewRedis(rdb, cfg.DefaultBalance, cfg.FeedMax)
		log.Info("using redis store", zap.String("addr", cfg.RedisAddr))
	} else {
		st = store.NewMemory(cfg.DefaultBalance, cfg.FeedMax)
		log.Warn("REDIS_ADDR not set, using in-memory store (state is lost on restart)")
	}
	defer st.Close()

	// Publisher de rounds (opcional)
	var publ engine.Publisher
	if cfg.KafkaBrokers != "" {
		writer := skafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundSettled)
		defer writer.Close()
		publ = producer.NewKafkaPublisher(writer)
		log.Info("publishing rounds", zap.String("topic", cfg.TopicRoundSettled))
	}

	gen := engine.NewGenerator(engine.DefaultRoster, st)
	eng := engine.New(log, st, gen, publ)
	tg := telegram.New(cfg.BotToken)

	api := ghttp.NewServer(log, cfg, st, eng, tg)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health em porta separada
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, st.Ping)
	log.Info("metrics/health listening", zap.String("addr", metricsSrv.Addr))

	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
