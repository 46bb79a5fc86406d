package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	bcache "github.com/radieske/baaji-bet-platform/internal/baaji-service/cache"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/draft"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/engine"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/game"
	bhttp "github.com/radieske/baaji-bet-platform/internal/baaji-service/http"
	kpub "github.com/radieske/baaji-bet-platform/internal/baaji-service/producer"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/repo"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/wallet"
	"github.com/radieske/baaji-bet-platform/internal/shared/cache"
	"github.com/radieske/baaji-bet-platform/internal/shared/config"
	"github.com/radieske/baaji-bet-platform/internal/shared/db"
	"github.com/radieske/baaji-bet-platform/internal/shared/kafka"
	"github.com/radieske/baaji-bet-platform/internal/shared/logger"
	"github.com/radieske/baaji-bet-platform/internal/shared/metrics"
)

func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	loc := time.Local
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatal("timezone", zap.String("tz", cfg.Timezone), zap.Error(err))
		}
		loc = l
	}

	schedule, err := game.ParseSchedule(cfg.CloseTimes, loc)
	if err != nil {
		log.Fatal("close times", zap.Error(err))
	}

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	if err := repo.Migrate(context.Background(), pg); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	// Redis
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writers, um por tópico
	openedW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundOpened)
	closedW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundClosed)
	resultedW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicResultDeclared)
	payoutW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicPayoutCredited)
	publ := kpub.NewKafkaPublisher(openedW, closedW, resultedW, payoutW)
	defer publ.Close()

	// Métricas Prometheus de negócio
	betsPlaced := prometheus.NewCounter(prometheus.CounterOpts{Name: "baaji_bets_placed_total", Help: "apostas aceitas"})
	betVolume := prometheus.NewCounter(prometheus.CounterOpts{Name: "baaji_bet_volume_points_total", Help: "pontos apostados"})
	roundsClosed := prometheus.NewCounter(prometheus.CounterOpts{Name: "baaji_rounds_closed_total", Help: "rodadas fechadas"})
	payoutsPaid := prometheus.NewCounter(prometheus.CounterOpts{Name: "baaji_payout_points_total", Help: "pontos pagos em prêmios"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "baaji_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(betsPlaced, betVolume, roundsClosed, payoutsPaid, errorsBy)

	rules := game.Rules{
		MinBet:           cfg.MinBet,
		MaxBet:           cfg.MaxBet,
		MaxBetsPerRound:  cfg.MaxBetsPerRound,
		MinTopUp:         cfg.MinTopUp,
		SingleMultiplier: game.DefaultRules().SingleMultiplier,
		PattiMultiplier:  game.DefaultRules().PattiMultiplier,
	}

	rounds := repo.NewPostgres(pg)
	ledger := wallet.NewPostgres(pg, loc)

	eng := engine.New(log, rounds, rounds, ledger, rounds, publ, rules, schedule, engine.Hooks{
		OnBetPlaced:   func(amount int64) { betsPlaced.Inc(); betVolume.Add(float64(amount)) },
		OnRoundClosed: func() { roundsClosed.Inc() },
		OnSettled:     func(_ int, totalPayout int64) { payoutsPaid.Add(float64(totalPayout)) },
		OnVoided:      func(_ int) {},
		OnError:       func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	})

	drafts := draft.NewStore(rdb, cfg.DraftTTL)
	roundCache := bcache.NewRoundCache(rdb, 5*time.Second)

	api := bhttp.NewServer(log, eng, drafts, roundCache, cfg.OperatorToken)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})

	go func() {
		log.Info("baaji-service listening", zap.String("addr", apiSrv.Addr))
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("api", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(ctx)
	_ = metricsSrv.Shutdown(ctx)
}
