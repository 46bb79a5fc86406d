package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/baaji-bet-platform/internal/baaji-service/engine"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/game"
	kpub "github.com/radieske/baaji-bet-platform/internal/baaji-service/producer"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/repo"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/wallet"
	"github.com/radieske/baaji-bet-platform/internal/shared/config"
	"github.com/radieske/baaji-bet-platform/internal/shared/db"
	"github.com/radieske/baaji-bet-platform/internal/shared/kafka"
	"github.com/radieske/baaji-bet-platform/internal/shared/logger"
	"github.com/radieske/baaji-bet-platform/internal/shared/metrics"
)

// Worker de agendamento: fecha rodadas vencidas e faz a virada do dia.
// Roda separado da API para o ciclo continuar mesmo com a API fora do ar.
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

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg", zap.Error(err))
	}
	defer pg.Close()

	if err := repo.Migrate(context.Background(), pg); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	openedW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundOpened)
	closedW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicRoundClosed)
	resultedW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicResultDeclared)
	payoutW := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicPayoutCredited)
	publ := kpub.NewKafkaPublisher(openedW, closedW, resultedW, payoutW)
	defer publ.Close()

	autoClosed := prometheus.NewCounter(prometheus.CounterOpts{Name: "baaji_sched_rounds_closed_total", Help: "rodadas fechadas pelo timer"})
	voided := prometheus.NewCounter(prometheus.CounterOpts{Name: "baaji_sched_rounds_voided_total", Help: "rodadas anuladas na virada"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "baaji_sched_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(autoClosed, voided, errorsBy)

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
		OnRoundClosed: func() { autoClosed.Inc() },
		OnVoided:      func(_ int) { voided.Inc() },
		OnError:       func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	})

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Na subida, garante que o dia corrente tem rodada (primeiro boot ou
	// retomada depois de uma parada longa)
	if _, err := eng.DayReset(ctx); err != nil {
		log.Warn("bootstrap day reset", zap.Error(err))
	}

	go closeLoop(ctx, log, eng, cfg.AutoCloseInterval)
	go resetLoop(ctx, log, eng, cfg.DayResetInterval, loc)

	log.Info("round-scheduler-worker started",
		zap.Duration("closeEvery", cfg.AutoCloseInterval),
		zap.Duration("resetEvery", cfg.DayResetInterval),
	)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancel()
	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	_ = metricsSrv.Shutdown(shCtx)
}

// closeLoop fecha rodadas cujo horário venceu
func closeLoop(ctx context.Context, log *zap.Logger, eng *engine.Engine, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := eng.AutoCloseDue(ctx)
			if err != nil {
				log.Error("auto close", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Info("rounds closed", zap.Int("count", n))
			}
		}
	}
}

// resetLoop faz a virada do dia dentro da janela da meia-noite. O DayReset
// em si é idempotente; a janela só evita bater no banco o dia todo.
func resetLoop(ctx context.Context, log *zap.Logger, eng *engine.Engine, every time.Duration, loc *time.Location) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := time.Now().In(loc)
			if now.Hour() != 0 || now.Minute() >= 2 {
				continue
			}
			round, err := eng.DayReset(ctx)
			if err != nil {
				log.Error("day reset", zap.Error(err))
				continue
			}
			if round != nil {
				log.Info("new day opened", zap.Int64("roundId", round.ID), zap.Int("seq", round.Seq))
			}
		}
	}
}
