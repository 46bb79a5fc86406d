package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/baaji-bet-platform/internal/notifier"
	"github.com/radieske/baaji-bet-platform/internal/shared/config"
	"github.com/radieske/baaji-bet-platform/internal/shared/kafka"
	"github.com/radieske/baaji-bet-platform/internal/shared/logger"
	"github.com/radieske/baaji-bet-platform/internal/shared/metrics"
)

// Worker de notificação: consome os eventos do jogo e repassa como texto
// para o webhook configurado (bot de chat, painel, o que for).
func main() {
	cfg := config.Load()
	log, _ := logger.New(cfg.ServiceName, cfg.Env)
	defer log.Sync()

	n := notifier.New(log, cfg.NotifyWebhookURL)

	openedR := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicRoundOpened, "notifier")
	closedR := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicRoundClosed, "notifier")
	resultedR := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicResultDeclared, "notifier")
	payoutR := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicPayoutCredited, "notifier")
	defer openedR.Close()
	defer closedR.Close()
	defer resultedR.Close()
	defer payoutR.Close()

	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, cfg.NotifyWebhookURL, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go n.Consume(ctx, openedR, notifier.RenderRoundOpened)
	go n.Consume(ctx, closedR, notifier.RenderRoundClosed)
	go n.Consume(ctx, resultedR, notifier.RenderResultDeclared)
	go n.Consume(ctx, payoutR, notifier.RenderPayoutCredited)

	log.Info("notifier-worker started", zap.String("webhook", cfg.NotifyWebhookURL))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	cancel()
	shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shCancel()
	_ = metricsSrv.Shutdown(shCtx)
}
