package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	skafka "github.com/radieske/baaji-bet-platform/internal/shared/kafka"
)

// Message é o payload enviado ao webhook. UserID zero significa broadcast;
// diferente de zero o webhook entrega direto ao usuário.
type Message struct {
	UserID int64  `json:"user_id,omitempty"`
	Text   string `json:"text"`
}

type Notifier struct {
	log        *zap.Logger
	client     *http.Client
	webhookURL string
}

func New(log *zap.Logger, webhookURL string) *Notifier {
	return &Notifier{
		log:        log,
		client:     &http.Client{Timeout: 5 * time.Second},
		webhookURL: webhookURL,
	}
}

// Post entrega uma mensagem ao webhook. Falha de entrega não derruba o
// worker: notificação é melhor-esforço, o estado do jogo vive no Postgres.
func (n *Notifier) Post(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notify payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("post notify: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("notify webhook status %d", resp.StatusCode)
	}
	return nil
}

// Consume lê um tópico até o contexto encerrar, convertendo cada evento em
// mensagem via render. Eventos ilegíveis são descartados com log.
func (n *Notifier) Consume(ctx context.Context, reader *kafkago.Reader, render func(value []byte) (Message, error)) {
	for {
		_, value, err := skafka.ReadNext(ctx, reader)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return
			}
			n.log.Warn("kafka read", zap.String("topic", reader.Config().Topic), zap.Error(err))
			time.Sleep(time.Second)
			continue
		}

		msg, err := render(value)
		if err != nil {
			n.log.Error("decode event", zap.String("topic", reader.Config().Topic), zap.Error(err))
			continue
		}
		if err := n.Post(ctx, msg); err != nil {
			n.log.Warn("notify", zap.String("topic", reader.Config().Topic), zap.Error(err))
		}
	}
}
