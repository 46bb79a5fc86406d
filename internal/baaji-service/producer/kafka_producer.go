package producer

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/segmentio/kafka-go"

	skafka "github.com/radieske/baaji-bet-platform/internal/shared/kafka"
	"github.com/radieske/baaji-bet-platform/pkg/contracts/events"
)

// KafkaPublisher publica os eventos de notificação, um writer por tópico
type KafkaPublisher struct {
	Opened   *kafka.Writer
	Closed   *kafka.Writer
	Resulted *kafka.Writer
	Payout   *kafka.Writer
}

func NewKafkaPublisher(opened, closed, resulted, payout *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Opened: opened, Closed: closed, Resulted: resulted, Payout: payout}
}

func write(ctx context.Context, w *kafka.Writer, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return skafka.WriteJSON(ctx, w, key, b)
}

func (p *KafkaPublisher) RoundOpened(ctx context.Context, ev events.RoundOpened) error {
	return write(ctx, p.Opened, strconv.FormatInt(ev.RoundID, 10), ev)
}

func (p *KafkaPublisher) RoundClosed(ctx context.Context, ev events.RoundClosed) error {
	return write(ctx, p.Closed, strconv.FormatInt(ev.RoundID, 10), ev)
}

func (p *KafkaPublisher) ResultDeclared(ctx context.Context, ev events.ResultDeclared) error {
	return write(ctx, p.Resulted, strconv.FormatInt(ev.RoundID, 10), ev)
}

func (p *KafkaPublisher) PayoutCredited(ctx context.Context, ev events.PayoutCredited) error {
	return write(ctx, p.Payout, strconv.FormatInt(ev.RoundID, 10), ev)
}

func (p *KafkaPublisher) Close() {
	for _, w := range []*kafka.Writer{p.Opened, p.Closed, p.Resulted, p.Payout} {
		if w != nil {
			_ = w.Close()
		}
	}
}
