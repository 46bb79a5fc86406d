package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/radieske/baaji-bet-platform/internal/baaji-service/game"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/repo"
	"github.com/radieske/baaji-bet-platform/pkg/contracts/events"
)

// OpenNext aplica a regra de criação: se a data atual ainda não atingiu o
// total de rodadas do dia, cria a sequência seguinte com o horário fixo da
// tabela. Devolve (nil, nil) quando o dia está completo; não é erro.
func (e *Engine) OpenNext(ctx context.Context) (*repo.Round, error) {
	now := e.now()
	date := e.schedule.DateKey(now)

	count, err := e.rounds.CountForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if count >= e.schedule.Slots() {
		// dia completo
		return nil, nil
	}

	seq := count + 1
	closeAt, err := e.schedule.CloseAt(now, seq)
	if err != nil {
		return nil, err
	}

	round, err := e.rounds.Create(ctx, date, seq, closeAt)
	if err != nil {
		return nil, fmt.Errorf("open round %s/%d: %w", date, seq, err)
	}

	e.publish(ctx, "round_opened", func(ctx context.Context) error {
		return e.publ.RoundOpened(ctx, events.RoundOpened{
			RoundID:  round.ID,
			Date:     round.Date,
			Seq:      round.Seq,
			ClosesAt: round.CloseAt.In(e.schedule.Location()).Format("15:04"),
			TsUnixMs: e.now().UnixMilli(),
		})
	})

	e.log.Info("round opened", zap.Int64("round_id", round.ID), zap.Int("seq", round.Seq))
	return round, nil
}

// AutoCloseDue fecha toda rodada aberta cujo horário passou e alerta o
// operador. Idempotente: rodadas já fechadas não são tocadas.
func (e *Engine) AutoCloseDue(ctx context.Context) (int, error) {
	closed, err := e.rounds.CloseDue(ctx, e.now())
	if err != nil {
		e.hooks.err("auto_close")
		return 0, err
	}

	for _, r := range closed {
		if e.hooks.OnRoundClosed != nil {
			e.hooks.OnRoundClosed()
		}
		round := r
		e.publish(ctx, "round_closed", func(ctx context.Context) error {
			return e.publ.RoundClosed(ctx, events.RoundClosed{
				RoundID:  round.ID,
				Date:     round.Date,
				Seq:      round.Seq,
				Forced:   false,
				TsUnixMs: e.now().UnixMilli(),
			})
		})
		e.log.Info("round auto-closed", zap.Int64("round_id", round.ID), zap.Int("seq", round.Seq))
	}
	return len(closed), nil
}

// ForceClose fecha a rodada aberta por decisão do operador; mesma
// transição e notificação do fechamento automático
func (e *Engine) ForceClose(ctx context.Context) (*repo.Round, error) {
	round, err := e.rounds.ForceCloseOpen(ctx)
	if err != nil {
		e.hooks.err("force_close")
		return nil, err
	}
	if round == nil {
		return nil, game.ErrNoActiveRound
	}

	if e.hooks.OnRoundClosed != nil {
		e.hooks.OnRoundClosed()
	}
	e.publish(ctx, "round_closed", func(ctx context.Context) error {
		return e.publ.RoundClosed(ctx, events.RoundClosed{
			RoundID:  round.ID,
			Date:     round.Date,
			Seq:      round.Seq,
			Forced:   true,
			TsUnixMs: e.now().UnixMilli(),
		})
	})
	e.log.Info("round force-closed", zap.Int64("round_id", round.ID), zap.Int("seq", round.Seq))
	return round, nil
}

// DayReset roda a virada do dia: arquiva (void) as rodadas sem resultado
// de datas anteriores estornando as apostas, e abre a rodada 1 da nova
// data. No-op se o dia atual já tem rodadas; é isso que torna múltiplos
// disparos dentro da janela inofensivos.
//
// As sobras nunca são apagadas: void é terminal e preserva o histórico.
func (e *Engine) DayReset(ctx context.Context) (*repo.Round, error) {
	today := e.schedule.DateKey(e.now())

	count, err := e.rounds.CountForDate(ctx, today)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		// já resetado hoje
		return nil, nil
	}

	stale, err := e.rounds.StaleUnresulted(ctx, today)
	if err != nil {
		e.hooks.err("day_reset")
		return nil, err
	}
	for _, r := range stale {
		if err := e.voidRound(ctx, r); err != nil {
			e.hooks.err("void_round")
			return nil, err
		}
	}

	return e.OpenNext(ctx)
}

// voidRound devolve cada stake pelo mesmo mecanismo idempotente da
// apuração (uma entrada de settlement por rodada+usuário) e só então
// arquiva a rodada. A ordem importa: se um estorno falhar, a rodada
// continua open/closed e volta a ser elegível na próxima virada; os
// estornos já aplicados não se repetem.
func (e *Engine) voidRound(ctx context.Context, round repo.Round) error {
	bets, err := e.bets.ListByRound(ctx, round.ID)
	if err != nil {
		return err
	}
	refunds := make(map[int64]int64)
	for _, b := range bets {
		refunds[b.UserID] += b.Amount
	}

	applied := 0
	for uid, amount := range refunds {
		ok, err := e.ledger.CreditSettlement(ctx, round.ID, uid, amount, "void_refund")
		if err != nil {
			return fmt.Errorf("refund user %d on round %d: %w", uid, round.ID, err)
		}
		if ok {
			applied++
		}
	}

	changed, err := e.rounds.MarkVoid(ctx, round.ID)
	if err != nil {
		return err
	}

	if changed || applied > 0 {
		if e.hooks.OnVoided != nil {
			e.hooks.OnVoided(applied)
		}
		e.log.Info("round voided",
			zap.Int64("round_id", round.ID),
			zap.String("date", round.Date),
			zap.Int("seq", round.Seq),
			zap.Int("refunds", applied),
		)
	}
	return nil
}
