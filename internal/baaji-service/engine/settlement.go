package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/baaji-bet-platform/internal/baaji-service/game"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/repo"
	"github.com/radieske/baaji-bet-platform/pkg/contracts/events"
)

// SettlementSummary é o resultado de uma apuração
type SettlementSummary struct {
	RoundID     int64
	Seq         int
	Patti       int
	Single      int
	Bets        int
	Winners     int
	TotalPayout int64
	NextRoundID int64 // 0 quando o dia terminou
}

// DeclareResult apura a rodada fechada: grava o resultado (CAS
// closed->resulted, exatamente uma vez), calcula os ganhadores e aplica um
// crédito agregado e idempotente por usuário. Só depois dos créditos os
// eventos são publicados e a próxima rodada é aberta.
//
// roundID <= 0 apura a rodada fechada mais recente.
func (e *Engine) DeclareResult(ctx context.Context, roundID int64, patti int) (*SettlementSummary, error) {
	if !game.ValidCombination(patti) {
		return nil, game.ErrInvalidCombination
	}

	var round *repo.Round
	var err error
	if roundID > 0 {
		round, err = e.rounds.FindByID(ctx, roundID)
	} else {
		round, err = e.rounds.LatestClosed(ctx)
		if err == nil && round == nil {
			err = game.ErrRoundNotClosed
		}
	}
	if err != nil {
		return nil, err
	}

	single := game.DeriveSingle(patti)
	if err := e.rounds.MarkResulted(ctx, round.ID, patti, single); err != nil {
		return nil, err
	}

	summary, err := e.settle(ctx, round, patti, single)
	if err != nil {
		// resultado já gravado; a recuperação é reexecutar a apuração
		// (Resettle), nunca reverter o resulted
		e.hooks.err("settle")
		return nil, fmt.Errorf("round %d resulted but settlement incomplete: %w", round.ID, err)
	}

	if e.hooks.OnSettled != nil {
		e.hooks.OnSettled(summary.Winners, summary.TotalPayout)
	}

	next, err := e.OpenNext(ctx)
	if err != nil {
		// a apuração concluiu; a falha na criação fica para o scheduler
		e.hooks.err("open_next")
		e.log.Warn("next round not created", zap.Error(err))
	} else if next != nil {
		summary.NextRoundID = next.ID
	}

	return summary, nil
}

// Resettle reexecuta os créditos de uma rodada já apurada. Seguro porque
// cada crédito é idempotente por (rodada, usuário). É o caminho de
// recuperação para uma apuração interrompida no meio dos pagamentos.
func (e *Engine) Resettle(ctx context.Context, roundID int64) (*SettlementSummary, error) {
	round, err := e.rounds.FindByID(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if round.Status != repo.StatusResulted || round.PattiResult == nil || round.SingleResult == nil {
		return nil, game.ErrRoundNotResulted
	}
	summary, err := e.settle(ctx, round, *round.PattiResult, *round.SingleResult)
	if err != nil {
		e.hooks.err("resettle")
		return nil, err
	}
	return summary, nil
}

// settle calcula o conjunto completo de ganhadores antes de aplicar
// qualquer crédito, e então credita usuário a usuário em ordem estável.
func (e *Engine) settle(ctx context.Context, round *repo.Round, patti, single int) (*SettlementSummary, error) {
	bets, err := e.bets.ListByRound(ctx, round.ID)
	if err != nil {
		return nil, err
	}

	wagers := make([]game.Wager, 0, len(bets))
	for _, b := range bets {
		wagers = append(wagers, game.Wager{UserID: b.UserID, Kind: b.Kind, Value: b.Value, Amount: b.Amount})
	}
	winners := e.rules.AggregateWinners(wagers, patti)

	userIDs := make([]int64, 0, len(winners))
	for id := range winners {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	var total int64
	for _, uid := range userIDs {
		amount := winners[uid]
		applied, err := e.ledger.CreditSettlement(ctx, round.ID, uid, amount, "payout")
		if err != nil {
			return nil, fmt.Errorf("credit winner %d: %w", uid, err)
		}
		total += amount
		if !applied {
			continue // já pago numa execução anterior
		}
		e.publish(ctx, "payout_credited", func(ctx context.Context) error {
			return e.publ.PayoutCredited(ctx, events.PayoutCredited{
				RoundID:  round.ID,
				Seq:      round.Seq,
				UserID:   uid,
				Amount:   amount,
				TsUnixMs: e.now().UnixMilli(),
			})
		})
	}

	e.publish(ctx, "result_declared", func(ctx context.Context) error {
		return e.publ.ResultDeclared(ctx, events.ResultDeclared{
			RoundID:     round.ID,
			Date:        round.Date,
			Seq:         round.Seq,
			Patti:       patti,
			Single:      single,
			Winners:     len(winners),
			TotalPayout: total,
			TsUnixMs:    e.now().UnixMilli(),
		})
	})

	e.log.Info("round settled",
		zap.Int64("round_id", round.ID),
		zap.Int("seq", round.Seq),
		zap.String("patti", game.FormatPatti(patti)),
		zap.Int("single", single),
		zap.Int("bets", len(bets)),
		zap.Int("winners", len(winners)),
		zap.Int64("total_payout", total),
	)

	return &SettlementSummary{
		RoundID:     round.ID,
		Seq:         round.Seq,
		Patti:       patti,
		Single:      single,
		Bets:        len(bets),
		Winners:     len(winners),
		TotalPayout: total,
	}, nil
}

// publish entrega um evento em melhor esforço, com timeout curto para
// nunca segurar a apuração em I/O externo
func (e *Engine) publish(ctx context.Context, stage string, fn func(ctx context.Context) error) {
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := fn(pctx); err != nil {
		e.hooks.err(stage)
		e.log.Warn("event publish failed", zap.String("event", stage), zap.Error(err))
	}
}
