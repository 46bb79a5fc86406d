package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/radieske/baaji-bet-platform/internal/baaji-service/game"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/repo"
)

const defaultHistoryLimit = 20

// PlaceBet valida e grava uma aposta contra a rodada aberta.
// Ordem de validação (cada falha é um erro distinto):
//  1. valor dentro do domínio do tipo
//  2. quantia dentro de MIN_BET..MAX_BET
//  3. existe rodada aberta
//  4. usuário abaixo do limite de apostas na rodada
//  5. saldo suficiente
//
// As checagens 3-5 são revalidadas dentro da transação do store, que trava
// a linha da rodada e a do usuário; aqui só cortamos cedo os casos óbvios.
func (e *Engine) PlaceBet(ctx context.Context, userID int64, kindRaw, valueRaw string, amount int64) (*repo.Bet, error) {
	kind, err := game.ParseKind(kindRaw)
	if err != nil {
		return nil, err
	}
	value, err := game.ParseValue(kind, valueRaw)
	if err != nil {
		return nil, err
	}
	if err := e.rules.ValidateAmount(amount); err != nil {
		return nil, err
	}

	round, err := e.rounds.CurrentOpen(ctx)
	if err != nil {
		e.hooks.err("round_lookup")
		return nil, err
	}
	if round == nil {
		return nil, game.ErrNoActiveRound
	}

	bet, err := e.bets.Place(ctx, userID, round.ID, kind, value, amount, e.rules.MaxBetsPerRound)
	if err != nil {
		return nil, err
	}

	if e.hooks.OnBetPlaced != nil {
		e.hooks.OnBetPlaced(amount)
	}
	e.log.Info("bet placed",
		zap.Int64("user_id", userID),
		zap.Int64("round_id", round.ID),
		zap.String("kind", string(kind)),
		zap.Int("value", value),
		zap.Int64("amount", amount),
	)
	return bet, nil
}

// BetHistory devolve as últimas apostas do usuário (teto de 20, como o
// menu de histórico)
func (e *Engine) BetHistory(ctx context.Context, userID int64, limit int) ([]repo.Bet, error) {
	if limit <= 0 || limit > defaultHistoryLimit {
		limit = defaultHistoryLimit
	}
	return e.bets.HistoryByUser(ctx, userID, limit)
}
