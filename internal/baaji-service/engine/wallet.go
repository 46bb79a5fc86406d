package engine

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/baaji-bet-platform/internal/baaji-service/game"
)

// WalletBalance devolve o saldo do usuário (cria a carteira no primeiro
// acesso)
func (e *Engine) WalletBalance(ctx context.Context, userID int64) (int64, error) {
	return e.ledger.Balance(ctx, userID)
}

// CreditWallet é a aprovação manual de recarga pelo operador. Respeita o
// mínimo de recarga; externalRef vazio ganha um ref gerado para manter o
// ledger rastreável.
func (e *Engine) CreditWallet(ctx context.Context, userID int64, amount int64, externalRef string) (int64, error) {
	if amount < e.rules.MinTopUp {
		return 0, game.ErrInvalidAmount
	}
	if externalRef == "" {
		externalRef = "topup:" + uuid.NewString()
	}
	newBalance, err := e.ledger.Credit(ctx, userID, amount, "topup", externalRef)
	if err != nil {
		e.hooks.err("wallet_credit")
		return 0, err
	}
	e.log.Info("wallet credited",
		zap.Int64("user_id", userID),
		zap.Int64("amount", amount),
		zap.String("external_ref", externalRef),
	)
	return newBalance, nil
}

// DebitWallet é a aprovação manual de resgate: uma vez por dia, saldo
// suficiente obrigatório
func (e *Engine) DebitWallet(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, game.ErrInvalidAmount
	}
	newBalance, err := e.ledger.DebitRedeem(ctx, userID, amount)
	if err != nil {
		return 0, err
	}
	e.log.Info("wallet redeemed",
		zap.Int64("user_id", userID),
		zap.Int64("amount", amount),
	)
	return newBalance, nil
}
