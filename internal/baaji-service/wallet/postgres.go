package wallet

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/radieske/baaji-bet-platform/internal/baaji-service/game"
)

// Postgres implementa o ledger de carteiras. Toda mutação de saldo passa
// por aqui, trava a linha do usuário (FOR UPDATE) e registra uma entrada
// em wallet_ledger.
type Postgres struct {
	db  *sql.DB
	loc *time.Location
	now func() time.Time
}

func NewPostgres(db *sql.DB, loc *time.Location) *Postgres {
	if loc == nil {
		loc = time.Local
	}
	return &Postgres{db: db, loc: loc, now: time.Now}
}

// WithClock troca o relógio (testes)
func (p *Postgres) WithClock(now func() time.Time) *Postgres {
	p.now = now
	return p
}

// dateKey converte um instante para a data do jogo no fuso configurado
func dateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// redeemedToday aplica a regra de um resgate por dia
func redeemedToday(lastRedeem sql.NullString, today string) bool {
	return lastRedeem.Valid && lastRedeem.String == today
}

// lockUser garante a linha do usuário e a trava, devolvendo o saldo atual
func lockUser(ctx context.Context, tx *sql.Tx, userID int64) (balance int64, lastRedeem sql.NullString, err error) {
	if _, err = tx.ExecContext(ctx, `INSERT INTO users (user_id) VALUES ($1) ON CONFLICT DO NOTHING`, userID); err != nil {
		return 0, sql.NullString{}, err
	}
	err = tx.QueryRowContext(ctx, `
		SELECT balance, to_char(last_redeem, 'YYYY-MM-DD')
		FROM users WHERE user_id=$1 FOR UPDATE`, userID).Scan(&balance, &lastRedeem)
	return balance, lastRedeem, err
}

// Balance devolve o saldo do usuário, criando a carteira no primeiro acesso
func (p *Postgres) Balance(ctx context.Context, userID int64) (int64, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	defer tx.Rollback()

	bal, _, err := lockUser(ctx, tx, userID)
	if err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("balance: %w", err)
	}
	return bal, nil
}

// Credit soma amount ao saldo. Nunca falha para valores válidos; usado
// tanto pela apuração quanto pelos créditos manuais aprovados.
func (p *Postgres) Credit(ctx context.Context, userID int64, amount int64, reason, externalRef string) (int64, error) {
	if amount <= 0 {
		return 0, game.ErrInvalidAmount
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("credit: %w", err)
	}
	defer tx.Rollback()

	bal, _, err := lockUser(ctx, tx, userID)
	if err != nil {
		return 0, fmt.Errorf("credit: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET balance = balance + $1 WHERE user_id=$2`, amount, userID); err != nil {
		return 0, fmt.Errorf("credit: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger (user_id, entry_type, amount, reason, external_ref)
		VALUES ($1, 'credit', $2, $3, $4)`, userID, amount, reason, externalRef); err != nil {
		return 0, fmt.Errorf("credit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("credit: %w", err)
	}
	return bal + amount, nil
}

// Debit subtrai amount do saldo, falhando fechado quando não há fundos
// (nenhuma dedução parcial)
func (p *Postgres) Debit(ctx context.Context, userID int64, amount int64, reason, externalRef string) (int64, error) {
	if amount <= 0 {
		return 0, game.ErrInvalidAmount
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("debit: %w", err)
	}
	defer tx.Rollback()

	bal, _, err := lockUser(ctx, tx, userID)
	if err != nil {
		return 0, fmt.Errorf("debit: %w", err)
	}
	if bal < amount {
		return 0, game.ErrInsufficientFunds
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET balance = balance - $1 WHERE user_id=$2`, amount, userID); err != nil {
		return 0, fmt.Errorf("debit: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger (user_id, entry_type, amount, reason, external_ref)
		VALUES ($1, 'debit', $2, $3, $4)`, userID, amount, reason, externalRef); err != nil {
		return 0, fmt.Errorf("debit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("debit: %w", err)
	}
	return bal - amount, nil
}

// DebitRedeem é o débito de resgate aprovado pelo operador: além do saldo,
// aplica a regra de um resgate por dia via users.last_redeem.
func (p *Postgres) DebitRedeem(ctx context.Context, userID int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, game.ErrInvalidAmount
	}
	today := dateKey(p.now(), p.loc)

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("redeem: %w", err)
	}
	defer tx.Rollback()

	bal, lastRedeem, err := lockUser(ctx, tx, userID)
	if err != nil {
		return 0, fmt.Errorf("redeem: %w", err)
	}
	if redeemedToday(lastRedeem, today) {
		return 0, game.ErrAlreadyRedeemed
	}
	if bal < amount {
		return 0, game.ErrInsufficientFunds
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE users SET balance = balance - $1, last_redeem = $2 WHERE user_id=$3`,
		amount, today, userID); err != nil {
		return 0, fmt.Errorf("redeem: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger (user_id, entry_type, amount, reason, external_ref)
		VALUES ($1, 'debit', $2, 'redeem', '')`, userID, amount); err != nil {
		return 0, fmt.Errorf("redeem: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("redeem: %w", err)
	}
	return bal - amount, nil
}

// CreditSettlement aplica o crédito de apuração de uma rodada.
// Idempotente por (round_id, user_id): o insert em settlements com
// ON CONFLICT DO NOTHING decide se o crédito acontece; reexecutar a
// apuração nunca credita duas vezes.
func (p *Postgres) CreditSettlement(ctx context.Context, roundID, userID int64, amount int64, reason string) (bool, error) {
	if amount <= 0 {
		return false, game.ErrInvalidAmount
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("settlement credit: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO settlements (round_id, user_id, amount, reason)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (round_id, user_id) DO NOTHING`,
		roundID, userID, amount, reason)
	if err != nil {
		return false, fmt.Errorf("settlement credit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("settlement credit: %w", err)
	}
	if n == 0 {
		// já creditado numa execução anterior
		return false, nil
	}

	if _, _, err := lockUser(ctx, tx, userID); err != nil {
		return false, fmt.Errorf("settlement credit: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE users SET balance = balance + $1 WHERE user_id=$2`, amount, userID); err != nil {
		return false, fmt.Errorf("settlement credit: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger (user_id, entry_type, amount, reason, external_ref)
		VALUES ($1, 'credit', $2, $3, $4)`,
		userID, amount, reason, fmt.Sprintf("round:%d", roundID)); err != nil {
		return false, fmt.Errorf("settlement credit: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("settlement credit: %w", err)
	}
	return true, nil
}
