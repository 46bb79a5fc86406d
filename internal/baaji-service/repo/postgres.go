package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/radieske/baaji-bet-platform/internal/baaji-service/game"
)

// Postgres implementa a persistência de rodadas e apostas
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const roundColumns = `id, to_char(round_date, 'YYYY-MM-DD'), seq, status, close_at, patti_result, single_result, created_at`

func scanRound(row interface{ Scan(...any) error }) (*Round, error) {
	var r Round
	if err := row.Scan(&r.ID, &r.Date, &r.Seq, &r.Status, &r.CloseAt, &r.PattiResult, &r.SingleResult, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// CurrentOpen devolve a baaji aberta, ou nil quando nenhuma está aberta
// (estado transitório esperado entre resulted e a próxima open)
func (p *Postgres) CurrentOpen(ctx context.Context) (*Round, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+roundColumns+` FROM rounds WHERE status=$1 ORDER BY id DESC LIMIT 1`, StatusOpen)
	r, err := scanRound(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("current open round: %w", err)
	}
	return r, nil
}

// LatestClosed devolve a rodada fechada mais recente aguardando resultado
func (p *Postgres) LatestClosed(ctx context.Context) (*Round, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+roundColumns+` FROM rounds WHERE status=$1 ORDER BY id DESC LIMIT 1`, StatusClosed)
	r, err := scanRound(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest closed round: %w", err)
	}
	return r, nil
}

func (p *Postgres) FindByID(ctx context.Context, id int64) (*Round, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+roundColumns+` FROM rounds WHERE id=$1`, id)
	r, err := scanRound(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, game.ErrRoundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find round %d: %w", id, err)
	}
	return r, nil
}

// CountForDate conta as rodadas já criadas na data (chave da regra de criação)
func (p *Postgres) CountForDate(ctx context.Context, date string) (int, error) {
	var n int
	err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rounds WHERE round_date=$1`, date).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count rounds for %s: %w", date, err)
	}
	return n, nil
}

// Create insere a rodada seq da data com o horário fixo de fechamento.
// A unique (round_date, seq) barra criações duplicadas concorrentes.
func (p *Postgres) Create(ctx context.Context, date string, seq int, closeAt time.Time) (*Round, error) {
	row := p.db.QueryRowContext(ctx, `
		INSERT INTO rounds (round_date, seq, status, close_at)
		VALUES ($1, $2, $3, $4)
		RETURNING `+roundColumns,
		date, seq, StatusOpen, closeAt)
	r, err := scanRound(row)
	if err != nil {
		return nil, fmt.Errorf("create round %s/%d: %w", date, seq, err)
	}
	return r, nil
}

// CloseDue fecha toda rodada aberta cujo horário passou. CAS no status:
// reavaliar uma rodada já fechada é no-op.
func (p *Postgres) CloseDue(ctx context.Context, now time.Time) ([]Round, error) {
	rows, err := p.db.QueryContext(ctx, `
		UPDATE rounds SET status=$1
		WHERE status=$2 AND close_at <= $3
		RETURNING `+roundColumns,
		StatusClosed, StatusOpen, now)
	if err != nil {
		return nil, fmt.Errorf("close due rounds: %w", err)
	}
	defer rows.Close()

	var closed []Round
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("close due rounds: %w", err)
		}
		closed = append(closed, *r)
	}
	return closed, rows.Err()
}

// ForceCloseOpen fecha a rodada aberta independente do horário (operador).
// Devolve nil quando nenhuma rodada está aberta.
func (p *Postgres) ForceCloseOpen(ctx context.Context) (*Round, error) {
	row := p.db.QueryRowContext(ctx, `
		UPDATE rounds SET status=$1
		WHERE id = (SELECT id FROM rounds WHERE status=$2 ORDER BY id DESC LIMIT 1)
		RETURNING `+roundColumns,
		StatusClosed, StatusOpen)
	r, err := scanRound(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("force close round: %w", err)
	}
	return r, nil
}

// MarkResulted grava o resultado com CAS closed->resulted.
// A apuração é exatamente-uma-vez por rodada: se o CAS não pegar nenhuma
// linha, o status atual distingue ErrAlreadyResulted de ErrRoundNotClosed.
func (p *Postgres) MarkResulted(ctx context.Context, id int64, patti, single int) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE rounds SET status=$1, patti_result=$2, single_result=$3
		WHERE id=$4 AND status=$5`,
		StatusResulted, patti, single, id, StatusClosed)
	if err != nil {
		return fmt.Errorf("mark resulted %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark resulted %d: %w", id, err)
	}
	if n == 1 {
		return nil
	}

	var status string
	if err := p.db.QueryRowContext(ctx, `SELECT status FROM rounds WHERE id=$1`, id).Scan(&status); err != nil {
		return fmt.Errorf("mark resulted %d: %w", id, err)
	}
	if status == StatusResulted {
		return game.ErrAlreadyResulted
	}
	return game.ErrRoundNotClosed
}

// StaleUnresulted lista rodadas de datas anteriores que ficaram sem
// resultado (sobras de uma execução anterior, alvo da virada do dia)
func (p *Postgres) StaleUnresulted(ctx context.Context, before string) ([]Round, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+roundColumns+` FROM rounds
		WHERE round_date < $1 AND status IN ($2, $3)
		ORDER BY id ASC`,
		before, StatusOpen, StatusClosed)
	if err != nil {
		return nil, fmt.Errorf("stale rounds: %w", err)
	}
	defer rows.Close()

	var stale []Round
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("stale rounds: %w", err)
		}
		stale = append(stale, *r)
	}
	return stale, rows.Err()
}

// MarkVoid arquiva a rodada (CAS). Devolve false se já estava terminal.
func (p *Postgres) MarkVoid(ctx context.Context, id int64) (bool, error) {
	res, err := p.db.ExecContext(ctx, `
		UPDATE rounds SET status=$1
		WHERE id=$2 AND status IN ($3, $4)`,
		StatusVoid, id, StatusOpen, StatusClosed)
	if err != nil {
		return false, fmt.Errorf("void round %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("void round %d: %w", id, err)
	}
	return n == 1, nil
}

// ResultsForDate devolve as rodadas da data em ordem de sequência
func (p *Postgres) ResultsForDate(ctx context.Context, date string) ([]Round, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+roundColumns+` FROM rounds
		WHERE round_date=$1 ORDER BY seq ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("results for %s: %w", date, err)
	}
	defer rows.Close()

	var out []Round
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("results for %s: %w", date, err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// Place grava a aposta e debita a carteira numa única transação.
// A linha da rodada é travada FOR UPDATE: isso serializa a contagem de
// apostas do usuário contra inserções concorrentes e contra o fechamento
// da rodada. A linha do usuário é travada para o débito.
func (p *Postgres) Place(ctx context.Context, userID int64, roundID int64, kind game.BetKind, value int, amount int64, maxPerRound int) (*Bet, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("place bet: %w", err)
	}
	defer tx.Rollback()

	var status string
	if err := tx.QueryRowContext(ctx, `SELECT status FROM rounds WHERE id=$1 FOR UPDATE`, roundID).Scan(&status); err != nil {
		return nil, fmt.Errorf("place bet: lock round: %w", err)
	}
	if status != StatusOpen {
		// a rodada fechou entre a consulta do engine e o lock
		return nil, game.ErrNoActiveRound
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM bets WHERE round_id=$1 AND user_id=$2`, roundID, userID).Scan(&count); err != nil {
		return nil, fmt.Errorf("place bet: count: %w", err)
	}
	if count >= maxPerRound {
		return nil, game.ErrBetLimitExceeded
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (user_id) VALUES ($1) ON CONFLICT DO NOTHING`, userID); err != nil {
		return nil, fmt.Errorf("place bet: ensure user: %w", err)
	}
	var balance int64
	if err := tx.QueryRowContext(ctx, `SELECT balance FROM users WHERE user_id=$1 FOR UPDATE`, userID).Scan(&balance); err != nil {
		return nil, fmt.Errorf("place bet: lock user: %w", err)
	}
	if balance < amount {
		return nil, game.ErrInsufficientFunds
	}

	if _, err := tx.ExecContext(ctx, `UPDATE users SET balance = balance - $1 WHERE user_id=$2`, amount, userID); err != nil {
		return nil, fmt.Errorf("place bet: debit: %w", err)
	}

	bet := Bet{UserID: userID, RoundID: roundID, Kind: kind, Value: value, Amount: amount}
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO bets (user_id, round_id, kind, value, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		userID, roundID, string(kind), value, amount).Scan(&bet.ID, &bet.CreatedAt); err != nil {
		return nil, fmt.Errorf("place bet: insert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger (user_id, entry_type, amount, reason, external_ref)
		VALUES ($1, 'debit', $2, 'bet', $3)`,
		userID, amount, fmt.Sprintf("bet:%d", bet.ID)); err != nil {
		return nil, fmt.Errorf("place bet: ledger: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("place bet: commit: %w", err)
	}
	return &bet, nil
}

// ListByRound carrega todas as apostas da rodada para apuração
func (p *Postgres) ListByRound(ctx context.Context, roundID int64) ([]Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, round_id, kind, value, amount, created_at
		FROM bets WHERE round_id=$1 ORDER BY id ASC`, roundID)
	if err != nil {
		return nil, fmt.Errorf("bets for round %d: %w", roundID, err)
	}
	defer rows.Close()

	var bets []Bet
	for rows.Next() {
		var b Bet
		var kind string
		if err := rows.Scan(&b.ID, &b.UserID, &b.RoundID, &kind, &b.Value, &b.Amount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("bets for round %d: %w", roundID, err)
		}
		b.Kind = game.BetKind(kind)
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

// HistoryByUser devolve as últimas apostas do usuário (mais recentes primeiro)
func (p *Postgres) HistoryByUser(ctx context.Context, userID int64, limit int) ([]Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, round_id, kind, value, amount, created_at
		FROM bets WHERE user_id=$1 ORDER BY id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("bet history for %d: %w", userID, err)
	}
	defer rows.Close()

	var bets []Bet
	for rows.Next() {
		var b Bet
		var kind string
		if err := rows.Scan(&b.ID, &b.UserID, &b.RoundID, &kind, &b.Value, &b.Amount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("bet history for %d: %w", userID, err)
		}
		b.Kind = game.BetKind(kind)
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

// TotalBets e TotalUsers alimentam o painel de estatísticas do operador
func (p *Postgres) TotalBets(ctx context.Context) (int64, error) {
	var n int64
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bets`).Scan(&n); err != nil {
		return 0, fmt.Errorf("total bets: %w", err)
	}
	return n, nil
}

func (p *Postgres) TotalUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("total users: %w", err)
	}
	return n, nil
}
