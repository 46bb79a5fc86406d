package repo

import (
	"context"
	"database/sql"
	"fmt"
)

// ddl cria o schema quando ausente; seguro de rodar em todo boot
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id     BIGINT PRIMARY KEY,
		balance     BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
		last_redeem DATE,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS rounds (
		id            BIGSERIAL PRIMARY KEY,
		round_date    DATE NOT NULL,
		seq           INT NOT NULL,
		status        TEXT NOT NULL,
		close_at      TIMESTAMPTZ NOT NULL,
		patti_result  INT,
		single_result INT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (round_date, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_rounds_status ON rounds (status)`,
	`CREATE TABLE IF NOT EXISTS bets (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(user_id),
		round_id   BIGINT NOT NULL REFERENCES rounds(id),
		kind       TEXT NOT NULL,
		value      INT NOT NULL,
		amount     BIGINT NOT NULL CHECK (amount > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bets_round_user ON bets (round_id, user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_bets_user ON bets (user_id, id DESC)`,
	`CREATE TABLE IF NOT EXISTS wallet_ledger (
		id           BIGSERIAL PRIMARY KEY,
		user_id      BIGINT NOT NULL,
		entry_type   TEXT NOT NULL,
		amount       BIGINT NOT NULL CHECK (amount > 0),
		reason       TEXT NOT NULL,
		external_ref TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS settlements (
		round_id   BIGINT NOT NULL,
		user_id    BIGINT NOT NULL,
		amount     BIGINT NOT NULL,
		reason     TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (round_id, user_id)
	)`,
}

// Migrate aplica o schema. A chave primária de settlements é o que garante
// crédito único por (rodada, usuário) nas reexecuções da apuração.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
