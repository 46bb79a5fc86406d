package repo

import (
	"time"

	"github.com/radieske/baaji-bet-platform/internal/baaji-service/game"
)

// Status de uma baaji. void é terminal: rodada descartada na virada do dia
// com as apostas estornadas.
const (
	StatusOpen     = "open"
	StatusClosed   = "closed"
	StatusResulted = "resulted"
	StatusVoid     = "void"
)

// Round é uma baaji persistida no Postgres.
type Round struct {
	ID           int64
	Date         string // YYYY-MM-DD na timezone do jogo
	Seq          int    // 1..8, contíguo dentro da data
	Status       string
	CloseAt      time.Time
	PattiResult  *int // presente só após resulted
	SingleResult *int
	CreatedAt    time.Time
}

// Bet é uma aposta persistida. Imutável após a criação; o débito da
// carteira acontece na mesma transação do insert.
type Bet struct {
	ID        int64
	UserID    int64
	RoundID   int64
	Kind      game.BetKind
	Value     int
	Amount    int64
	CreatedAt time.Time
}
