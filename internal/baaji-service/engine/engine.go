package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/baaji-bet-platform/internal/baaji-service/game"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/repo"
	"github.com/radieske/baaji-bet-platform/pkg/contracts/events"
)

// RoundStore é o dono das rodadas e das transições de status
type RoundStore interface {
	CurrentOpen(ctx context.Context) (*repo.Round, error)
	LatestClosed(ctx context.Context) (*repo.Round, error)
	FindByID(ctx context.Context, id int64) (*repo.Round, error)
	CountForDate(ctx context.Context, date string) (int, error)
	Create(ctx context.Context, date string, seq int, closeAt time.Time) (*repo.Round, error)
	CloseDue(ctx context.Context, now time.Time) ([]repo.Round, error)
	ForceCloseOpen(ctx context.Context) (*repo.Round, error)
	MarkResulted(ctx context.Context, id int64, patti, single int) error
	StaleUnresulted(ctx context.Context, before string) ([]repo.Round, error)
	MarkVoid(ctx context.Context, id int64) (bool, error)
	ResultsForDate(ctx context.Context, date string) ([]repo.Round, error)
}

// BetStore é o único escritor de apostas; Place executa débito + insert
// numa transação só
type BetStore interface {
	Place(ctx context.Context, userID int64, roundID int64, kind game.BetKind, value int, amount int64, maxPerRound int) (*repo.Bet, error)
	ListByRound(ctx context.Context, roundID int64) ([]repo.Bet, error)
	HistoryByUser(ctx context.Context, userID int64, limit int) ([]repo.Bet, error)
}

// Ledger é o dono exclusivo das mutações de saldo
type Ledger interface {
	Balance(ctx context.Context, userID int64) (int64, error)
	Credit(ctx context.Context, userID int64, amount int64, reason, externalRef string) (int64, error)
	Debit(ctx context.Context, userID int64, amount int64, reason, externalRef string) (int64, error)
	DebitRedeem(ctx context.Context, userID int64, amount int64) (int64, error)
	CreditSettlement(ctx context.Context, roundID, userID int64, amount int64, reason string) (bool, error)
}

// StatsStore alimenta o painel do operador
type StatsStore interface {
	TotalUsers(ctx context.Context) (int64, error)
	TotalBets(ctx context.Context) (int64, error)
}

// Publisher entrega os eventos de notificação. Melhor esforço: o engine
// loga e ignora falhas, nunca desfaz uma transição por causa delas.
type Publisher interface {
	RoundOpened(ctx context.Context, ev events.RoundOpened) error
	RoundClosed(ctx context.Context, ev events.RoundClosed) error
	ResultDeclared(ctx context.Context, ev events.ResultDeclared) error
	PayoutCredited(ctx context.Context, ev events.PayoutCredited) error
}

// Hooks são callbacks opcionais de métricas, ligados no main
type Hooks struct {
	OnBetPlaced   func(amount int64)
	OnRoundClosed func()
	OnSettled     func(winners int, totalPayout int64)
	OnVoided      func(refunds int)
	OnError       func(stage string)
}

func (h Hooks) err(stage string) {
	if h.OnError != nil {
		h.OnError(stage)
	}
}

// Engine é o núcleo do ciclo de vida das baajis: recebe apostas, fecha e
// apura rodadas e mantém o agendamento diário. Toda concorrência fica nos
// stores (locks por linha); o engine orquestra.
type Engine struct {
	log      *zap.Logger
	rounds   RoundStore
	bets     BetStore
	ledger   Ledger
	stats    StatsStore
	publ     Publisher
	rules    game.Rules
	schedule game.Schedule
	hooks    Hooks
	now      func() time.Time
}

func New(log *zap.Logger, rounds RoundStore, bets BetStore, ledger Ledger, stats StatsStore, publ Publisher, rules game.Rules, schedule game.Schedule, hooks Hooks) *Engine {
	return &Engine{
		log:      log,
		rounds:   rounds,
		bets:     bets,
		ledger:   ledger,
		stats:    stats,
		publ:     publ,
		rules:    rules,
		schedule: schedule,
		hooks:    hooks,
		now:      time.Now,
	}
}

// WithClock troca o relógio (testes)
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Rules expõe os limites vigentes (usado pelos handlers de rascunho)
func (e *Engine) Rules() game.Rules { return e.rules }

// CurrentRound devolve a rodada aberta ou ErrNoActiveRound (estado
// transitório esperado entre resulted e a próxima open, não uma falha)
func (e *Engine) CurrentRound(ctx context.Context) (*repo.Round, error) {
	r, err := e.rounds.CurrentOpen(ctx)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, game.ErrNoActiveRound
	}
	return r, nil
}

// ResultsForDate lista as rodadas da data com seus resultados
func (e *Engine) ResultsForDate(ctx context.Context, date string) ([]repo.Round, error) {
	return e.rounds.ResultsForDate(ctx, date)
}

// Stats resume o estado do dia para o operador
type Stats struct {
	TotalUsers  int64
	TotalBets   int64
	RoundsToday int
}

func (e *Engine) Stats(ctx context.Context) (*Stats, error) {
	users, err := e.stats.TotalUsers(ctx)
	if err != nil {
		return nil, err
	}
	bets, err := e.stats.TotalBets(ctx)
	if err != nil {
		return nil, err
	}
	today, err := e.rounds.CountForDate(ctx, e.schedule.DateKey(e.now()))
	if err != nil {
		return nil, err
	}
	return &Stats{TotalUsers: users, TotalBets: bets, RoundsToday: today}, nil
}
