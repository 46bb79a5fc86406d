package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/radieske/baaji-bet-platform/internal/baaji-service/game"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/repo"
	"github.com/radieske/baaji-bet-platform/pkg/contracts/events"
)

// memStore é o banco inteiro em memória: rodadas, apostas e carteiras na
// mesma estrutura, como no Postgres real. Um único mutex faz o papel dos
// locks de linha.
type memStore struct {
	mu sync.Mutex

	rounds     map[int64]*repo.Round
	nextRound  int64
	bets       []repo.Bet
	nextBet    int64
	balances   map[int64]int64
	lastRedeem map[int64]string
	settled    map[string]bool

	now func() time.Time
}

func newMemStore(now func() time.Time) *memStore {
	return &memStore{
		rounds:     make(map[int64]*repo.Round),
		balances:   make(map[int64]int64),
		lastRedeem: make(map[int64]string),
		settled:    make(map[string]bool),
		now:        now,
	}
}

// --- RoundStore ---

func (m *memStore) CurrentOpen(_ context.Context) (*repo.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latestWithStatus(repo.StatusOpen), nil
}

func (m *memStore) LatestClosed(_ context.Context) (*repo.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latestWithStatus(repo.StatusClosed), nil
}

func (m *memStore) latestWithStatus(status string) *repo.Round {
	var best *repo.Round
	for _, r := range m.rounds {
		if r.Status != status {
			continue
		}
		if best == nil || r.ID > best.ID {
			best = r
		}
	}
	if best == nil {
		return nil
	}
	cp := *best
	return &cp
}

func (m *memStore) FindByID(_ context.Context, id int64) (*repo.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[id]
	if !ok {
		return nil, game.ErrRoundNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) CountForDate(_ context.Context, date string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rounds {
		if r.Date == date {
			n++
		}
	}
	return n, nil
}

func (m *memStore) Create(_ context.Context, date string, seq int, closeAt time.Time) (*repo.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextRound++
	r := &repo.Round{
		ID:        m.nextRound,
		Date:      date,
		Seq:       seq,
		Status:    repo.StatusOpen,
		CloseAt:   closeAt,
		CreatedAt: m.now(),
	}
	m.rounds[r.ID] = r
	cp := *r
	return &cp, nil
}

func (m *memStore) CloseDue(_ context.Context, now time.Time) ([]repo.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var closed []repo.Round
	for _, r := range m.rounds {
		if r.Status == repo.StatusOpen && !r.CloseAt.After(now) {
			r.Status = repo.StatusClosed
			closed = append(closed, *r)
		}
	}
	return closed, nil
}

func (m *memStore) ForceCloseOpen(_ context.Context) (*repo.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.latestWithStatus(repo.StatusOpen)
	if r == nil {
		return nil, nil
	}
	m.rounds[r.ID].Status = repo.StatusClosed
	r.Status = repo.StatusClosed
	return r, nil
}

func (m *memStore) MarkResulted(_ context.Context, id int64, patti, single int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[id]
	if !ok {
		return game.ErrRoundNotFound
	}
	if r.Status != repo.StatusClosed {
		if r.Status == repo.StatusResulted {
			return game.ErrAlreadyResulted
		}
		return game.ErrRoundNotClosed
	}
	r.Status = repo.StatusResulted
	r.PattiResult = &patti
	r.SingleResult = &single
	return nil
}

func (m *memStore) StaleUnresulted(_ context.Context, before string) ([]repo.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var stale []repo.Round
	for _, r := range m.rounds {
		if r.Date < before && (r.Status == repo.StatusOpen || r.Status == repo.StatusClosed) {
			stale = append(stale, *r)
		}
	}
	return stale, nil
}

func (m *memStore) MarkVoid(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rounds[id]
	if !ok || (r.Status != repo.StatusOpen && r.Status != repo.StatusClosed) {
		return false, nil
	}
	r.Status = repo.StatusVoid
	return true, nil
}

func (m *memStore) ResultsForDate(_ context.Context, date string) ([]repo.Round, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repo.Round
	for _, r := range m.rounds {
		if r.Date == date {
			out = append(out, *r)
		}
	}
	return out, nil
}

// --- BetStore ---

func (m *memStore) Place(_ context.Context, userID, roundID int64, kind game.BetKind, value int, amount int64, maxPerRound int) (*repo.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rounds[roundID]
	if !ok || r.Status != repo.StatusOpen {
		return nil, game.ErrNoActiveRound
	}

	count := 0
	for _, b := range m.bets {
		if b.RoundID == roundID && b.UserID == userID {
			count++
		}
	}
	if count >= maxPerRound {
		return nil, game.ErrBetLimitExceeded
	}

	if m.balances[userID] < amount {
		return nil, game.ErrInsufficientFunds
	}
	m.balances[userID] -= amount

	m.nextBet++
	bet := repo.Bet{
		ID:        m.nextBet,
		UserID:    userID,
		RoundID:   roundID,
		Kind:      kind,
		Value:     value,
		Amount:    amount,
		CreatedAt: m.now(),
	}
	m.bets = append(m.bets, bet)
	return &bet, nil
}

func (m *memStore) ListByRound(_ context.Context, roundID int64) ([]repo.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repo.Bet
	for _, b := range m.bets {
		if b.RoundID == roundID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) HistoryByUser(_ context.Context, userID int64, limit int) ([]repo.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repo.Bet
	for i := len(m.bets) - 1; i >= 0 && len(out) < limit; i-- {
		if m.bets[i].UserID == userID {
			out = append(out, m.bets[i])
		}
	}
	return out, nil
}

// --- Ledger ---

func (m *memStore) Balance(_ context.Context, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID], nil
}

func (m *memStore) Credit(_ context.Context, userID, amount int64, _, _ string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] += amount
	return m.balances[userID], nil
}

func (m *memStore) Debit(_ context.Context, userID, amount int64, _, _ string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[userID] < amount {
		return 0, game.ErrInsufficientFunds
	}
	m.balances[userID] -= amount
	return m.balances[userID], nil
}

func (m *memStore) DebitRedeem(_ context.Context, userID, amount int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	today := m.now().Format("2006-01-02")
	if m.lastRedeem[userID] == today {
		return 0, game.ErrAlreadyRedeemed
	}
	if m.balances[userID] < amount {
		return 0, game.ErrInsufficientFunds
	}
	m.balances[userID] -= amount
	m.lastRedeem[userID] = today
	return m.balances[userID], nil
}

func (m *memStore) CreditSettlement(_ context.Context, roundID, userID, amount int64, _ string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%d:%d", roundID, userID)
	if m.settled[key] {
		return false, nil
	}
	m.settled[key] = true
	m.balances[userID] += amount
	return true, nil
}

// --- StatsStore ---

func (m *memStore) TotalUsers(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.balances)), nil
}

func (m *memStore) TotalBets(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.bets)), nil
}

func (m *memStore) setBalance(userID, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] = balance
}

func (m *memStore) balance(userID int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID]
}

// flakyLedger injeta falhas transitórias nos créditos de apuração
type flakyLedger struct {
	*memStore
	failMu   sync.Mutex
	failures int
}

func (f *flakyLedger) CreditSettlement(ctx context.Context, roundID, userID, amount int64, reason string) (bool, error) {
	f.failMu.Lock()
	if f.failures > 0 {
		f.failures--
		f.failMu.Unlock()
		return false, fmt.Errorf("ledger unavailable")
	}
	f.failMu.Unlock()
	return f.memStore.CreditSettlement(ctx, roundID, userID, amount, reason)
}

// memPublisher grava os eventos publicados para inspeção
type memPublisher struct {
	mu       sync.Mutex
	opened   []events.RoundOpened
	closed   []events.RoundClosed
	resulted []events.ResultDeclared
	payouts  []events.PayoutCredited
}

func (p *memPublisher) RoundOpened(_ context.Context, ev events.RoundOpened) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.opened = append(p.opened, ev)
	return nil
}

func (p *memPublisher) RoundClosed(_ context.Context, ev events.RoundClosed) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = append(p.closed, ev)
	return nil
}

func (p *memPublisher) ResultDeclared(_ context.Context, ev events.ResultDeclared) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resulted = append(p.resulted, ev)
	return nil
}

func (p *memPublisher) PayoutCredited(_ context.Context, ev events.PayoutCredited) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payouts = append(p.payouts, ev)
	return nil
}

func (p *memPublisher) payoutEvents() []events.PayoutCredited {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.PayoutCredited(nil), p.payouts...)
}

func (p *memPublisher) resultEvents() []events.ResultDeclared {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.ResultDeclared(nil), p.resulted...)
}
