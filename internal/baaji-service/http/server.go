package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/baaji-bet-platform/internal/baaji-service/cache"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/draft"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/dto"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/engine"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/game"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/repo"
)

// Server expõe a API pública e os endpoints do operador
type Server struct {
	log           *zap.Logger
	eng           *engine.Engine
	drafts        *draft.Store
	roundCache    *cache.RoundCache
	operatorToken string
}

func NewServer(log *zap.Logger, eng *engine.Engine, drafts *draft.Store, roundCache *cache.RoundCache, operatorToken string) *Server {
	return &Server{log: log, eng: eng, drafts: drafts, roundCache: roundCache, operatorToken: operatorToken}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/v1/rounds/current", s.currentRound)
	r.Get("/v1/results", s.resultsForDate)
	r.Post("/v1/bets", s.placeBet)

	r.Get("/v1/users/{id}/wallet", s.getWallet)
	r.Get("/v1/users/{id}/bets", s.betHistory)

	r.Get("/v1/users/{id}/draft", s.getDraft)
	r.Put("/v1/users/{id}/draft/kind", s.draftKind)
	r.Put("/v1/users/{id}/draft/value", s.draftValue)
	r.Put("/v1/users/{id}/draft/amount", s.draftAmount)
	r.Post("/v1/users/{id}/draft/confirm", s.confirmDraft)
	r.Delete("/v1/users/{id}/draft", s.cancelDraft)

	r.Group(func(r chi.Router) {
		r.Use(s.requireOperator)
		r.Post("/v1/admin/result", s.declareResult)
		r.Post("/v1/admin/rounds/close", s.forceClose)
		r.Post("/v1/admin/rounds/open", s.openNext)
		r.Post("/v1/admin/rounds/{id}/resettle", s.resettle)
		r.Post("/v1/admin/wallet/credit", s.creditWallet)
		r.Post("/v1/admin/wallet/debit", s.debitWallet)
		r.Get("/v1/admin/stats", s.stats)
	})

	return r
}

// requireOperator protege as operações privilegiadas com o token do
// operador; o núcleo em si não conhece identidade nenhuma
func (s *Server) requireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.operatorToken == "" || r.Header.Get("X-Operator-Token") != s.operatorToken {
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError traduz a taxonomia de erros do jogo para status HTTP.
// Erros de validação e de estado são esperados e não viram log de falha;
// o resto é infraestrutura e sobe como 500 (retryable).
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidValue),
		errors.Is(err, game.ErrInvalidAmount),
		errors.Is(err, game.ErrInvalidCombination),
		errors.Is(err, draft.ErrIncomplete):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, game.ErrNoActiveRound),
		errors.Is(err, game.ErrRoundNotFound),
		errors.Is(err, draft.ErrNoDraft):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, game.ErrBetLimitExceeded),
		errors.Is(err, game.ErrRoundNotClosed),
		errors.Is(err, game.ErrAlreadyResulted),
		errors.Is(err, game.ErrRoundNotResulted),
		errors.Is(err, game.ErrInsufficientFunds),
		errors.Is(err, game.ErrAlreadyRedeemed):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
	default:
		s.log.Error("request failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}

func userIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func roundToDTO(r *repo.Round) dto.RoundResponse {
	out := dto.RoundResponse{
		RoundID: r.ID,
		Date:    r.Date,
		Seq:     r.Seq,
		Status:  r.Status,
		CloseAt: r.CloseAt,
		Single:  r.SingleResult,
	}
	if r.PattiResult != nil {
		p := game.FormatPatti(*r.PattiResult)
		out.Patti = &p
	}
	return out
}

func betToDTO(b repo.Bet) dto.BetResponse {
	value := strconv.Itoa(b.Value)
	if b.Kind == game.KindPatti {
		value = game.FormatPatti(b.Value)
	}
	return dto.BetResponse{
		BetID:     b.ID,
		RoundID:   b.RoundID,
		Kind:      string(b.Kind),
		Value:     value,
		Amount:    b.Amount,
		CreatedAt: b.CreatedAt,
	}
}

// currentRound devolve a baaji aberta; cacheada por alguns segundos
func (s *Server) currentRound(w http.ResponseWriter, r *http.Request) {
	var cached dto.RoundResponse
	if ok, _ := s.roundCache.Get(r.Context(), &cached); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	round, err := s.eng.CurrentRound(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := roundToDTO(round)
	_ = s.roundCache.Set(r.Context(), out)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) resultsForDate(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "date required (YYYY-MM-DD)"})
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid date"})
		return
	}

	rounds, err := s.eng.ResultsForDate(r.Context(), date)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]dto.RoundResponse, 0, len(rounds))
	for i := range rounds {
		out = append(out, roundToDTO(&rounds[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}
	if req.UserID <= 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "userId required"})
		return
	}

	bet, err := s.eng.PlaceBet(r.Context(), req.UserID, req.Kind, req.Value, req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, betToDTO(*bet))
}

func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid user id"})
		return
	}
	balance, err := s.eng.WalletBalance(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.WalletResponse{UserID: userID, Balance: balance})
}

func (s *Server) betHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid user id"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	bets, err := s.eng.BetHistory(r.Context(), userID, limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	out := make([]dto.BetResponse, 0, len(bets))
	for _, b := range bets {
		out = append(out, betToDTO(b))
	}
	writeJSON(w, http.StatusOK, out)
}
