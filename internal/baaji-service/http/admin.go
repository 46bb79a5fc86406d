package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/baaji-bet-platform/internal/baaji-service/dto"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/engine"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/game"
)

func settlementToDTO(s *engine.SettlementSummary) dto.SettlementResponse {
	return dto.SettlementResponse{
		RoundID:     s.RoundID,
		Seq:         s.Seq,
		Patti:       game.FormatPatti(s.Patti),
		Single:      s.Single,
		Bets:        s.Bets,
		Winners:     s.Winners,
		TotalPayout: s.TotalPayout,
		NextRoundID: s.NextRoundID,
	}
}

// declareResult recebe a patti do operador e dispara a apuração
func (s *Server) declareResult(w http.ResponseWriter, r *http.Request) {
	var req dto.DeclareResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}

	patti, err := game.ParseValue(game.KindPatti, req.Patti)
	if err != nil {
		s.writeError(w, game.ErrInvalidCombination)
		return
	}

	summary, err := s.eng.DeclareResult(r.Context(), req.RoundID, patti)
	if err != nil {
		s.writeError(w, err)
		return
	}
	_ = s.roundCache.Invalidate(r.Context())
	writeJSON(w, http.StatusOK, settlementToDTO(summary))
}

func (s *Server) forceClose(w http.ResponseWriter, r *http.Request) {
	round, err := s.eng.ForceClose(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	_ = s.roundCache.Invalidate(r.Context())
	writeJSON(w, http.StatusOK, roundToDTO(round))
}

// openNext deixa o operador abrir a próxima rodada fora da virada do dia
// (primeiro boot, retomada após pausa)
func (s *Server) openNext(w http.ResponseWriter, r *http.Request) {
	round, err := s.eng.OpenNext(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if round == nil {
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "day complete"})
		return
	}
	_ = s.roundCache.Invalidate(r.Context())
	writeJSON(w, http.StatusCreated, roundToDTO(round))
}

// resettle reaplica os créditos de uma rodada já apurada (recuperação)
func (s *Server) resettle(w http.ResponseWriter, r *http.Request) {
	roundID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || roundID <= 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid round id"})
		return
	}
	summary, err := s.eng.Resettle(r.Context(), roundID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlementToDTO(summary))
}

func (s *Server) creditWallet(w http.ResponseWriter, r *http.Request) {
	var req dto.WalletCreditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}
	if req.UserID <= 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "userId required"})
		return
	}
	balance, err := s.eng.CreditWallet(r.Context(), req.UserID, req.Amount, req.ExternalRef)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.WalletResponse{UserID: req.UserID, Balance: balance})
}

func (s *Server) debitWallet(w http.ResponseWriter, r *http.Request) {
	var req dto.WalletDebitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}
	if req.UserID <= 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "userId required"})
		return
	}
	balance, err := s.eng.DebitWallet(r.Context(), req.UserID, req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.WalletResponse{UserID: req.UserID, Balance: balance})
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.eng.Stats(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.StatsResponse{
		TotalUsers:  st.TotalUsers,
		TotalBets:   st.TotalBets,
		RoundsToday: st.RoundsToday,
	})
}
