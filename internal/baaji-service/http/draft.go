package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/radieske/baaji-bet-platform/internal/baaji-service/draft"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/dto"
	"github.com/radieske/baaji-bet-platform/internal/baaji-service/game"
)

func draftToDTO(d *draft.Draft) dto.DraftResponse {
	return dto.DraftResponse{
		UserID:      d.UserID,
		Kind:        d.Kind,
		Value:       d.Value,
		Amount:      d.Amount,
		Confirmable: d.Confirmable(),
	}
}

func (s *Server) getDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid user id"})
		return
	}
	d, err := s.drafts.Get(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftToDTO(d))
}

// draftKind inicia (ou recomeça) o rascunho do usuário
func (s *Server) draftKind(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid user id"})
		return
	}
	var req dto.DraftKindRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}

	d := &draft.Draft{UserID: userID}
	if err := d.SetKind(req.Kind); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.drafts.Save(r.Context(), d); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftToDTO(d))
}

func (s *Server) draftValue(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid user id"})
		return
	}
	var req dto.DraftValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}

	d, err := s.drafts.Get(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := d.SetValue(req.Value); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.drafts.Save(r.Context(), d); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftToDTO(d))
}

func (s *Server) draftAmount(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid user id"})
		return
	}
	var req dto.DraftAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "bad json"})
		return
	}

	d, err := s.drafts.Get(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := d.SetAmount(s.eng.Rules(), req.Amount); err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.drafts.Save(r.Context(), d); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftToDTO(d))
}

// confirmDraft transforma o rascunho completo numa aposta de verdade.
// Só aqui a carteira é tocada; o rascunho é descartado no sucesso.
func (s *Server) confirmDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid user id"})
		return
	}

	d, err := s.drafts.Get(r.Context(), userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !d.Confirmable() {
		s.writeError(w, draft.ErrIncomplete)
		return
	}

	value := strconv.Itoa(*d.Value)
	if game.BetKind(d.Kind) == game.KindPatti {
		value = game.FormatPatti(*d.Value)
	}
	bet, err := s.eng.PlaceBet(r.Context(), userID, d.Kind, value, *d.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}

	_ = s.drafts.Delete(r.Context(), userID)
	writeJSON(w, http.StatusCreated, betToDTO(*bet))
}

// cancelDraft descarta o rascunho sem nenhum efeito colateral; nada foi
// debitado ainda
func (s *Server) cancelDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid user id"})
		return
	}
	if err := s.drafts.Delete(r.Context(), userID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
