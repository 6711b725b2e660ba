package server

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/aroray/settleup/internal/middleware"
	"github.com/aroray/settleup/internal/models"
	"github.com/aroray/settleup/internal/service"
	"github.com/aroray/settleup/internal/split"
)

type registerRequest struct {
	DisplayName  string `json:"display_name"`
	DeviceSecret string `json:"device_secret"`
}

type loginRequest struct {
	MemberID     string `json:"member_id"`
	DeviceSecret string `json:"device_secret"`
}

type sessionResponse struct {
	Member *models.Member `json:"member"`
	Token  string         `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	member, err := s.devices.Register(r.Context(), req.DisplayName, req.DeviceSecret)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.tokens.Generate(member)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResponse{Member: member, Token: token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	member, err := s.devices.Authenticate(r.Context(), req.MemberID, req.DeviceSecret)
	if err != nil {
		writeError(w, err)
		return
	}
	token, err := s.tokens.Generate(member)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Member: member, Token: token})
}

type finalizeSplitRequest struct {
	Role models.Role `json:"role"`
	// Total accepts numeric or string-encoded decimals.
	Total  decimal.Decimal `json:"total"`
	Shares []split.Share   `json:"shares"`
}

type finalizeSplitResponse struct {
	NeedsConfirmation bool                 `json:"needs_confirmation"`
	Shares            []split.Share        `json:"shares"`
	Participants      []models.Participant `json:"participants,omitempty"`
}

// handleFinalizeSplit runs the allocator's finalize step over shares the
// client edited locally. A needs-confirmation response carries the rescaled
// shares for the client to show and resubmit.
func (s *Server) handleFinalizeSplit(w http.ResponseWriter, r *http.Request) {
	var req finalizeSplitRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	result, err := split.Restore(req.Shares).Finalize(req.Role, req.Total)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, finalizeSplitResponse{
		NeedsConfirmation: result.NeedsConfirmation,
		Shares:            result.State.Shares(),
		Participants:      result.Participants,
	})
}

type participantRequest struct {
	MemberID string          `json:"member_id"`
	Role     models.Role     `json:"role"`
	Amount   decimal.Decimal `json:"amount"`
}

type expenseRequest struct {
	GroupID      string               `json:"group_id"`
	EventID      string               `json:"event_id"`
	Description  string               `json:"description"`
	Total        decimal.Decimal      `json:"total"`
	Participants []participantRequest `json:"participants"`
}

func (req expenseRequest) toInput() service.ExpenseInput {
	participants := make([]models.Participant, len(req.Participants))
	for i, p := range req.Participants {
		participants[i] = models.Participant{
			MemberID: p.MemberID,
			Role:     p.Role,
			Amount:   p.Amount,
		}
	}
	return service.ExpenseInput{
		GroupID:      req.GroupID,
		EventID:      req.EventID,
		Description:  req.Description,
		Total:        req.Total,
		Participants: participants,
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	e, err := s.expenses.Create(r.Context(), middleware.GetMemberID(r.Context()), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.expenses.Get(r.Context(), middleware.GetMemberID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	e, err := s.expenses.Update(r.Context(), middleware.GetMemberID(r.Context()), r.PathValue("id"), req.toInput())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.Delete(r.Context(), middleware.GetMemberID(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusRequest struct {
	Role   models.Role          `json:"role"`
	Status models.PaymentStatus `json:"status"`
}

func (s *Server) handleSetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	e, err := s.expenses.SetPaymentStatus(r.Context(),
		middleware.GetMemberID(r.Context()),
		r.PathValue("id"), r.PathValue("memberID"),
		req.Role, req.Status,
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	expenses, err := s.expenses.ListByGroup(r.Context(),
		middleware.GetMemberID(r.Context()),
		r.PathValue("id"),
		q.Get("event"),
		q.Get("active") == "true",
	)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	balance, err := s.expenses.Balance(r.Context(), middleware.GetMemberID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

func (s *Server) handleTransfers(w http.ResponseWriter, r *http.Request) {
	transfers, err := s.expenses.Transfers(r.Context(), middleware.GetMemberID(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transfers": transfers})
}
