package http

import (
	"net/http"

	"studentspend/internal/core"
	"studentspend/internal/log"
)

type createExpenseRequest struct {
	Amount      flexString `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	Date        core.Date  `json:"date"`
}

func (req createExpenseRequest) draft() (core.ExpenseDraft, error) {
	amount, err := core.ParseAmount(string(req.Amount))
	if err != nil {
		return core.ExpenseDraft{}, err
	}
	category, err := core.ParseCategory(req.Category)
	if err != nil {
		return core.ExpenseDraft{}, err
	}
	return core.ExpenseDraft{
		Amount:      amount,
		Category:    category,
		Description: sanitizeInput(req.Description),
		Date:        req.Date,
	}, nil
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	limit, err := ParseLimit(r.URL.Query())
	if err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}

	if err := s.ledger.Refresh(r.Context()); err != nil {
		s.writeError(w, r, log.OpList, err)
		return
	}
	expenses := s.ledger.Expenses()
	total := len(expenses)
	if limit > 0 {
		expenses = core.RecentExpenses(expenses, limit)
	}

	NewJSONResponse().
		Field("expenses", expenses).
		Field("count", total).
		Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}
	draft, err := req.draft()
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}

	e, ev, err := s.ledger.AddExpense(r.Context(), draft)
	if err != nil {
		s.writeError(w, r, log.OpCreate, err)
		return
	}

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/expenses/"+e.ID).
		Field("expense", e).
		Notify(ev).
		Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	removed, ev, err := s.ledger.RemoveExpense(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, log.OpDelete, err)
		return
	}

	NewJSONResponse().
		Field("expense", removed).
		Notify(ev).
		Write(w)
}

func (s *Server) handleClearExpenses(w http.ResponseWriter, r *http.Request) {
	ev, err := s.ledger.ClearExpenses(r.Context())
	if err != nil {
		s.writeError(w, r, log.OpClear, err)
		return
	}

	NewJSONResponse().
		Field("expenses", []core.Expense{}).
		Notify(ev).
		Write(w)
}
