package http

import (
	"fmt"
	"net/http"

	"studentspend/internal/core"
	"studentspend/internal/log"
)

type categoryAmountDTO struct {
	Category core.Category `json:"category"`
	Emoji    string        `json:"emoji"`
	Amount   string        `json:"amount"`
}

type statsDTO struct {
	Month             string                   `json:"month"`
	TotalSpent        string                   `json:"totalSpent"`
	MonthlySpent      string                   `json:"monthlySpent"`
	CategorySpendings map[core.Category]string `json:"categorySpendings"`
	SavingsGoal       string                   `json:"savingsGoal"`
	CurrentSavings    string                   `json:"currentSavings"`
	OnTrack           bool                     `json:"onTrack"`
	Overage           string                   `json:"overage"`
	RemainingPercent  string                   `json:"remainingPercent"`
	SavingsProgress   string                   `json:"savingsProgress"`
	TopCategory       *categoryAmountDTO       `json:"topCategory"`
	Breakdown         []categoryAmountDTO      `json:"breakdown"`
}

func newCategoryAmountDTO(ca core.CategoryAmount) categoryAmountDTO {
	return categoryAmountDTO{
		Category: ca.Category,
		Emoji:    ca.Category.Emoji(),
		Amount:   core.FormatAmount(ca.Amount),
	}
}

func newStatsDTO(p MonthParams, st core.Stats) statsDTO {
	dto := statsDTO{
		Month:             fmt.Sprintf("%04d-%02d", p.Year, p.Month),
		TotalSpent:        core.FormatAmount(st.TotalSpent),
		MonthlySpent:      core.FormatAmount(st.MonthlySpent),
		CategorySpendings: make(map[core.Category]string, len(st.CategorySpendings)),
		SavingsGoal:       core.FormatAmount(st.SavingsGoal),
		CurrentSavings:    core.FormatAmount(st.CurrentSavings),
		OnTrack:           st.OnTrack(),
		Overage:           core.FormatAmount(st.Overage()),
		RemainingPercent:  st.RemainingPercent().StringFixed(1),
		SavingsProgress:   st.SavingsProgress().StringFixed(1),
		Breakdown:         []categoryAmountDTO{},
	}
	for c, amount := range st.CategorySpendings {
		dto.CategorySpendings[c] = core.FormatAmount(amount)
	}
	if top, ok := st.TopCategory(); ok {
		t := newCategoryAmountDTO(top)
		dto.TopCategory = &t
	}
	for _, ca := range st.Breakdown() {
		dto.Breakdown = append(dto.Breakdown, newCategoryAmountDTO(ca))
	}
	return dto
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	params, err := ParseMonthParams(r.URL.Query(), now)
	if err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}

	if err := s.ledger.Refresh(r.Context()); err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	st := s.ledger.Stats(params.Reference(now.Location()))
	writeJSON(w, http.StatusOK, "application/json", newStatsDTO(params, st))
}

type savingsGoalRequest struct {
	Goal flexString `json:"goal"`
}

func (s *Server) handleGetSavingsGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Refresh(r.Context()); err != nil {
		s.writeError(w, r, log.OpRead, err)
		return
	}
	NewJSONResponse().
		Field("savingsGoal", core.FormatAmount(s.ledger.SavingsGoal())).
		Write(w)
}

func (s *Server) handleUpdateSavingsGoal(w http.ResponseWriter, r *http.Request) {
	var req savingsGoalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}
	goal, err := core.ParseAmount(string(req.Goal))
	if err != nil {
		s.writeError(w, r, log.OpUpdate, fmt.Errorf("%w: %w", core.ErrInvalidGoal, err))
		return
	}
	ev, err := s.ledger.UpdateSavingsGoal(r.Context(), goal)
	if err != nil {
		s.writeError(w, r, log.OpUpdate, err)
		return
	}

	NewJSONResponse().
		Field("savingsGoal", core.FormatAmount(goal)).
		Notify(ev).
		Write(w)
}
