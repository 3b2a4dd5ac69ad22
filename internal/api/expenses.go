package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

func (h *handler) listCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"categories": h.expenses.Categories()})
}

func (h *handler) resolveShares(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resolved, err := h.expenses.ResolveShares(r.Context(), req.Amount, toModelShares(req.Shares))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ResolveResponse{Amount: req.Amount, Shares: fromResolved(resolved)})
}

func (h *handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	expense := req.toModel()
	expense.GroupID = chi.URLParam(r, "groupID")

	view, err := h.expenses.CreateExpense(r.Context(), expense)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fromExpenseView(view))
}

func (h *handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", h.defaultPageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if limit == 0 {
		limit = h.defaultPageSize
	}
	limit = min(limit, h.maxPageSize)

	filter := storage.ExpenseFilter{
		Category: models.Category(r.URL.Query().Get("category")),
		Skip:     skip,
		Limit:    limit,
	}
	views, err := h.expenses.ListExpenses(r.Context(), chi.URLParam(r, "groupID"), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]Expense, len(views))
	for i, v := range views {
		out[i] = fromExpenseView(v)
	}
	writeJSON(w, http.StatusOK, ExpenseList{Expenses: out, Skip: skip, Limit: limit})
}

func (h *handler) getExpense(w http.ResponseWriter, r *http.Request) {
	view, err := h.expenses.GetExpense(r.Context(), chi.URLParam(r, "expenseID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromExpenseView(view))
}

func (h *handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	expense := req.toModel()
	expense.ID = chi.URLParam(r, "expenseID")

	view, err := h.expenses.UpdateExpense(r.Context(), expense)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromExpenseView(view))
}

func (h *handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.expenses.DeleteExpense(r.Context(), chi.URLParam(r, "expenseID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (req *ExpenseRequest) toModel() *models.Expense {
	return &models.Expense{
		Description: req.Description,
		Category:    models.Category(req.Category),
		Amount:      req.Amount,
		PaidBy:      req.PaidBy,
		Shares:      toModelShares(req.Shares),
	}
}

// queryInt reads a non-negative integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, &requestError{code: CodeBadRequest, err: fmt.Errorf("%s must be a non-negative integer, got %q", name, raw)}
	}
	return v, nil
}
