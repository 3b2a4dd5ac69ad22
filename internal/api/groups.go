package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/settleup/internal/models"
)

func (h *handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var req GroupRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	group, err := h.groups.CreateGroup(r.Context(), req.Name, req.Members)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fromGroup(group))
}

func (h *handler) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.ListGroups(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = fromGroup(g)
	}
	writeJSON(w, http.StatusOK, map[string]any{"groups": out})
}

func (h *handler) getGroup(w http.ResponseWriter, r *http.Request) {
	group, err := h.groups.GetGroup(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromGroup(group))
}

func (h *handler) addMembers(w http.ResponseWriter, r *http.Request) {
	var req AddMembersRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	group, err := h.groups.AddMembers(r.Context(), chi.URLParam(r, "groupID"), req.Members)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fromGroup(group))
}

func (h *handler) getBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.groups.Balances(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]Balance, len(balances))
	for i, b := range balances {
		out[i] = Balance{Person: b.Name, TotalPaid: b.TotalPaid, TotalOwed: b.TotalOwed, Balance: b.Net}
	}
	writeJSON(w, http.StatusOK, map[string]any{"balances": out})
}

func (h *handler) getSettlements(w http.ResponseWriter, r *http.Request) {
	transfers, err := h.groups.PlanSettlement(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]Settlement, len(transfers))
	for i, t := range transfers {
		out[i] = Settlement{From: t.Payer, To: t.Receiver, Amount: t.Amount}
	}
	writeJSON(w, http.StatusOK, map[string]any{"settlements": out})
}

func (h *handler) createPayment(w http.ResponseWriter, r *http.Request) {
	var req PaymentRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	payment := &models.Payment{
		GroupID: chi.URLParam(r, "groupID"),
		From:    req.From,
		To:      req.To,
		Amount:  req.Amount,
		Note:    req.Note,
	}
	if err := h.groups.RecordPayment(r.Context(), payment); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, fromPayment(payment))
}

func (h *handler) listPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.groups.ListPayments(r.Context(), chi.URLParam(r, "groupID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]Payment, len(payments))
	for i, p := range payments {
		out[i] = fromPayment(p)
	}
	writeJSON(w, http.StatusOK, map[string]any{"payments": out})
}

func (h *handler) deletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.groups.DeletePayment(r.Context(), chi.URLParam(r, "paymentID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
