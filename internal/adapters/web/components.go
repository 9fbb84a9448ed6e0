package web

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/eliko2000/CPQ-System-sub009/internal/app"
)

func (h *Handler) listComponents(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListComponents(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) createComponent(w http.ResponseWriter, r *http.Request) {
	var req app.ComponentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.CreateComponent(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, res)
}

func (h *Handler) getComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.svc.GetComponent(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) updateComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req app.ComponentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.UpdateComponent(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) updateComponentPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req app.PriceUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.UpdateComponentPrice(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) deleteComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteComponent(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) refreshComponentCosts(w http.ResponseWriter, r *http.Request) {
	var req app.RatesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.RefreshComponentCosts(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) convertAmount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount   string           `json:"amount"`
		Currency string           `json:"currency"`
		Rates    app.RatesRequest `json:"rates"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, r, "invalid amount: "+req.Amount, "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	res, err := h.svc.ConvertAmount(r.Context(), amount, req.Currency, req.Rates)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}
