package web

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/eliko2000/CPQ-System-sub009/internal/app"
)

func (h *Handler) listQuotations(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListQuotations(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) createQuotation(w http.ResponseWriter, r *http.Request) {
	var req app.CreateQuotationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.CreateQuotation(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, res)
}

func (h *Handler) getQuotation(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.svc.GetQuotation(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) deleteQuotation(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteQuotation(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) updateQuotationParameters(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req app.ParametersRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.UpdateQuotationParameters(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) addQuotationItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req app.AddItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.AddQuotationItem(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, res)
}

func (h *Handler) updateItemPrice(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := urlID(w, r, "itemID")
	if !ok {
		return
	}
	var req app.PriceUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.UpdateItemPrice(r.Context(), id, itemID, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) removeQuotationItem(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	itemID, ok := urlID(w, r, "itemID")
	if !ok {
		return
	}
	res, err := h.svc.RemoveQuotationItem(r.Context(), id, itemID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) transitionQuotationStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.TransitionQuotationStatus(r.Context(), id, req.Status)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) recalculateQuotation(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.svc.RecalculateQuotation(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) exportQuotationPDF(w http.ResponseWriter, r *http.Request) {
	h.streamExport(w, r, h.svc.ExportQuotationPDF)
}

func (h *Handler) exportQuotationExcel(w http.ResponseWriter, r *http.Request) {
	h.streamExport(w, r, h.svc.ExportQuotationExcel)
}

func (h *Handler) streamExport(w http.ResponseWriter, r *http.Request, export func(ctx context.Context, id int) (*app.ExportResult, error)) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	res, err := export(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	_, _ = w.Write(res.Data)
}
