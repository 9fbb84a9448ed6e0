package web

import (
	"net/http"

	"github.com/eliko2000/CPQ-System-sub009/internal/app"
)

func (h *Handler) listAssemblies(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListAssemblies(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) createAssembly(w http.ResponseWriter, r *http.Request) {
	var req app.CreateAssemblyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.CreateAssembly(r.Context(), req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, res)
}

func (h *Handler) getAssembly(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.svc.GetAssembly(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) deleteAssembly(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteAssembly(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addAssemblyComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req app.AssemblyComponentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.AddAssemblyComponent(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) removeAssemblyComponent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	refID, ok := urlID(w, r, "refID")
	if !ok {
		return
	}
	res, err := h.svc.RemoveAssemblyComponent(r.Context(), id, refID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) reorderAssemblyComponents(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		RefIDs []int `json:"ref_ids"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.ReorderAssemblyComponents(r.Context(), id, req.RefIDs)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) priceAssembly(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req app.RatesRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.PriceAssembly(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, res)
}
