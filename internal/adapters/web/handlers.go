package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eliko2000/CPQ-System-sub009/internal/app"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)

	// ── Components ───────────────────────────────────────────────────────────
	r.Get("/api/components", h.listComponents)
	r.Post("/api/components", h.createComponent)
	r.Get("/api/components/{id}", h.getComponent)
	r.Put("/api/components/{id}", h.updateComponent)
	r.Put("/api/components/{id}/price", h.updateComponentPrice)
	r.Delete("/api/components/{id}", h.deleteComponent)
	r.Post("/api/components/refresh-costs", h.refreshComponentCosts)

	// ── Assemblies ───────────────────────────────────────────────────────────
	r.Get("/api/assemblies", h.listAssemblies)
	r.Post("/api/assemblies", h.createAssembly)
	r.Get("/api/assemblies/{id}", h.getAssembly)
	r.Delete("/api/assemblies/{id}", h.deleteAssembly)
	r.Post("/api/assemblies/{id}/components", h.addAssemblyComponent)
	r.Delete("/api/assemblies/{id}/components/{refID}", h.removeAssemblyComponent)
	r.Put("/api/assemblies/{id}/components/order", h.reorderAssemblyComponents)
	r.Post("/api/assemblies/{id}/price", h.priceAssembly)

	// ── Quotations ───────────────────────────────────────────────────────────
	r.Get("/api/quotations", h.listQuotations)
	r.Post("/api/quotations", h.createQuotation)
	r.Get("/api/quotations/{id}", h.getQuotation)
	r.Delete("/api/quotations/{id}", h.deleteQuotation)
	r.Put("/api/quotations/{id}/parameters", h.updateQuotationParameters)
	r.Post("/api/quotations/{id}/items", h.addQuotationItem)
	r.Put("/api/quotations/{id}/items/{itemID}/price", h.updateItemPrice)
	r.Delete("/api/quotations/{id}/items/{itemID}", h.removeQuotationItem)
	r.Post("/api/quotations/{id}/status", h.transitionQuotationStatus)
	r.Post("/api/quotations/{id}/recalculate", h.recalculateQuotation)
	r.Get("/api/quotations/{id}/export/pdf", h.exportQuotationPDF)
	r.Get("/api/quotations/{id}/export/excel", h.exportQuotationExcel)

	// ── Currency ─────────────────────────────────────────────────────────────
	r.Post("/api/convert", h.convertAmount)

	h.router = r
	return r
}

// health returns service status.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status string `json:"status"`
	}
	writeJSON(w, response{Status: "ok"})
}

// urlID extracts a numeric URL parameter; writes 400 and returns false on garbage.
func urlID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		writeError(w, r, "invalid "+name+" parameter", "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}
