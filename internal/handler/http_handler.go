package handler

import (
	"bytes"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/pesio-ai/be-product-catalog/internal/platform/errors"
	"github.com/pesio-ai/be-product-catalog/internal/platform/logger"
	"github.com/pesio-ai/be-product-catalog/internal/repository"
	"github.com/pesio-ai/be-product-catalog/internal/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HTTPHandler handles HTTP requests
type HTTPHandler struct {
	catalog   *service.CatalogService
	approvals *service.ApprovalService
	log       *logger.Logger
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(catalog *service.CatalogService, approvals *service.ApprovalService, log *logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		catalog:   catalog,
		approvals: approvals,
		log:       log.Component("http"),
	}
}

// Register mounts the catalog routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("GET /api/v1/products", h.ListActiveItems)
	mux.HandleFunc("POST /api/v1/products", h.CreateItem)
	mux.HandleFunc("GET /api/v1/products/search", h.SearchItems)
	mux.HandleFunc("GET /api/v1/products/{id}", h.GetItem)
	mux.HandleFunc("PUT /api/v1/products/{id}", h.UpdateItem)
	mux.HandleFunc("DELETE /api/v1/products/{id}", h.RemoveItem)

	mux.HandleFunc("GET /api/v1/products/approval-queue", h.ListApprovalQueue)
	mux.HandleFunc("GET /api/v1/products/approval-queue/{approvalId}", h.GetApproval)
	mux.HandleFunc("PUT /api/v1/products/approval-queue/{approvalId}/approve", h.Approve)
	mux.HandleFunc("PUT /api/v1/products/approval-queue/{approvalId}/reject", h.Reject)
}

// ItemBody is the request body of create and update. Price may be sent as a
// JSON number or a string.
type ItemBody struct {
	Name   string    `json:"name"`
	Price  PriceText `json:"price"`
	Status string    `json:"status"`
}

// PriceText keeps the literal text of a JSON price so no precision is lost
// through float64.
type PriceText struct {
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *PriceText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		p.Value = nil
		return nil
	}
	s := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	}
	p.Value = &s
	return nil
}

func (b ItemBody) input() service.ItemInput {
	return service.ItemInput{Name: b.Name, Price: b.Price.Value, Status: b.Status}
}

// Health reports liveness.
func (h *HTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateItem handles create item HTTP requests
func (h *HTTPHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var body ItemBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, errors.InvalidInput("body", "Invalid request body"))
		return
	}

	res, err := h.catalog.CreateItem(r.Context(), body.input())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, mutationStatus(res, http.StatusCreated), res)
}

// UpdateItem handles update item HTTP requests
func (h *HTTPHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var body ItemBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, errors.InvalidInput("body", "Invalid request body"))
		return
	}

	res, err := h.catalog.UpdateItem(r.Context(), r.PathValue("id"), body.input())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, mutationStatus(res, http.StatusOK), res)
}

// RemoveItem handles remove item HTTP requests
func (h *HTTPHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	res, err := h.catalog.RemoveItem(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

// GetItem handles get item HTTP requests
func (h *HTTPHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalog.GetItem(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// ListActiveItems handles list HTTP requests
func (h *HTTPHandler) ListActiveItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.catalog.ListActiveItems(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// SearchItems handles search HTTP requests. A filtered search that matches
// nothing answers 204.
func (h *HTTPHandler) SearchItems(w http.ResponseWriter, r *http.Request) {
	criteria, err := ParseSearchQuery(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	res, err := h.catalog.SearchItems(r.Context(), criteria)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if res.NoRecords {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, res.Items)
}

// ParseSearchQuery reads the five optional search filters. Empty values are
// treated as absent.
func ParseSearchQuery(r *http.Request) (repository.SearchCriteria, error) {
	q := r.URL.Query()
	var c repository.SearchCriteria

	if v := q.Get("productName"); v != "" {
		c.Name = &v
	}
	if v := q.Get("minPrice"); v != "" {
		d, err := service.ParsePrice(v)
		if err != nil {
			return c, errors.InvalidInput("minPrice", "minPrice must be a decimal number")
		}
		c.MinPrice = &d
	}
	if v := q.Get("maxPrice"); v != "" {
		d, err := service.ParsePrice(v)
		if err != nil {
			return c, errors.InvalidInput("maxPrice", "maxPrice must be a decimal number")
		}
		c.MaxPrice = &d
	}
	if v := q.Get("minPostedDate"); v != "" {
		t, err := service.ParseTimestamp(v)
		if err != nil {
			return c, errors.InvalidInput("minPostedDate", "minPostedDate must be formatted as "+service.TimestampLayout)
		}
		c.MinPostedDate = &t
	}
	if v := q.Get("maxPostedDate"); v != "" {
		t, err := service.ParseTimestamp(v)
		if err != nil {
			return c, errors.InvalidInput("maxPostedDate", "maxPostedDate must be formatted as "+service.TimestampLayout)
		}
		c.MaxPostedDate = &t
	}
	return c, nil
}

// ListApprovalQueue handles approval queue HTTP requests
func (h *HTTPHandler) ListApprovalQueue(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.approvals.ListApprovalQueue(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

// GetApproval handles get approval request HTTP requests
func (h *HTTPHandler) GetApproval(w http.ResponseWriter, r *http.Request) {
	req, err := h.approvals.GetApproval(r.Context(), r.PathValue("approvalId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// Approve handles approve HTTP requests
func (h *HTTPHandler) Approve(w http.ResponseWriter, r *http.Request) {
	res, err := h.approvals.Approve(r.Context(), r.PathValue("approvalId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Reject handles reject HTTP requests
func (h *HTTPHandler) Reject(w http.ResponseWriter, r *http.Request) {
	res, err := h.approvals.Reject(r.Context(), r.PathValue("approvalId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	body := ErrorBody{Code: string(errors.CodeOf(err)), Message: err.Error()}

	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		body.Message = appErr.Message
		body.Field = appErr.Field
	}
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("request failed")
		body.Message = "Internal server error"
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// mutationStatus answers 202 for anything that was only queued.
func mutationStatus(res *service.MutationResult, applied int) int {
	switch res.Outcome {
	case service.OutcomeQueued, service.OutcomeQueuedForDeletion:
		return http.StatusAccepted
	default:
		return applied
	}
}
