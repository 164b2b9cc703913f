// Package rest provides HTTP handlers for product-related operations.
package rest

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	apperrors "github.com/warehall/stockroom/internal/errors"
	"github.com/warehall/stockroom/internal/export"
	"github.com/warehall/stockroom/internal/service"
	"github.com/warehall/stockroom/pkg/web"
)

// Exporter renders a product listing into a downloadable document.
type Exporter interface {
	Create(products []service.ProductDto) ([]byte, error)
}

type Handler struct {
	service  service.ProductService
	exporter Exporter
	logger   *slog.Logger
}

// NewHandler creates a new instance of the product API with the provided
// service and exporter.
func NewHandler(service service.ProductService, exporter Exporter, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		exporter: exporter,
		logger:   logger.With("component", "rest"),
	}
}

// RegisterRoutes registers the HTTP routes. Query routes sit behind the
// read middleware, mutation routes behind the CRUD middleware.
func (h *Handler) RegisterRoutes(mux *chi.Mux, requireRead, requireCRUD func(http.Handler) http.Handler) {
	mux.Group(func(r chi.Router) {
		r.Use(requireRead)
		r.Get("/products", h.FindProducts)
		r.Get("/products/xls", h.ExportProducts)
		r.Get("/leftovers", h.Leftovers)
	})
	mux.Group(func(r chi.Router) {
		r.Use(requireCRUD)
		r.Post("/product", h.CreateProduct)
		r.Put("/product", h.UpdateProduct)
		r.Delete("/product", h.DeleteProduct)
	})

	mux.Get("/healthz", h.HealthCheck)
}

// FindProducts resolves the optional name/brand filter and returns the
// matching products as a JSON array.
func (h *Handler) FindProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	q := r.URL.Query()
	name, brand := optionalString(q, "name"), optionalString(q, "brand")

	list, err := h.service.Find(r.Context(), name, brand)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// ExportProducts runs the same filter as FindProducts and streams the
// result as a spreadsheet download.
func (h *Handler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	q := r.URL.Query()
	name, brand := optionalString(q, "name"), optionalString(q, "brand")

	list, err := h.service.Find(r.Context(), name, brand)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving product list for export", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}

	content, err := h.exporter.Create(list)
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error building spreadsheet export", "error", err, "count", len(list))
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to export products")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.ms-excel")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// CreateProduct adds a new product from query parameters and returns it.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	params, ok := h.parseParams(w, r)
	if !ok {
		return
	}

	created, err := h.service.Create(r.Context(), params)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product created", "ID", created.ID, "Name", created.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, created)
}

// UpdateProduct partially updates an existing product and returns it.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	params, ok := h.parseParams(w, r)
	if !ok {
		return
	}

	updated, err := h.service.Update(r.Context(), id, params)
	if err != nil {
		h.respondServiceError(w, r, mLogger, err)
		return
	}
	mLogger.InfoContext(r.Context(), "Product updated", "ID", updated.ID, "Name", updated.Name)
	web.RespondJSON(w, mLogger, http.StatusOK, updated)
}

// DeleteProduct removes a product by id. Deleting an unknown id succeeds.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveByID(r.Context(), id); err != nil {
		mLogger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to delete product")
		return
	}
	mLogger.InfoContext(r.Context(), "Product deleted", "ID", id)
	w.WriteHeader(http.StatusOK)
}

// Leftovers returns all products below the leftover threshold.
func (h *Handler) Leftovers(w http.ResponseWriter, r *http.Request) {
	mLogger := h.loggerWithReqID(r)
	list, err := h.service.Leftovers(r.Context())
	if err != nil {
		mLogger.ErrorContext(r.Context(), "Error retrieving leftovers", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Failed to fetch leftovers")
		return
	}
	web.RespondJSON(w, mLogger, http.StatusOK, list)
}

// HealthCheck is a simple health check endpoint.
func (h *Handler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// respondServiceError maps domain errors onto the HTTP contract: both
// invalid-argument and not-found render as 400 with the raw message as a
// plain-text body.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, mLogger *slog.Logger, err error) {
	var ia *apperrors.InvalidArgumentError
	switch {
	case errors.As(err, &ia):
		mLogger.WarnContext(r.Context(), "Validation failed", "reason", ia.Error())
		web.RespondText(w, http.StatusBadRequest, ia.Error())
	case errors.Is(err, apperrors.ErrProductNotFound):
		mLogger.WarnContext(r.Context(), "Product not found")
		web.RespondText(w, http.StatusBadRequest, apperrors.ErrProductNotFound.Error())
	default:
		mLogger.ErrorContext(r.Context(), "Error handling product request", "error", err)
		web.RespondError(w, mLogger, http.StatusInternalServerError, "Internal server error")
	}
}

// parseParams reads the optional product write fields from the query
// string. Absent parameters stay nil; present but malformed numbers are a
// 400.
func (h *Handler) parseParams(w http.ResponseWriter, r *http.Request) (service.ProductParams, bool) {
	q := r.URL.Query()
	params := service.ProductParams{
		Name:  optionalString(q, "name"),
		Brand: optionalString(q, "brand"),
	}

	if q.Has("price") {
		price, err := decimal.NewFromString(q.Get("price"))
		if err != nil {
			web.RespondText(w, http.StatusBadRequest, "invalid price")
			return service.ProductParams{}, false
		}
		params.Price = &price
	}
	if q.Has("quantity") {
		quantity, err := strconv.ParseInt(q.Get("quantity"), 10, 32)
		if err != nil {
			web.RespondText(w, http.StatusBadRequest, "invalid quantity")
			return service.ProductParams{}, false
		}
		q32 := int32(quantity)
		params.Quantity = &q32
	}
	return params, true
}

// parseID reads the mandatory id query parameter.
func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		web.RespondText(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func optionalString(q url.Values, key string) *string {
	if !q.Has(key) {
		return nil
	}
	value := q.Get(key)
	return &value
}

// loggerWithReqID creates a logger with the request ID from the context.
func (h *Handler) loggerWithReqID(r *http.Request) *slog.Logger {
	reqID, _ := web.GetRequestID(r.Context())
	return h.logger.With("request_id", reqID)
}
