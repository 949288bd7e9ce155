package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/BradenHooton/shopflow/internal/models"
	pkghttp "github.com/BradenHooton/shopflow/pkg/http"
	"github.com/go-chi/chi/v5"
)

// CatalogService defines the product catalog operations
type CatalogService interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
}

type ProductHandler struct {
	service CatalogService
	logger  *slog.Logger
}

func NewProductHandler(service CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: service, logger: logger}
}

// @Router /api/products [get]
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("failed to fetch products", slog.String("error", err.Error()))
		pkghttp.WriteInternalError(w, "Failed to fetch products")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, products)
}

// GetProduct reports every failure as not found
// @Router /api/products/{id} [get]
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		pkghttp.WriteNotFound(w, "Product not found")
		return
	}

	product, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		h.logger.Warn("failed to fetch product", slog.Int64("product_id", id), slog.String("error", err.Error()))
		pkghttp.WriteNotFound(w, "Product not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, product)
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, models.ErrBadRequest
	}
	return id, nil
}
