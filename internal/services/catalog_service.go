package services

import (
	"context"

	"github.com/BradenHooton/shopflow/internal/models"
)

// ProductSource reads the shop catalog
type ProductSource interface {
	ListProducts(ctx context.Context) ([]models.CommerceProduct, error)
	GetProduct(ctx context.Context, id int64) (*models.CommerceProduct, error)
}

type CatalogService struct {
	products ProductSource
}

func NewCatalogService(products ProductSource) *CatalogService {
	return &CatalogService{products: products}
}

// ListProducts returns the catalog in the storefront shape, without variants
func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.Product, 0, len(products))
	for i := range products {
		out = append(out, products[i].Simplify(false))
	}
	return out, nil
}

// GetProduct returns a single product including its variants
func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	simplified := product.Simplify(true)
	return &simplified, nil
}
