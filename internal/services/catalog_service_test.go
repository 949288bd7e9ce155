package services

import (
	"context"
	"testing"

	"github.com/BradenHooton/shopflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(id int64, prices ...models.Price) models.CommerceProduct {
	p := models.CommerceProduct{ID: id, Name: "Product", Path: "product", Currency: "EUR"}
	for i, price := range prices {
		p.Variants = append(p.Variants, models.ProductVariant{ID: id*10 + int64(i), Price: price})
	}
	return p
}

func TestCatalogService_ListProducts(t *testing.T) {
	source := &MockProductSource{
		ListProductsFunc: func(ctx context.Context) ([]models.CommerceProduct, error) {
			return []models.CommerceProduct{testProduct(1, "4.99", "9.99"), {ID: 2, Name: "Free"}}, nil
		},
	}
	svc := NewCatalogService(source)

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, "4.99", products[0].Price)
	assert.Equal(t, "EUR", products[0].Currency)
	assert.Nil(t, products[0].Variants)

	assert.Equal(t, "0.00", products[1].Price)
	assert.Equal(t, "USD", products[1].Currency)
	assert.Nil(t, products[1].Image)
}

func TestCatalogService_ListProducts_Empty(t *testing.T) {
	svc := NewCatalogService(&MockProductSource{})

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestCatalogService_GetProduct(t *testing.T) {
	source := &MockProductSource{
		GetProductFunc: func(ctx context.Context, id int64) (*models.CommerceProduct, error) {
			p := testProduct(id, "2.50", "5.00")
			return &p, nil
		},
	}
	svc := NewCatalogService(source)

	product, err := svc.GetProduct(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), product.ID)
	assert.Equal(t, "2.50", product.Price)
	assert.Len(t, product.Variants, 2)
}

func TestCatalogService_GetProduct_NotFound(t *testing.T) {
	svc := NewCatalogService(&MockProductSource{})

	_, err := svc.GetProduct(context.Background(), 3)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
