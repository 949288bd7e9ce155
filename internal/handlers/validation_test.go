package handlers

import (
	"fmt"
	"testing"

	"github.com/BradenHooton/shopflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRequest_Valid(t *testing.T) {
	assert.Nil(t, ValidateRequest(VerifyRequest{Email: "a@x.com", Code: "000123"}))
}

func TestValidateRequest_NestedFieldPath(t *testing.T) {
	req := models.CheckoutRequest{
		Email: "a@x.com",
		Cart:  []models.CartItem{{ProductID: 1, Quantity: 1}, {ProductID: 0, Quantity: 1}},
	}

	fe := ValidateRequest(req)
	require.NotNil(t, fe)
	assert.Equal(t, "cart[1].productId", fe.Field)
}

func TestBadRequestMessage(t *testing.T) {
	assert.Equal(t, "cart is empty", badRequestMessage(fmt.Errorf("%w: cart is empty", models.ErrBadRequest)))
	assert.Equal(t, "Invalid request", badRequestMessage(models.ErrBadRequest))
}
