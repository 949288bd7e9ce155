package models

import "time"

// Payment gateways understood by the checkout
const (
	GatewayStripe = "STRIPE"
	GatewayPayPal = "PAYPAL"
)

// Checkout session statuses
const (
	CheckoutStatusPending = "pending"
)

// CartItem is one line of a checkout cart
type CartItem struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	VariantID int64 `json:"variantId,omitempty" validate:"gte=0"`
	Quantity  int   `json:"quantity" validate:"required,min=1"`
}

// CheckoutRequest is a storefront checkout submission
type CheckoutRequest struct {
	Cart    []CartItem `json:"cart" validate:"required,min=1,dive"`
	Email   string     `json:"email" validate:"required,email"`
	Gateway string     `json:"gateway"`
}

// CommerceCartItem is a cart line with its variant resolved
type CommerceCartItem struct {
	ProductID int64 `json:"productId"`
	VariantID int64 `json:"variantId"`
	Quantity  int   `json:"quantity"`
}

// CommerceCheckoutRequest is the body sent to the commerce API checkout endpoint
type CommerceCheckoutRequest struct {
	Email   string             `json:"email"`
	Cart    []CommerceCartItem `json:"cart"`
	Gateway string             `json:"gateway"`
}

// CommerceCheckout is the commerce API response to a checkout request
type CommerceCheckout struct {
	CheckoutURL string `json:"checkout_url"`
	URL         string `json:"url"`
	InvoiceID   any    `json:"invoice_id"`
	ID          any    `json:"id"`
	Total       Price  `json:"total"`
	Currency    string `json:"currency"`
}

// CheckoutResult is returned to the storefront after a checkout was created
type CheckoutResult struct {
	URL       string `json:"url"`
	InvoiceID string `json:"invoiceId"`
	Message   string `json:"message"`
	Gateway   string `json:"gateway,omitempty"`
}

// CheckoutSession mirrors a created checkout in the local datastore
type CheckoutSession struct {
	ID             int64              `json:"id"`
	Email          string             `json:"email"`
	Cart           []CommerceCartItem `json:"cart"`
	PaymentGateway string             `json:"payment_gateway"`
	TotalAmount    string             `json:"total_amount"`
	Currency       string             `json:"currency"`
	Status         string             `json:"status"`
	InvoiceID      string             `json:"invoice_id"`
	CheckoutURL    string             `json:"checkout_url"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}
