package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/BradenHooton/shopflow/internal/config"
	"github.com/BradenHooton/shopflow/internal/models"
	"github.com/BradenHooton/shopflow/pkg/logger"
	"github.com/oklog/ulid/v2"
)

const payPalCheckoutURL = "https://www.paypal.com/cgi-bin/webscr"

// CheckoutGateway resolves products and creates hosted checkouts
type CheckoutGateway interface {
	GetProduct(ctx context.Context, id int64) (*models.CommerceProduct, error)
	CreateCheckout(ctx context.Context, req *models.CommerceCheckoutRequest) (*models.CommerceCheckout, error)
}

// CheckoutSessionStore mirrors created checkouts locally
type CheckoutSessionStore interface {
	Create(ctx context.Context, session *models.CheckoutSession) (*models.CheckoutSession, error)
	ListByEmail(ctx context.Context, email string) ([]models.CheckoutSession, error)
}

type CheckoutService struct {
	gateway CheckoutGateway
	store   CheckoutSessionStore // nil without a datastore
	paypal  config.PayPalConfig
	brand   string
	logger  *slog.Logger

	newID func() string
}

func NewCheckoutService(
	gateway CheckoutGateway,
	store CheckoutSessionStore,
	paypal config.PayPalConfig,
	brand string,
	logger *slog.Logger,
) *CheckoutService {
	return &CheckoutService{
		gateway: gateway,
		store:   store,
		paypal:  paypal,
		brand:   brand,
		logger:  logger,
		newID:   func() string { return ulid.Make().String() },
	}
}

// resolvedItem is a cart line with its product variant looked up
type resolvedItem struct {
	item    models.CommerceCartItem
	variant *models.ProductVariant
}

// Create starts a checkout for the cart, either as a PayPal redirect or through
// the commerce API.
func (s *CheckoutService) Create(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResult, error) {
	gateway := strings.ToUpper(strings.TrimSpace(req.Gateway))
	if gateway == "" {
		gateway = models.GatewayStripe
	}
	email := models.NormalizeEmail(req.Email)

	items, err := s.resolveCart(ctx, req.Cart)
	if err != nil {
		return nil, err
	}

	cart := make([]models.CommerceCartItem, len(items))
	for i, it := range items {
		cart[i] = it.item
	}

	if gateway == models.GatewayPayPal {
		return s.createPayPal(ctx, email, items, cart)
	}

	checkout, err := s.gateway.CreateCheckout(ctx, &models.CommerceCheckoutRequest{
		Email:   email,
		Cart:    cart,
		Gateway: gateway,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout: %w", err)
	}

	result := &models.CheckoutResult{
		URL:       firstNonEmpty(checkout.CheckoutURL, checkout.URL),
		InvoiceID: firstNonEmpty(stringID(checkout.InvoiceID), stringID(checkout.ID)),
		Message:   "Checkout session created successfully",
	}

	total := string(checkout.Total)
	if total == "" {
		total = "0.00"
	}
	currency := checkout.Currency
	if currency == "" {
		currency = "USD"
	}
	s.mirror(ctx, &models.CheckoutSession{
		Email:          email,
		Cart:           cart,
		PaymentGateway: gateway,
		TotalAmount:    total,
		Currency:       currency,
		Status:         models.CheckoutStatusPending,
		InvoiceID:      result.InvoiceID,
		CheckoutURL:    result.URL,
	})

	return result, nil
}

func (s *CheckoutService) resolveCart(ctx context.Context, cart []models.CartItem) ([]resolvedItem, error) {
	if len(cart) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", models.ErrBadRequest)
	}

	products := make(map[int64]*models.CommerceProduct)
	items := make([]resolvedItem, 0, len(cart))

	for _, line := range cart {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", models.ErrBadRequest)
		}

		product, ok := products[line.ProductID]
		if !ok {
			p, err := s.gateway.GetProduct(ctx, line.ProductID)
			if err != nil {
				return nil, fmt.Errorf("failed to load product %d: %w", line.ProductID, err)
			}
			products[line.ProductID] = p
			product = p
		}

		variant, ok := product.Variant(line.VariantID)
		if !ok {
			return nil, fmt.Errorf("%w: no variant found for product %d", models.ErrBadRequest, line.ProductID)
		}

		items = append(items, resolvedItem{
			item: models.CommerceCartItem{
				ProductID: line.ProductID,
				VariantID: variant.ID,
				Quantity:  line.Quantity,
			},
			variant: variant,
		})
	}

	return items, nil
}

func (s *CheckoutService) createPayPal(ctx context.Context, email string, items []resolvedItem, cart []models.CommerceCartItem) (*models.CheckoutResult, error) {
	if s.paypal.BusinessEmail == "" {
		return nil, fmt.Errorf("%w: PayPal checkout is not configured", models.ErrBadRequest)
	}

	var cents int64
	for _, it := range items {
		price, err := it.variant.Price.Cents()
		if err != nil {
			return nil, fmt.Errorf("product %d: %w", it.item.ProductID, err)
		}
		cents += price * int64(it.item.Quantity)
	}
	amount := formatCents(cents)
	invoiceID := "paypal-" + s.newID()

	params := url.Values{}
	params.Set("cmd", "_xclick")
	params.Set("business", s.paypal.BusinessEmail)
	params.Set("item_name", s.brand+" Purchase")
	params.Set("amount", amount)
	params.Set("currency_code", s.paypal.Currency)
	params.Set("invoice", invoiceID)
	params.Set("return", s.paypal.ReturnURL)
	params.Set("cancel_return", s.paypal.CancelURL)
	redirect := payPalCheckoutURL + "?" + params.Encode()

	s.mirror(ctx, &models.CheckoutSession{
		Email:          email,
		Cart:           cart,
		PaymentGateway: models.GatewayPayPal,
		TotalAmount:    amount,
		Currency:       s.paypal.Currency,
		Status:         models.CheckoutStatusPending,
		InvoiceID:      invoiceID,
		CheckoutURL:    redirect,
	})

	return &models.CheckoutResult{
		URL:       redirect,
		InvoiceID: invoiceID,
		Message:   "Redirecting to PayPal...",
		Gateway:   models.GatewayPayPal,
	}, nil
}

// mirror records the checkout locally. Failures never fail the checkout.
func (s *CheckoutService) mirror(ctx context.Context, session *models.CheckoutSession) {
	if s.store == nil {
		s.logger.Debug("no datastore, skipping checkout session storage")
		return
	}

	created, err := s.store.Create(ctx, session)
	if err != nil {
		s.logger.Error("failed to store checkout session",
			slog.String("email", logger.SanitizedEmail(session.Email)),
			slog.String("invoice_id", session.InvoiceID),
			slog.String("error", err.Error()))
		return
	}

	s.logger.Info("checkout session stored",
		slog.Int64("id", created.ID),
		slog.String("gateway", created.PaymentGateway))
}

// ListSessions returns the mirrored checkouts for email, newest first
func (s *CheckoutService) ListSessions(ctx context.Context, email string) ([]models.CheckoutSession, error) {
	if s.store == nil {
		return []models.CheckoutSession{}, nil
	}
	return s.store.ListByEmail(ctx, models.NormalizeEmail(email))
}

func formatCents(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// stringID renders an id the commerce API may send as a number or a string
func stringID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}
