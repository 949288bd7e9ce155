package models

// InvoiceProduct is a line item of an invoice
type InvoiceProduct struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    Price  `json:"price"`
}

// Invoice is a purchase recorded by the commerce API
type Invoice struct {
	ID          int64            `json:"id"`
	Status      string           `json:"status"`
	Email       string           `json:"email"`
	Total       Price            `json:"total"`
	Currency    string           `json:"currency"`
	CreatedAt   string           `json:"created_at"`
	CompletedAt *string          `json:"completed_at,omitempty"`
	Products    []InvoiceProduct `json:"products,omitempty"`
}

// BelongsTo reports whether the invoice was placed with email
func (i *Invoice) BelongsTo(email string) bool {
	return NormalizeEmail(i.Email) == NormalizeEmail(email)
}
