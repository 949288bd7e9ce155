package models

import "strings"

// Customer is a customer record from the commerce API directory
type Customer struct {
	ID              int64   `json:"id"`
	Email           string  `json:"email"`
	DiscordID       *string `json:"discord_id,omitempty"`
	DiscordUsername *string `json:"discord_username,omitempty"`
	Balance         Price   `json:"balance,omitempty"`
	TotalCompleted  *int    `json:"total_completed,omitempty"`
	TotalSpentUSD   Price   `json:"total_spent_usd,omitempty"`
	LastCompletedAt *string `json:"last_completed_at,omitempty"`
	NewsletterAt    *string `json:"newsletter_at,omitempty"`
}

// NormalizeEmail lowercases and trims an email address for comparison
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasEmail reports whether the customer's normalized email equals email
func (c *Customer) HasEmail(email string) bool {
	return NormalizeEmail(c.Email) == NormalizeEmail(email)
}
