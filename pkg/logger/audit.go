package logger

import (
	"context"
	"log/slog"
	"strconv"
	"time"
)

// Audit event types for the login flow
const (
	EventLoginCodeRequested = "login_code_requested"
	EventLoginVerified      = "login_verified"
	EventLoginRejected      = "login_rejected"
	EventLogout             = "logout"
)

// AuditEvent represents a security audit event
type AuditEvent struct {
	EventType     string
	CustomerID    int64
	Email         string // masked before logging
	IPAddress     string
	Success       bool
	FailureReason string
	Metadata      map[string]string
}

// AuditLogger writes audit events as structured log records
type AuditLogger struct {
	logger *slog.Logger
}

func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger}
}

// Log records event; failures are logged at warn level
func (al *AuditLogger) Log(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "auth"),
		slog.String("event_type", event.EventType),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.CustomerID != 0 {
		attrs = append(attrs, slog.String("customer_id", strconv.FormatInt(event.CustomerID, 10)))
	}
	if event.Email != "" {
		attrs = append(attrs, slog.String("email", SanitizedEmail(event.Email)))
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	for key, val := range event.Metadata {
		attrs = append(attrs, slog.String(key, val))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}

func (al *AuditLogger) LogCodeRequested(ctx context.Context, email, ipAddress string, emailSent bool) {
	al.Log(ctx, AuditEvent{
		EventType: EventLoginCodeRequested,
		Email:     email,
		IPAddress: ipAddress,
		Success:   true,
		Metadata:  map[string]string{"email_sent": strconv.FormatBool(emailSent)},
	})
}

func (al *AuditLogger) LogVerified(ctx context.Context, customerID int64, email, ipAddress string) {
	al.Log(ctx, AuditEvent{
		EventType:  EventLoginVerified,
		CustomerID: customerID,
		Email:      email,
		IPAddress:  ipAddress,
		Success:    true,
	})
}

func (al *AuditLogger) LogRejected(ctx context.Context, email, reason, ipAddress string) {
	al.Log(ctx, AuditEvent{
		EventType:     EventLoginRejected,
		Email:         email,
		IPAddress:     ipAddress,
		FailureReason: reason,
	})
}

func (al *AuditLogger) LogLogout(ctx context.Context, customerID int64, ipAddress string) {
	al.Log(ctx, AuditEvent{
		EventType:  EventLogout,
		CustomerID: customerID,
		IPAddress:  ipAddress,
		Success:    true,
	})
}
