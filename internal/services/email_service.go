package services

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/smtp"

	"github.com/BradenHooton/shopflow/internal/config"
	"github.com/BradenHooton/shopflow/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// NotificationSender delivers one-time login codes
type NotificationSender interface {
	SendVerificationCode(ctx context.Context, email, code string, ttlMinutes int) error
}

// verificationMessage is a rendered login code email
type verificationMessage struct {
	Subject string
	Text    string
	HTML    string
}

func renderVerificationMessage(brand, code string, ttlMinutes int) verificationMessage {
	subject := fmt.Sprintf("%s - Verification Code", brand)
	safeBrand := html.EscapeString(brand)

	htmlBody := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
    <h2 style="color: #333;">Verify Your Email</h2>
    <p>Hi there,</p>
    <p>To complete your login to %s, please use the verification code below:</p>
    <div style="background: #f5f5f5; padding: 20px; text-align: center; margin: 20px 0;">
        <span style="font-size: 24px; font-weight: bold; letter-spacing: 3px; color: #333;">%s</span>
    </div>
    <p>This code will expire in %d minutes for security reasons.</p>
    <p>If you didn't request this code, you can safely ignore this email.</p>
    <hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">
    <p style="color: #666; font-size: 14px;">Best regards,<br>The %s Team</p>
</div>
`, safeBrand, code, ttlMinutes, safeBrand)

	textBody := fmt.Sprintf(`%s

Your verification code is: %s

This code will expire in %d minutes.
If you didn't request this code, you can safely ignore this email.
`, subject, code, ttlMinutes)

	return verificationMessage{Subject: subject, Text: textBody, HTML: htmlBody}
}

// sesAPI is the subset of the SES client used for sending
type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotificationSender sends login codes using AWS SES
type SESNotificationSender struct {
	client      sesAPI
	fromAddress string
	brand       string
	logger      *slog.Logger
}

// NewSESNotificationSender creates an SES sender from the AWS settings
func NewSESNotificationSender(ctx context.Context, awsCfg *config.AWSConfig, emailCfg *config.EmailConfig, logger *slog.Logger) (*SESNotificationSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(awsCfg.Region),
	}
	if awsCfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsCfg.AccessKeyID, awsCfg.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*ses.Options)
	if awsCfg.EndpointURL != "" {
		clientOpts = append(clientOpts, func(o *ses.Options) {
			o.BaseEndpoint = aws.String(awsCfg.EndpointURL)
		})
	}

	return newSESNotificationSender(ses.NewFromConfig(cfg, clientOpts...), emailCfg, logger), nil
}

func newSESNotificationSender(client sesAPI, emailCfg *config.EmailConfig, logger *slog.Logger) *SESNotificationSender {
	return &SESNotificationSender{
		client:      client,
		fromAddress: emailCfg.FromAddress,
		brand:       emailCfg.Brand,
		logger:      logger,
	}
}

func (s *SESNotificationSender) SendVerificationCode(ctx context.Context, email, code string, ttlMinutes int) error {
	msg := renderVerificationMessage(s.brand, code, ttlMinutes)

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{email},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(msg.Subject)},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(msg.HTML)},
				Text: &types.Content{Data: aws.String(msg.Text)},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send verification code via SES",
			slog.String("email", logger.SanitizedEmail(email)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("verification code sent",
		slog.String("email", logger.SanitizedEmail(email)),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}

// SMTPNotificationSender sends login codes through an SMTP relay
type SMTPNotificationSender struct {
	addr     string
	host     string
	from     string
	username string
	password string
	brand    string
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
	logger   *slog.Logger
}

func NewSMTPNotificationSender(cfg *config.EmailConfig, logger *slog.Logger) *SMTPNotificationSender {
	return &SMTPNotificationSender{
		addr:     fmt.Sprintf("%s:%s", cfg.SMTPHost, cfg.SMTPPort),
		host:     cfg.SMTPHost,
		from:     cfg.FromAddress,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		brand:    cfg.Brand,
		sendMail: smtp.SendMail,
		logger:   logger,
	}
}

// SendVerificationCode sends a multipart text/html message. net/smtp has no
// context support, so cancellation is only checked before dialing.
func (s *SMTPNotificationSender) SendVerificationCode(ctx context.Context, email, code string, ttlMinutes int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := renderVerificationMessage(s.brand, code, ttlMinutes)
	const boundary = "shopflow-verification-boundary"

	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\n"+
		"Content-Type: multipart/alternative; boundary=%q\r\n\r\n"+
		"--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n"+
		"--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n"+
		"--%s--\r\n",
		s.from, email, msg.Subject, boundary,
		boundary, msg.Text,
		boundary, msg.HTML,
		boundary)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if err := s.sendMail(s.addr, auth, s.from, []string{email}, []byte(body)); err != nil {
		s.logger.Error("failed to send verification code via SMTP",
			slog.String("email", logger.SanitizedEmail(email)),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("verification code sent", slog.String("email", logger.SanitizedEmail(email)))
	return nil
}

// LogNotificationSender writes the code to the log instead of sending it. Development only.
type LogNotificationSender struct {
	logger *slog.Logger
}

func NewLogNotificationSender(logger *slog.Logger) *LogNotificationSender {
	return &LogNotificationSender{logger: logger}
}

func (s *LogNotificationSender) SendVerificationCode(ctx context.Context, email, code string, ttlMinutes int) error {
	s.logger.Info("verification code issued (log provider, not delivered)",
		slog.String("email", email),
		slog.String("code", code),
		slog.Int("ttl_minutes", ttlMinutes))
	return nil
}

// NewNotificationSender builds the sender selected by EMAIL_PROVIDER
func NewNotificationSender(ctx context.Context, cfg *config.Config, logger *slog.Logger) (NotificationSender, error) {
	switch cfg.Email.Provider {
	case config.EmailProviderSES:
		return NewSESNotificationSender(ctx, &cfg.AWS, &cfg.Email, logger)
	case config.EmailProviderSMTP:
		return NewSMTPNotificationSender(&cfg.Email, logger), nil
	case config.EmailProviderLog:
		if cfg.Server.Env == "production" {
			logger.Warn("EMAIL_PROVIDER=log in production: login codes are only written to the log")
		}
		return NewLogNotificationSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Email.Provider)
	}
}
