package email

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// Service sends transactional email via AWS SES.
type Service struct {
	client    *ses.Client
	fromEmail string
	fromName  string
	baseURL   string
}

// NewService creates a new email service using AWS SES.
func NewService(region, fromEmail, fromName, baseURL string) (*Service, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Service{
		client:    ses.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		baseURL:   baseURL,
	}, nil
}

// SendVerificationEmail sends the confirmation link for a new account.
func (e *Service) SendVerificationEmail(ctx context.Context, toEmail, username, token string) error {
	verifyURL := fmt.Sprintf("%s/api/v1/auth/verify/%s", e.baseURL, token)

	subject := "Confirm your email address"
	htmlBody := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head><meta charset="UTF-8"></head>
		<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333;">
			<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
				<h1>Welcome, %s!</h1>
				<p>Thanks for signing up. Please confirm your email address to activate your account.</p>
				<p><a href="%s" style="display: inline-block; padding: 12px 24px; background-color: #2563eb; color: white; text-decoration: none; border-radius: 6px;">Confirm Email</a></p>
				<p>Or copy and paste this link into your browser:</p>
				<p style="word-break: break-all; color: #666;">%s</p>
				<p>If you didn't create this account, you can safely ignore this email.</p>
			</div>
		</body>
		</html>
	`, username, verifyURL, verifyURL)

	textBody := fmt.Sprintf(`Welcome, %s!

Thanks for signing up. Please confirm your email address to activate your account:

%s

If you didn't create this account, you can safely ignore this email.
`, username, verifyURL)

	return e.send(ctx, toEmail, subject, htmlBody, textBody)
}

// SendPasswordResetEmail sends a password reset link with the reset token.
func (e *Service) SendPasswordResetEmail(ctx context.Context, toEmail, resetToken string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", e.baseURL, resetToken)

	subject := "Reset your password"
	htmlBody := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head><meta charset="UTF-8"></head>
		<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: #333;">
			<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
				<h1>Reset Your Password</h1>
				<p>You requested to reset your password. This link will expire in 1 hour.</p>
				<p><a href="%s" style="display: inline-block; padding: 12px 24px; background-color: #2563eb; color: white; text-decoration: none; border-radius: 6px;">Reset Password</a></p>
				<p>Or copy and paste this link into your browser:</p>
				<p style="word-break: break-all; color: #666;">%s</p>
				<p>If you didn't request this password reset, you can safely ignore this email.</p>
			</div>
		</body>
		</html>
	`, resetURL, resetURL)

	textBody := fmt.Sprintf(`Reset Your Password

You requested to reset your password. This link will expire in 1 hour.

%s

If you didn't request this password reset, you can safely ignore this email.
`, resetURL)

	return e.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (e *Service) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	from := e.fromEmail
	if e.fromName != "" {
		from = fmt.Sprintf("%s <%s>", e.fromName, e.fromEmail)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data:    aws.String(htmlBody),
					Charset: aws.String("UTF-8"),
				},
				Text: &types.Content{
					Data:    aws.String(textBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := e.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
