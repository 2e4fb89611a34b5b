package handlers

import (
	"context"
	"time"

	"github.com/YuriiKoshliak/contacts-api/internal/auth"
	"github.com/YuriiKoshliak/contacts-api/internal/logger"
	"github.com/YuriiKoshliak/contacts-api/internal/metrics"
	"github.com/YuriiKoshliak/contacts-api/internal/models"
	"github.com/YuriiKoshliak/contacts-api/internal/repository"
	"github.com/YuriiKoshliak/contacts-api/internal/storage"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EmailSender abstracts outbound transactional email so handlers can be
// tested without SES.
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, toEmail, username, token string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, resetToken string) error
}

// AuthHandlers serves registration, login, token and email flows.
type AuthHandlers struct {
	auth  *auth.Service
	email EmailSender
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService *auth.Service, emailSender EmailSender) *AuthHandlers {
	return &AuthHandlers{
		auth:  authService,
		email: emailSender,
	}
}

// ContactHandlers serves the per-user contact book.
type ContactHandlers struct {
	contacts repository.ContactRepository
}

// NewContactHandlers creates a new contact handlers instance
func NewContactHandlers(contacts repository.ContactRepository) *ContactHandlers {
	return &ContactHandlers{contacts: contacts}
}

// UserHandlers serves the current user's profile.
type UserHandlers struct {
	users   repository.UserRepository
	avatars storage.AvatarUploader
}

// NewUserHandlers creates a new user handlers instance
func NewUserHandlers(users repository.UserRepository, avatars storage.AvatarUploader) *UserHandlers {
	return &UserHandlers{users: users, avatars: avatars}
}

// currentUser returns the authenticated user placed in the context by
// the auth middleware.
func currentUser(c *gin.Context) *models.User {
	if u, ok := c.Get("user"); ok {
		if user, ok := u.(*models.User); ok {
			return user
		}
	}
	return nil
}

// sendEmailAsync runs an email send in the background so the request
// does not wait on SES.
func sendEmailAsync(kind string, send func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := send(ctx); err != nil {
			metrics.Get().EmailsSentTotal.WithLabelValues(kind, "error").Inc()
			logger.Log.Error("Failed to send email",
				zap.String("kind", kind),
				zap.Error(err),
			)
			return
		}
		metrics.Get().EmailsSentTotal.WithLabelValues(kind, "ok").Inc()
	}()
}
