package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/YuriiKoshliak/contacts-api/internal/auth"
	apierrors "github.com/YuriiKoshliak/contacts-api/internal/errors"
	"github.com/YuriiKoshliak/contacts-api/internal/logger"
	"github.com/YuriiKoshliak/contacts-api/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Register creates a new account and sends the confirmation email in
// the background.
func (h *AuthHandlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(err.Error()).Abort(c)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if errors.Is(err, auth.ErrUserExists) {
		metrics.Get().UserRegistrationsTotal.WithLabelValues("conflict").Inc()
		apierrors.Conflict("account already exists").Abort(c)
		return
	} else if err != nil {
		logger.Log.Error("Registration failed", zap.Error(err))
		apierrors.Internal().Abort(c)
		return
	}

	metrics.Get().UserRegistrationsTotal.WithLabelValues("ok").Inc()

	token, err := h.auth.EmailVerificationToken(user)
	if err != nil {
		logger.Log.Error("Failed to create verification token",
			logger.WithUserID(user.ID),
			zap.Error(err),
		)
	} else {
		email, username := user.Email, user.Username
		sendEmailAsync("verification", func(ctx context.Context) error {
			return h.email.SendVerificationEmail(ctx, email, username, token)
		})
	}

	c.JSON(http.StatusCreated, gin.H{
		"user":   user,
		"detail": "User successfully created. Check your email for confirmation.",
	})
}

// Login authenticates with email/password and returns a token pair.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(err.Error()).Abort(c)
		return
	}

	pair, err := h.auth.Login(c.Request.Context(), req)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		metrics.Get().LoginAttemptsTotal.WithLabelValues("invalid_email").Inc()
		apierrors.Unauthorized("invalid email").Abort(c)
		return
	case errors.Is(err, auth.ErrEmailNotVerified):
		metrics.Get().LoginAttemptsTotal.WithLabelValues("unverified").Inc()
		apierrors.Unauthorized("email not confirmed").Abort(c)
		return
	case errors.Is(err, auth.ErrInvalidCredentials):
		metrics.Get().LoginAttemptsTotal.WithLabelValues("invalid_password").Inc()
		apierrors.Unauthorized("invalid password").Abort(c)
		return
	case err != nil:
		logger.Log.Error("Login failed", zap.Error(err))
		apierrors.Internal().Abort(c)
		return
	}

	metrics.Get().LoginAttemptsTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, pair)
}

// Refresh rotates a refresh token into a new token pair. The refresh
// token is presented as a bearer credential.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		apierrors.Unauthorized("no token provided").Abort(c)
		return
	}

	pair, err := h.auth.Refresh(c.Request.Context(), token)
	switch {
	case errors.Is(err, auth.ErrInvalidTokenScope):
		apierrors.Unauthorized("invalid scope for token").Abort(c)
		return
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrUserNotFound):
		apierrors.Unauthorized("invalid refresh token").Abort(c)
		return
	case err != nil:
		logger.Log.Error("Token refresh failed", zap.Error(err))
		apierrors.Internal().Abort(c)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// VerifyEmail confirms an email address from the emailed token link.
func (h *AuthHandlers) VerifyEmail(c *gin.Context) {
	token := c.Param("token")

	already, err := h.auth.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		apierrors.BadRequest("verification error").Abort(c)
		return
	}

	if already {
		c.JSON(http.StatusOK, gin.H{"message": "Your email is already confirmed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email confirmed"})
}

// emailRequest carries a bare email address.
type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResendVerification sends a fresh confirmation email. The response does
// not reveal whether an account exists.
func (h *AuthHandlers) ResendVerification(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(err.Error()).Abort(c)
		return
	}

	user, err := h.auth.FindUserByEmail(c.Request.Context(), req.Email)
	if err == nil && user.Verified {
		c.JSON(http.StatusOK, gin.H{"message": "Your email is already confirmed"})
		return
	}

	if err == nil {
		token, tokenErr := h.auth.EmailVerificationToken(user)
		if tokenErr != nil {
			logger.Log.Error("Failed to create verification token",
				logger.WithUserID(user.ID),
				zap.Error(tokenErr),
			)
		} else {
			email, username := user.Email, user.Username
			sendEmailAsync("verification", func(ctx context.Context) error {
				return h.email.SendVerificationEmail(ctx, email, username, token)
			})
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Check your email for confirmation."})
}

// RequestPasswordReset creates a reset token and emails it. The response
// does not reveal whether an account exists.
func (h *AuthHandlers) RequestPasswordReset(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(err.Error()).Abort(c)
		return
	}

	reset, err := h.auth.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		logger.Log.Error("Password reset request failed", zap.Error(err))
		apierrors.Internal().Abort(c)
		return
	}

	if reset != nil {
		email, token := req.Email, reset.Token
		sendEmailAsync("password_reset", func(ctx context.Context) error {
			return h.email.SendPasswordResetEmail(ctx, email, token)
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a reset link has been sent."})
}

// confirmResetRequest redeems an emailed reset token.
type confirmResetRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// ConfirmPasswordReset sets a new password from a valid reset token.
func (h *AuthHandlers) ConfirmPasswordReset(c *gin.Context) {
	var req confirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(err.Error()).Abort(c)
		return
	}

	err := h.auth.ConfirmPasswordReset(c.Request.Context(), req.Token, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		apierrors.BadRequest("invalid reset token").Abort(c)
		return
	case errors.Is(err, auth.ErrResetExpired):
		apierrors.BadRequest("reset token expired").Abort(c)
		return
	case errors.Is(err, auth.ErrResetUsed):
		apierrors.BadRequest("reset token already used").Abort(c)
		return
	case err != nil:
		logger.Log.Error("Password reset failed", zap.Error(err))
		apierrors.Internal().Abort(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// Middleware validates requests with access tokens and loads the user
// into the request context.
func (h *AuthHandlers) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			apierrors.Unauthorized("no token provided").Abort(c)
			return
		}

		user, err := h.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			apierrors.Unauthorized("could not validate credentials").Abort(c)
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Next()
	}
}

// bearerToken extracts the credential from the Authorization header,
// with or without the "Bearer " prefix.
func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}
