package handlers

import (
	"net/http"

	apierrors "github.com/YuriiKoshliak/contacts-api/internal/errors"
	"github.com/YuriiKoshliak/contacts-api/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Me returns the authenticated user's profile.
func (h *UserHandlers) Me(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		apierrors.Unauthorized("could not validate credentials").Abort(c)
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateAvatar uploads a new avatar image and stores its URL.
func (h *UserHandlers) UpdateAvatar(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		apierrors.Unauthorized("could not validate credentials").Abort(c)
		return
	}

	if h.avatars == nil {
		apierrors.ServiceUnavailable("avatar uploads are not configured").Abort(c)
		return
	}

	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		apierrors.ValidationError("avatar", "avatar file is required").Abort(c)
		return
	}
	defer file.Close()

	result, err := h.avatars.UploadAvatar(c.Request.Context(), file, header, user.ID)
	if err != nil {
		logger.Log.Error("Avatar upload failed",
			logger.WithUserID(user.ID),
			zap.Error(err),
		)
		apierrors.ValidationError("avatar", "failed to upload avatar").Abort(c)
		return
	}

	if err := h.users.UpdateAvatar(c.Request.Context(), user.ID, result.URL); err != nil {
		logger.Log.Error("Failed to store avatar URL",
			logger.WithUserID(user.ID),
			zap.Error(err),
		)
		apierrors.Internal().Abort(c)
		return
	}

	user.AvatarURL = result.URL
	c.JSON(http.StatusOK, user)
}
