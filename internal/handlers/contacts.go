package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	apierrors "github.com/YuriiKoshliak/contacts-api/internal/errors"
	"github.com/YuriiKoshliak/contacts-api/internal/logger"
	"github.com/YuriiKoshliak/contacts-api/internal/metrics"
	"github.com/YuriiKoshliak/contacts-api/internal/models"
	"github.com/YuriiKoshliak/contacts-api/internal/repository"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// contactRequest is the payload for creating or replacing a contact.
type contactRequest struct {
	FirstName string     `json:"first_name" binding:"required,max=50"`
	LastName  string     `json:"last_name" binding:"required,max=50"`
	Email     string     `json:"email" binding:"required,email"`
	Phone     string     `json:"phone" binding:"required,max=20"`
	Birthday  *time.Time `json:"birthday,omitempty"`
	Notes     string     `json:"notes,omitempty"`
}

// CreateContact adds a contact to the current user's book.
func (h *ContactHandlers) CreateContact(c *gin.Context) {
	userID := c.GetString("user_id")

	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(err.Error()).Abort(c)
		return
	}

	contact := models.Contact{
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Birthday:  req.Birthday,
		Notes:     req.Notes,
	}

	err := h.contacts.CreateContact(c.Request.Context(), &contact)
	if errors.Is(err, repository.ErrDuplicateContactEmail) {
		apierrors.Conflict("contact with this email already exists").Abort(c)
		return
	} else if err != nil {
		logger.Log.Error("Failed to create contact",
			logger.WithUserID(userID),
			zap.Error(err),
		)
		apierrors.Internal().Abort(c)
		return
	}

	metrics.Get().ContactsCreatedTotal.Inc()
	c.JSON(http.StatusCreated, contact)
}

// ListContacts returns a page of the current user's contacts.
func (h *ContactHandlers) ListContacts(c *gin.Context) {
	userID := c.GetString("user_id")

	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	contacts, err := h.contacts.ListContacts(c.Request.Context(), userID, skip, limit)
	if err != nil {
		logger.Log.Error("Failed to list contacts",
			logger.WithUserID(userID),
			zap.Error(err),
		)
		apierrors.Internal().Abort(c)
		return
	}

	total, err := h.contacts.CountContacts(c.Request.Context(), userID)
	if err != nil {
		logger.Log.Warn("Failed to count contacts",
			logger.WithUserID(userID),
			zap.Error(err),
		)
	} else {
		c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	}

	c.JSON(http.StatusOK, contacts)
}

// SearchContacts filters contacts by first name, last name, or email.
func (h *ContactHandlers) SearchContacts(c *gin.Context) {
	userID := c.GetString("user_id")

	filter := repository.ContactFilter{
		FirstName: c.Query("first_name"),
		LastName:  c.Query("last_name"),
		Email:     c.Query("email"),
	}

	contacts, err := h.contacts.SearchContacts(c.Request.Context(), userID, filter)
	if err != nil {
		logger.Log.Error("Contact search failed",
			logger.WithUserID(userID),
			zap.Error(err),
		)
		apierrors.Internal().Abort(c)
		return
	}

	c.JSON(http.StatusOK, contacts)
}

// UpcomingBirthdays returns contacts with birthdays in the next week.
func (h *ContactHandlers) UpcomingBirthdays(c *gin.Context) {
	userID := c.GetString("user_id")

	contacts, err := h.contacts.UpcomingBirthdays(c.Request.Context(), userID, time.Now().UTC(), 7)
	if err != nil {
		logger.Log.Error("Birthday lookup failed",
			logger.WithUserID(userID),
			zap.Error(err),
		)
		apierrors.Internal().Abort(c)
		return
	}

	c.JSON(http.StatusOK, contacts)
}

// GetContact returns a single contact by ID.
func (h *ContactHandlers) GetContact(c *gin.Context) {
	userID := c.GetString("user_id")
	contactID := c.Param("id")

	contact, err := h.contacts.GetContact(c.Request.Context(), userID, contactID)
	if errors.Is(err, repository.ErrContactNotFound) {
		apierrors.NotFound("contact").Abort(c)
		return
	} else if err != nil {
		logger.Log.Error("Failed to get contact",
			logger.WithUserID(userID),
			zap.Error(err),
		)
		apierrors.Internal().Abort(c)
		return
	}

	c.JSON(http.StatusOK, contact)
}

// UpdateContact replaces a contact's fields.
func (h *ContactHandlers) UpdateContact(c *gin.Context) {
	userID := c.GetString("user_id")
	contactID := c.Param("id")

	var req contactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(err.Error()).Abort(c)
		return
	}

	contact := models.Contact{
		ID:        contactID,
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Birthday:  req.Birthday,
		Notes:     req.Notes,
	}

	err := h.contacts.UpdateContact(c.Request.Context(), &contact)
	if errors.Is(err, repository.ErrContactNotFound) {
		apierrors.NotFound("contact").Abort(c)
		return
	} else if errors.Is(err, repository.ErrDuplicateContactEmail) {
		apierrors.Conflict("contact with this email already exists").Abort(c)
		return
	} else if err != nil {
		logger.Log.Error("Failed to update contact",
			logger.WithUserID(userID),
			zap.Error(err),
		)
		apierrors.Internal().Abort(c)
		return
	}

	updated, err := h.contacts.GetContact(c.Request.Context(), userID, contactID)
	if err != nil {
		apierrors.Internal().Abort(c)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// DeleteContact removes a contact and returns the deleted record.
func (h *ContactHandlers) DeleteContact(c *gin.Context) {
	userID := c.GetString("user_id")
	contactID := c.Param("id")

	contact, err := h.contacts.DeleteContact(c.Request.Context(), userID, contactID)
	if errors.Is(err, repository.ErrContactNotFound) {
		apierrors.NotFound("contact").Abort(c)
		return
	} else if err != nil {
		logger.Log.Error("Failed to delete contact",
			logger.WithUserID(userID),
			zap.Error(err),
		)
		apierrors.Internal().Abort(c)
		return
	}

	c.JSON(http.StatusOK, contact)
}
