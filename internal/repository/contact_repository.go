package repository

import (
	"context"
	"errors"
	"time"

	"github.com/YuriiKoshliak/contacts-api/internal/models"
	"gorm.io/gorm"
)

var (
	ErrContactNotFound       = errors.New("contact not found")
	ErrDuplicateContactEmail = errors.New("contact email already in use")
)

// ContactFilter narrows a contact search. Empty fields are ignored; set
// fields match as case-insensitive substrings.
type ContactFilter struct {
	FirstName string
	LastName  string
	Email     string
}

// ContactRepository handles all database operations for contacts. Every
// method is scoped to the owning user; a contact owned by someone else
// behaves as if it does not exist. Each user holds at most one live
// contact per email address (case-insensitive).
type ContactRepository interface {
	CreateContact(ctx context.Context, contact *models.Contact) error
	GetContact(ctx context.Context, userID, contactID string) (*models.Contact, error)
	ListContacts(ctx context.Context, userID string, skip, limit int) ([]*models.Contact, error)
	UpdateContact(ctx context.Context, contact *models.Contact) error
	DeleteContact(ctx context.Context, userID, contactID string) (*models.Contact, error)

	SearchContacts(ctx context.Context, userID string, filter ContactFilter) ([]*models.Contact, error)

	// UpcomingBirthdays returns the user's contacts whose birthday falls
	// within [from, from+days), compared by calendar day and handling
	// the year boundary.
	UpcomingBirthdays(ctx context.Context, userID string, from time.Time, days int) ([]*models.Contact, error)

	CountContacts(ctx context.Context, userID string) (int64, error)
}

// contactRepository implements ContactRepository interface
type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) CreateContact(ctx context.Context, contact *models.Contact) error {
	if contact == nil || contact.UserID == "" {
		return ErrInvalidInput
	}

	taken, err := r.emailTaken(ctx, contact.UserID, contact.Email, "")
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateContactEmail
	}

	err = r.db.WithContext(ctx).Create(contact).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateContactEmail
	}
	return err
}

// emailTaken reports whether the user already has a live contact with
// this email, excluding excludeID when updating in place.
func (r *contactRepository) emailTaken(ctx context.Context, userID, email, excludeID string) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("user_id = ? AND LOWER(email) = LOWER(?)", userID, email)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *contactRepository) GetContact(ctx context.Context, userID, contactID string) (*models.Contact, error) {
	var contact models.Contact
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", contactID, userID).
		First(&contact).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrContactNotFound
	}

	return &contact, err
}

func (r *contactRepository) ListContacts(ctx context.Context, userID string, skip, limit int) ([]*models.Contact, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = 100
	} else if limit > 500 {
		limit = 500
	}

	var contacts []*models.Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(skip).
		Limit(limit).
		Find(&contacts).Error

	return contacts, err
}

func (r *contactRepository) UpdateContact(ctx context.Context, contact *models.Contact) error {
	if contact == nil || contact.ID == "" || contact.UserID == "" {
		return ErrInvalidInput
	}

	taken, err := r.emailTaken(ctx, contact.UserID, contact.Email, contact.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateContactEmail
	}

	res := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("id = ? AND user_id = ?", contact.ID, contact.UserID).
		Updates(map[string]interface{}{
			"first_name": contact.FirstName,
			"last_name":  contact.LastName,
			"email":      contact.Email,
			"phone":      contact.Phone,
			"birthday":   contact.Birthday,
			"notes":      contact.Notes,
		})
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return ErrDuplicateContactEmail
	}
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrContactNotFound
	}
	return nil
}

// DeleteContact soft-deletes a contact and returns the deleted record.
func (r *contactRepository) DeleteContact(ctx context.Context, userID, contactID string) (*models.Contact, error) {
	contact, err := r.GetContact(ctx, userID, contactID)
	if err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Delete(contact).Error; err != nil {
		return nil, err
	}

	return contact, nil
}

func (r *contactRepository) SearchContacts(ctx context.Context, userID string, filter ContactFilter) ([]*models.Contact, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if filter.FirstName != "" {
		query = query.Where("LOWER(first_name) LIKE LOWER(?)", "%"+filter.FirstName+"%")
	}
	if filter.LastName != "" {
		query = query.Where("LOWER(last_name) LIKE LOWER(?)", "%"+filter.LastName+"%")
	}
	if filter.Email != "" {
		query = query.Where("LOWER(email) LIKE LOWER(?)", "%"+filter.Email+"%")
	}

	var contacts []*models.Contact
	err := query.Order("last_name, first_name").Find(&contacts).Error
	return contacts, err
}

func (r *contactRepository) UpcomingBirthdays(ctx context.Context, userID string, from time.Time, days int) ([]*models.Contact, error) {
	var contacts []*models.Contact
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND birthday IS NOT NULL", userID).
		Find(&contacts).Error
	if err != nil {
		return nil, err
	}

	// The window check runs in Go rather than SQL: matching an upcoming
	// anniversary across a year boundary does not map to a portable
	// range predicate on a date column.
	upcoming := make([]*models.Contact, 0)
	for _, c := range contacts {
		if birthdayInWindow(*c.Birthday, from, days) {
			upcoming = append(upcoming, c)
		}
	}

	return upcoming, nil
}

func (r *contactRepository) CountContacts(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// birthdayInWindow reports whether the next anniversary of birthday falls
// within [from, from+days), comparing calendar days only.
func birthdayInWindow(birthday, from time.Time, days int) bool {
	from = time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)

	next := time.Date(from.Year(), birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	if next.Before(from) {
		next = time.Date(from.Year()+1, birthday.Month(), birthday.Day(), 0, 0, 0, 0, time.UTC)
	}

	diff := int(next.Sub(from).Hours() / 24)
	return diff >= 0 && diff < days
}
