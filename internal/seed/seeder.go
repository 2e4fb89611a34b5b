package seed

import (
	"fmt"
	"time"

	"github.com/YuriiKoshliak/contacts-api/internal/logger"
	"github.com/YuriiKoshliak/contacts-api/internal/models"
	"github.com/brianvoe/gofakeit/v7"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev seeds the development database with realistic data: a handful
// of verified users, each with a populated contact book. Every user's
// password is "password123".
func (s *Seeder) SeedDev(userCount, contactsPerUser int) error {
	logger.Log.Info("Seeding users", zap.Int("count", userCount))

	users, err := s.seedUsers(userCount)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("Seeding contacts",
		zap.Int("per_user", contactsPerUser),
	)

	if err := s.seedContacts(users, contactsPerUser); err != nil {
		return fmt.Errorf("failed to seed contacts: %w", err)
	}

	logger.Log.Info("Seeding complete")
	return nil
}

func (s *Seeder) seedUsers(count int) ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		user := &models.User{
			Username:     gofakeit.Username(),
			Email:        fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			PasswordHash: string(hash),
			Verified:     true,
			AvatarURL:    gofakeit.ImageURL(200, 200),
		}

		if err := s.db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	return users, nil
}

func (s *Seeder) seedContacts(users []*models.User, perUser int) error {
	for _, user := range users {
		for i := 0; i < perUser; i++ {
			birthday := gofakeit.DateRange(
				time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC),
			)

			contact := &models.Contact{
				UserID:    user.ID,
				FirstName: gofakeit.FirstName(),
				LastName:  gofakeit.LastName(),
				Email:     fmt.Sprintf("%d.%s", i, gofakeit.Email()),
				Phone:     gofakeit.Phone(),
				Birthday:  &birthday,
				Notes:     gofakeit.Sentence(8),
			}

			if err := s.db.Create(contact).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
