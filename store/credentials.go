package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clockzy.com/clockzy/model"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SaveTemporaryCredentials stores a bcrypt hash of password that is valid
// until expires. Earlier credentials of the user are replaced.
func (s *Store) SaveTemporaryCredentials(ctx context.Context, userID, password string, expires time.Time) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Save(&model.TemporaryCredentials{
			UserID:             userID,
			Password:           string(hash),
			ExpirationDateTime: expires.UTC(),
		}).Error
	})
}

// CheckTemporaryCredentials reports whether password matches unexpired
// credentials of the user.
func (s *Store) CheckTemporaryCredentials(ctx context.Context, userID, password string, now time.Time) (bool, error) {
	var creds model.TemporaryCredentials
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Where("user_id = ?", userID).First(&creds).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return credentialsValid(creds, password, now), nil
}

func credentialsValid(creds model.TemporaryCredentials, password string, now time.Time) bool {
	if !now.Before(creds.ExpirationDateTime) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(creds.Password), []byte(password)) == nil
}
