package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"clockzy.com/clockzy/model"
	"gorm.io/gorm"
)

func FindUser(db *gorm.DB, id string) (*model.User, error) {
	var user model.User
	err := db.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindUser returns nil when the user is not registered.
func (s *Store) FindUser(ctx context.Context, id string) (*model.User, error) {
	var user *model.User
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		var err error
		user, err = FindUser(db, id)
		return err
	})
	return user, err
}

// CreateUser registers user together with its configuration row.
func (s *Store) CreateUser(ctx context.Context, user *model.User, timezone string) error {
	return s.dm.Transaction(ctx, func(tx *gorm.DB) error {
		existing, err := FindUser(tx, user.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrUserExists
		}

		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUserExists
			}
			return fmt.Errorf("failed to create user: %w", err)
		}
		return tx.Create(&model.UserConfig{UserID: user.ID, TimeZone: timezone}).Error
	})
}

// DeleteUser removes the user and everything it owns.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.dm.Transaction(ctx, func(tx *gorm.DB) error {
		owned := []any{
			&model.Clock{},
			&model.CommandHistory{},
			&model.UserConfig{},
			&model.Alias{},
			&model.TemporaryCredentials{},
		}
		for _, m := range owned {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return fmt.Errorf("failed to delete user data: %w", err)
			}
		}

		result := tx.Where("id = ?", id).Delete(&model.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) UpdateUserName(ctx context.Context, id, name string) error {
	return s.dm.Exec(ctx, func(db *gorm.DB) error {
		result := db.Model(&model.User{}).Where("id = ?", id).Update("user_name", name)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// SetIntratimeCredentials stores the Intratime login of the user. Nil values
// clear it.
func (s *Store) SetIntratimeCredentials(ctx context.Context, id string, email, pin *string) error {
	return s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Model(&model.User{}).Where("id = ?", id).
			Updates(map[string]any{"email": email, "password": pin}).Error
	})
}

// GetUserConfig returns nil when the user has no configuration row.
func (s *Store) GetUserConfig(ctx context.Context, userID string) (*model.UserConfig, error) {
	var cfg model.UserConfig
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Where("user_id = ?", userID).First(&cfg).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Store) SaveUserConfig(ctx context.Context, cfg *model.UserConfig) error {
	return s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Save(cfg).Error
	})
}

func (s *Store) AddAlias(ctx context.Context, userID, alias string) error {
	return s.dm.Exec(ctx, func(db *gorm.DB) error {
		var count int64
		if err := db.Model(&model.Alias{}).Where("alias = ?", alias).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAliasExists
		}

		err := db.Create(&model.Alias{UserID: userID, Alias: alias}).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAliasExists
		}
		return err
	})
}

// UserAliases groups the aliases registered for one user.
type UserAliases struct {
	UserID   string
	UserName string
	Aliases  []string
}

func (s *Store) ListAliases(ctx context.Context) ([]UserAliases, error) {
	type row struct {
		UserID   string
		UserName string
		Alias    string
	}

	var rows []row
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Table("alias").
			Select("alias.user_id AS user_id, `user`.user_name AS user_name, alias.alias AS alias").
			Joins("JOIN `user` ON `user`.id = alias.user_id").
			Order("`user`.user_name, alias.id").
			Scan(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	var result []UserAliases
	for _, r := range rows {
		if n := len(result); n > 0 && result[n-1].UserID == r.UserID {
			result[n-1].Aliases = append(result[n-1].Aliases, r.Alias)
			continue
		}
		result = append(result, UserAliases{UserID: r.UserID, UserName: r.UserName, Aliases: []string{r.Alias}})
	}
	return result, nil
}

// FindUserByName looks a user up by user name first and alias second.
func (s *Store) FindUserByName(ctx context.Context, name string) (*model.User, error) {
	var user model.User
	err := s.dm.Exec(ctx, func(db *gorm.DB) error {
		err := db.Where("user_name = ?", name).First(&user).Error
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		return db.Joins("JOIN alias ON alias.user_id = `user`.id").
			Where("alias.alias = ?", name).
			First(&user).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) RecordCommand(ctx context.Context, userID, command, parameters string, at time.Time) error {
	entry := model.CommandHistory{
		UserID:   userID,
		Command:  command,
		DateTime: at.UTC(),
	}
	if parameters != "" {
		entry.Parameters = &parameters
	}

	return s.dm.Exec(ctx, func(db *gorm.DB) error {
		return db.Create(&entry).Error
	})
}
