// Package account manages the staff users of the data entry pages.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"whatsfresh/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInvalidCredentials is returned for an unknown user, a wrong password or
// a deactivated account.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Service authenticates and creates staff users
type Service struct {
	db *gorm.DB
}

// NewService wraps db
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Authenticate returns the active user with the given credentials
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).Preload("Groups").Where("username = ?", strings.TrimSpace(username)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// CreateUser stores an active user belonging to groups, creating missing
// groups on the way.
func (s *Service) CreateUser(ctx context.Context, username, password string, groups ...string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := model.User{Username: username, PasswordHash: hash, Active: true}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range groups {
			group := model.Group{Name: name}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&group).Error; err != nil {
				return fmt.Errorf("create group %q: %w", name, err)
			}
			if err := tx.Where("name = ?", name).First(&group).Error; err != nil {
				return fmt.Errorf("load group %q: %w", name, err)
			}
			user.Groups = append(user.Groups, group)
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create user %q: %w", username, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
