package store

import (
	"context"
	"errors"
	"fmt"

	"crewboard/model"

	"gorm.io/gorm"
)

// CreateUser inserts a new user.
//
// It fails with ErrDuplicateUser if the username or the email is already
// taken, and with ErrUnknownCrew if user.CrewID names no crew. Nothing is
// written in either case.
func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	if user.Username == "" || user.Email == "" || user.PasswordHash == "" {
		return ErrMissingCredentials
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cnt int64
		err := tx.Model(&model.User{}).
			Where("username = ? OR email = ?", user.Username, user.Email).
			Count(&cnt).Error
		if err != nil {
			return err
		}
		if cnt > 0 {
			return ErrDuplicateUser
		}

		if user.CrewID != nil {
			if err := crewExists(tx, *user.CrewID); err != nil {
				return err
			}
		}

		return tx.Create(user).Error
	})

	switch {
	case err == nil:
	case isUniqueViolation(err):
		return ErrDuplicateUser
	case errors.Is(err, ErrValidation):
		return err
	default:
		return fmt.Errorf("CreateUser: %w", err)
	}

	logger.WithContext(ctx).
		WithField("ID", user.ID).
		WithField("Username", user.Username).
		Info("CreateUser: success")

	return nil
}

// UserByUsername looks a user up by username.
func (s *Store) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	user := new(model.User)
	err := s.db.WithContext(ctx).
		Where("username = ?", username).
		First(user).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

// UserByID looks a user up by id.
func (s *Store) UserByID(ctx context.Context, id uint) (*model.User, error) {
	user := new(model.User)
	err := s.db.WithContext(ctx).First(user, id).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return user, nil
}

// JoinCrew makes the user a member of the crew, replacing any previous
// membership. Joining the crew the user is already in is allowed.
func (s *Store) JoinCrew(ctx context.Context, userID, crewID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := crewExists(tx, crewID); err != nil {
			if errors.Is(err, ErrUnknownCrew) {
				return ErrCrewNotFound
			}
			return err
		}
		return setUserCrew(tx, userID, crewID)
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("JoinCrew: %w", err)
	}

	logger.WithContext(ctx).
		WithField("UserID", userID).
		WithField("CrewID", crewID).
		Info("JoinCrew: success")

	return nil
}

func setUserCrew(tx *gorm.DB, userID, crewID uint) error {
	res := tx.Model(&model.User{}).
		Where("id = ?", userID).
		Update("crew_id", crewID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func crewExists(tx *gorm.DB, crewID uint) error {
	var cnt int64
	if err := tx.Model(&model.Crew{}).Where("id = ?", crewID).Count(&cnt).Error; err != nil {
		return err
	}
	if cnt == 0 {
		return ErrUnknownCrew
	}
	return nil
}
