package store

import (
	"context"
	"errors"
	"fmt"

	"crewboard/model"

	"gorm.io/gorm"
)

// CreateCrew inserts the crew and makes founderID its first member.
//
// Both writes happen in one transaction: either the crew exists with its
// founder in it, or nothing was written.
func (s *Store) CreateCrew(ctx context.Context, founderID uint, crew *model.Crew) error {
	if crew.Name == "" {
		return ErrMissingCrewName
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Members").Create(crew).Error; err != nil {
			return err
		}
		return setUserCrew(tx, founderID, crew.ID)
	})
	if err != nil {
		crew.ID = 0
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("CreateCrew: %w", err)
	}

	logger.WithContext(ctx).
		WithField("ID", crew.ID).
		WithField("Name", crew.Name).
		WithField("FounderID", founderID).
		Info("CreateCrew: success")

	return nil
}

// Crew returns the crew with its members.
func (s *Store) Crew(ctx context.Context, id uint) (*model.Crew, error) {
	crew := new(model.Crew)
	err := s.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		First(crew, id).Error
	if err != nil {
		return nil, notFound(err, ErrCrewNotFound)
	}
	return crew, nil
}

// ListCrews returns every crew with its members, oldest first.
func (s *Store) ListCrews(ctx context.Context) ([]*model.Crew, error) {
	crews := make([]*model.Crew, 0)
	err := s.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Order("id").
		Find(&crews).Error
	if err != nil {
		return nil, fmt.Errorf("ListCrews: %w", err)
	}
	return crews, nil
}

// CrewPatch holds the fields of an edit. Nil fields keep their value,
// except TrackTitle, which is cleared when Mp3File changes without one.
type CrewPatch struct {
	Name        *string
	Photo       *string
	Mp3File     *string
	Description *string
	TrackTitle  *string
}

func (p CrewPatch) columns() map[string]any {
	cols := make(map[string]any)
	set := func(col string, v *string) {
		if v != nil {
			cols[col] = *v
		}
	}
	set("name", p.Name)
	set("photo", p.Photo)
	set("mp3_file", p.Mp3File)
	set("description", p.Description)
	set("track_title", p.TrackTitle)
	if p.Mp3File != nil && p.TrackTitle == nil {
		cols["track_title"] = "" // the old clip's title no longer applies
	}
	return cols
}

// UpdateCrew applies patch to the crew on behalf of editorID.
//
// The editor must be a member of the crew, otherwise ErrNotCrewMember is
// returned and nothing changes. An unknown crew is ErrCrewNotFound.
func (s *Store) UpdateCrew(ctx context.Context, editorID, crewID uint, patch CrewPatch) (*model.Crew, error) {
	if patch.Name != nil && *patch.Name == "" {
		return nil, ErrMissingCrewName
	}

	crew := new(model.Crew)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(crew, crewID).Error; err != nil {
			return notFound(err, ErrCrewNotFound)
		}

		editor := new(model.User)
		if err := tx.First(editor, editorID).Error; err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if !editor.InCrew(crew.ID) {
			return ErrNotCrewMember
		}

		cols := patch.columns()
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(crew).Updates(cols).Error; err != nil {
			return err
		}
		return tx.First(crew, crewID).Error
	})

	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrAuthorization):
		return nil, err
	default:
		return nil, fmt.Errorf("UpdateCrew: %w", err)
	}

	logger.WithContext(ctx).
		WithField("ID", crew.ID).
		WithField("EditorID", editorID).
		Info("UpdateCrew: success")

	return crew, nil
}
