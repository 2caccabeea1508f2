package store

import (
	"context"
	"fmt"
	"strings"

	"crewboard/model"
)

// PostMessage stores a search message written by userID.
func (s *Store) PostMessage(ctx context.Context, userID uint, text string) (*model.SearchMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	msg := &model.SearchMessage{UserID: userID, Message: text}
	if err := s.db.WithContext(ctx).Omit("User").Create(msg).Error; err != nil {
		return nil, fmt.Errorf("PostMessage: %w", err)
	}
	return msg, nil
}

// ListMessages returns every search message in the order they were
// posted, with their authors.
func (s *Store) ListMessages(ctx context.Context) ([]*model.SearchMessage, error) {
	msgs := make([]*model.SearchMessage, 0)
	err := s.db.WithContext(ctx).
		Preload("User").
		Order("id").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("ListMessages: %w", err)
	}
	return msgs, nil
}
