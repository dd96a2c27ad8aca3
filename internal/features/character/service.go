// Package character — service.go содержит бизнес-логику листов персонажей.
package character

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"dndbot/internal/common"
)

// Store — контракт хранилища персонажей. Реализуется Repository,
// в тестах подменяется in-memory заглушкой.
type Store interface {
	Create(ctx context.Context, c *Character) error
	ListByUser(ctx context.Context, guildID, userID string) ([]*Character, error)
	Delete(ctx context.Context, guildID, userID, id string) (bool, error)
}

// Service управляет персонажами.
type Service struct {
	store Store

	now func() time.Time
}

// NewService создаёт сервис персонажей.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Create создаёт персонажа. Не больше трёх на пользователя
// (ErrCharacterLimit).
func (s *Service) Create(ctx context.Context, c *Character) (*Character, error) {
	existing, err := s.store.ListByUser(ctx, c.GuildID, c.UserID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= MaxPerUser {
		return nil, common.ErrCharacterLimit
	}

	c.ID = uuid.NewString()
	c.CreatedAt = s.now()
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"guild":     c.GuildID,
		"user":      c.UserID,
		"character": c.ID,
		"name":      c.Name,
	}).Info("Персонаж создан")
	return c, nil
}

// ListByUser возвращает персонажей пользователя.
func (s *Service) ListByUser(ctx context.Context, guildID, userID string) ([]*Character, error) {
	return s.store.ListByUser(ctx, guildID, userID)
}

// Delete удаляет персонажа владельца по идентификатору.
func (s *Service) Delete(ctx context.Context, guildID, userID, id string) error {
	deleted, err := s.store.Delete(ctx, guildID, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return common.ErrNotFound
	}
	log.WithFields(log.Fields{
		"guild":     guildID,
		"user":      userID,
		"character": id,
	}).Info("Персонаж удалён")
	return nil
}

// Find ищет персонажа пользователя по имени (без учёта регистра).
func (s *Service) Find(ctx context.Context, guildID, userID, name string) (*Character, error) {
	chars, err := s.store.ListByUser(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	for _, c := range chars {
		if strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, common.ErrNotFound
}
