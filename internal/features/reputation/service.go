// Package reputation — service.go содержит бизнес-логику репутации.
package reputation

import (
	"context"

	log "github.com/sirupsen/logrus"

	"dndbot/internal/common"
)

// Store — контракт хранилища репутации. Реализуется Repository,
// в тестах подменяется in-memory заглушкой.
type Store interface {
	Add(ctx context.Context, guildID, userID string, delta int64) (int64, error)
	Get(ctx context.Context, guildID, userID string) (int64, error)
	Ranking(ctx context.Context, guildID string, limit int) ([]*Entry, error)
}

// RankingLimit — сколько позиций показывается в рейтинге.
const RankingLimit = 10

// Service управляет репутацией.
type Service struct {
	store Store
}

// NewService создаёт сервис репутации.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Add начисляет amount очков и возвращает новое значение.
func (s *Service) Add(ctx context.Context, guildID, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, common.ErrInvalidAmount
	}
	points, err := s.store.Add(ctx, guildID, userID, amount)
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{
		"guild":  guildID,
		"user":   userID,
		"amount": amount,
		"points": points,
	}).Info("Репутация начислена")
	return points, nil
}

// Remove снимает amount очков. Итог не уходит ниже нуля.
func (s *Service) Remove(ctx context.Context, guildID, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, common.ErrInvalidAmount
	}
	points, err := s.store.Add(ctx, guildID, userID, -amount)
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{
		"guild":  guildID,
		"user":   userID,
		"amount": amount,
		"points": points,
	}).Info("Репутация снята")
	return points, nil
}

// Get возвращает очки пользователя.
func (s *Service) Get(ctx context.Context, guildID, userID string) (int64, error) {
	return s.store.Get(ctx, guildID, userID)
}

// Ranking возвращает топ пользователей сервера.
func (s *Service) Ranking(ctx context.Context, guildID string) ([]*Entry, error) {
	return s.store.Ranking(ctx, guildID, RankingLimit)
}
