// Package settings — service.go содержит логику настроек серверов.
package settings

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Store — контракт хранилища настроек.
type Store interface {
	Get(ctx context.Context, guildID string) (*GuildSettings, error)
	SetLogChannel(ctx context.Context, guildID, channelID string) error
}

// Service управляет настройками серверов.
type Service struct {
	store Store
}

// NewService создаёт сервис настроек.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Get возвращает настройки сервера.
func (s *Service) Get(ctx context.Context, guildID string) (*GuildSettings, error) {
	return s.store.Get(ctx, guildID)
}

// SetLogChannel назначает канал логов транзакций.
func (s *Service) SetLogChannel(ctx context.Context, guildID, channelID string) error {
	if err := s.store.SetLogChannel(ctx, guildID, channelID); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"guild":   guildID,
		"channel": channelID,
	}).Info("Канал логов транзакций настроен")
	return nil
}
