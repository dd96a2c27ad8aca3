// Package currency — service.go содержит бизнес-логику реестра валют.
package currency

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"dndbot/internal/common"
)

// Store — контракт хранилища валют. Реализуется Repository,
// в тестах подменяется in-memory заглушкой.
type Store interface {
	Create(ctx context.Context, guildID, name, symbol string) (bool, error)
	Delete(ctx context.Context, guildID, name string) (bool, error)
	List(ctx context.Context, guildID string) ([]Currency, error)
}

// Service управляет реестром валют сервера.
type Service struct {
	store Store
}

// NewService создаёт сервис валют.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create регистрирует новую валюту.
// Дубликаты отклоняются с ErrCurrencyExists — молчаливая перезапись
// старой версии была источником потерянных символов.
func (s *Service) Create(ctx context.Context, guildID, name, symbol string) error {
	if name == "" || symbol == "" {
		return common.ErrInvalidAmount
	}
	created, err := s.store.Create(ctx, guildID, name, symbol)
	if err != nil {
		return err
	}
	if !created {
		return common.ErrCurrencyExists
	}

	log.WithFields(log.Fields{
		"guild":    guildID,
		"currency": name,
		"symbol":   symbol,
	}).Info("Валюта создана")
	return nil
}

// Delete удаляет валюту. Возвращает ErrCurrencyNotFound,
// если валюты с таким именем не было.
func (s *Service) Delete(ctx context.Context, guildID, name string) error {
	deleted, err := s.store.Delete(ctx, guildID, name)
	if err != nil {
		return err
	}
	if !deleted {
		return common.ErrCurrencyNotFound
	}
	log.WithFields(log.Fields{"guild": guildID, "currency": name}).Info("Валюта удалена")
	return nil
}

// List возвращает валюты сервера (пустой срез, если не настроены).
func (s *Service) List(ctx context.Context, guildID string) ([]Currency, error) {
	return s.store.List(ctx, guildID)
}

// Get ищет валюту по имени. ErrCurrencyNotFound, если её нет.
func (s *Service) Get(ctx context.Context, guildID, name string) (*Currency, error) {
	list, err := s.store.List(ctx, guildID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].Name == name {
			return &list[i], nil
		}
	}
	return nil, common.ErrCurrencyNotFound
}

// Exists сообщает, зарегистрирована ли валюта на сервере.
func (s *Service) Exists(ctx context.Context, guildID, name string) (bool, error) {
	_, err := s.Get(ctx, guildID, name)
	if errors.Is(err, common.ErrCurrencyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Primary возвращает основную (первую зарегистрированную) валюту сервера.
// ErrNoCurrencyConfigured, если реестр пуст.
func (s *Service) Primary(ctx context.Context, guildID string) (*Currency, error) {
	list, err := s.store.List(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, common.ErrNoCurrencyConfigured
	}
	return &list[0], nil
}
