// Package wallet — service.go содержит бизнес-логику кошельков:
// валидация переводов, массовый сбор налогов, история транзакций.
package wallet

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"dndbot/internal/common"
)

// Store — контракт хранилища кошельков. Реализуется Repository,
// в тестах подменяется in-memory заглушкой.
type Store interface {
	GetOrCreate(ctx context.Context, guildID, userID string) (*Wallet, error)
	Get(ctx context.Context, guildID, userID string) (*Wallet, error)
	ListByGuild(ctx context.Context, guildID string) ([]*Wallet, error)
	Credit(ctx context.Context, guildID, userID, currencyName string, amount int64, txType string) (*Transaction, error)
	Debit(ctx context.Context, guildID, userID, currencyName string, amount int64, txType string) (*Transaction, error)
	Transfer(ctx context.Context, guildID, fromUserID, toUserID, currencyName string, amount int64, txType string) (*Transaction, error)
	SetLastWorked(ctx context.Context, guildID, userID string, t time.Time) error
	SetLastStolen(ctx context.Context, guildID, userID string, t time.Time) error
	ListTransactions(ctx context.Context, guildID, userID string, limit int) ([]*Transaction, error)
}

// registry — та часть реестра валют, которая нужна кошелькам.
type registry interface {
	Exists(ctx context.Context, guildID, name string) (bool, error)
}

// Service управляет кошельками и переводами.
// TreasuryID — кошелёк-казна (учётная запись самого бота): в него
// стекаются все налоги, из него выдаются займы.
type Service struct {
	store      Store
	registry   registry
	treasuryID string
}

// NewService создаёт сервис кошельков.
func NewService(store Store, registry registry, treasuryID string) *Service {
	return &Service{store: store, registry: registry, treasuryID: treasuryID}
}

// TreasuryID возвращает идентификатор кошелька-казны.
func (s *Service) TreasuryID() string { return s.treasuryID }

// GetOrCreate возвращает кошелёк, создавая его при первом обращении.
func (s *Service) GetOrCreate(ctx context.Context, guildID, userID string) (*Wallet, error) {
	return s.store.GetOrCreate(ctx, guildID, userID)
}

// Get возвращает кошелёк или nil, если его нет (без создания).
func (s *Service) Get(ctx context.Context, guildID, userID string) (*Wallet, error) {
	return s.store.Get(ctx, guildID, userID)
}

// Balance возвращает баланс пользователя в валюте (0, если кошелька нет).
func (s *Service) Balance(ctx context.Context, guildID, userID, currencyName string) (int64, error) {
	w, err := s.store.Get(ctx, guildID, userID)
	if err != nil {
		return 0, err
	}
	if w == nil {
		return 0, nil
	}
	return w.Balance(currencyName), nil
}

// Transfer переводит валюту от одного пользователя к другому.
// Выполняет все необходимые проверки:
//   - Нельзя переводить себе
//   - Сумма должна быть положительной
//   - Валюта должна существовать в реестре сервера
//   - У отправителя должно хватать средств (иначе ErrInsufficientFunds,
//     без каких-либо мутаций)
func (s *Service) Transfer(ctx context.Context, guildID, fromUserID, toUserID, currencyName string, amount int64, txType string) (*Transaction, error) {
	if fromUserID == toUserID {
		return nil, common.ErrSelfTransfer
	}
	if amount <= 0 {
		return nil, common.ErrInvalidAmount
	}
	exists, err := s.registry.Exists(ctx, guildID, currencyName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.ErrCurrencyNotFound
	}

	rec, err := s.store.Transfer(ctx, guildID, fromUserID, toUserID, currencyName, amount, txType)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"guild":    guildID,
		"from":     fromUserID,
		"to":       toUserID,
		"currency": currencyName,
		"amount":   amount,
		"type":     txType,
	}).Info("Перевод выполнен")
	return rec, nil
}

// Credit начисляет валюту (системная эмиссия).
func (s *Service) Credit(ctx context.Context, guildID, userID, currencyName string, amount int64, txType string) (*Transaction, error) {
	if amount <= 0 {
		return nil, common.ErrInvalidAmount
	}
	return s.store.Credit(ctx, guildID, userID, currencyName, amount, txType)
}

// Debit списывает валюту (системное списание). ErrInsufficientFunds
// при нехватке средств, без мутаций.
func (s *Service) Debit(ctx context.Context, guildID, userID, currencyName string, amount int64, txType string) (*Transaction, error) {
	if amount <= 0 {
		return nil, common.ErrInvalidAmount
	}
	return s.store.Debit(ctx, guildID, userID, currencyName, amount, txType)
}

// SetLastWorked ставит отметку кулдауна работы.
func (s *Service) SetLastWorked(ctx context.Context, guildID, userID string, t time.Time) error {
	return s.store.SetLastWorked(ctx, guildID, userID, t)
}

// SetLastStolen ставит отметку кулдауна кражи.
func (s *Service) SetLastStolen(ctx context.Context, guildID, userID string, t time.Time) error {
	return s.store.SetLastStolen(ctx, guildID, userID, t)
}

// ListByGuild возвращает все кошельки сервера.
func (s *Service) ListByGuild(ctx context.Context, guildID string) ([]*Wallet, error) {
	return s.store.ListByGuild(ctx, guildID)
}

// History возвращает последние транзакции пользователя.
func (s *Service) History(ctx context.Context, guildID, userID string, limit int) ([]*Transaction, error) {
	return s.store.ListTransactions(ctx, guildID, userID, limit)
}

// BulkTax собирает amount валюты с каждого кошелька из eligible
// (nil — со всех кошельков сервера). Политика continue-on-error:
//   - казна пропускается всегда;
//   - кошельки с балансом меньше amount пропускаются целиком,
//     частичных списаний нет;
//   - ошибка по одному кошельку считается, но не прерывает обход.
//
// Собранная сумма зачисляется казне ОДНИМ финальным начислением.
func (s *Service) BulkTax(ctx context.Context, guildID, currencyName string, amount int64, eligible []string) (*BulkTaxResult, error) {
	if amount <= 0 {
		return nil, common.ErrInvalidAmount
	}

	userIDs := eligible
	if userIDs == nil {
		wallets, err := s.store.ListByGuild(ctx, guildID)
		if err != nil {
			return nil, err
		}
		for _, w := range wallets {
			userIDs = append(userIDs, w.UserID)
		}
	}

	result := &BulkTaxResult{}
	for _, userID := range userIDs {
		if userID == s.treasuryID {
			continue
		}

		// Debit сам проверит баланс; нехватка средств — штатный пропуск
		_, err := s.store.Debit(ctx, guildID, userID, currencyName, amount, TxTypeTax)
		switch {
		case err == nil:
			result.Collected++
			result.Total += amount
		case errors.Is(err, common.ErrInsufficientFunds) || errors.Is(err, common.ErrNotFound):
			// Нечем платить или кошелька нет — пропускаем без счёта ошибок
		default:
			result.Failed++
			log.WithError(err).WithFields(log.Fields{
				"guild": guildID,
				"user":  userID,
			}).Error("Ошибка списания налога с кошелька")
		}
	}

	if result.Total > 0 {
		if _, err := s.store.Credit(ctx, guildID, s.treasuryID, currencyName, result.Total, TxTypeTax); err != nil {
			return result, err
		}
	}

	log.WithFields(log.Fields{
		"guild":     guildID,
		"currency":  currencyName,
		"collected": result.Collected,
		"total":     result.Total,
		"failed":    result.Failed,
	}).Info("Сбор налогов завершён")
	return result, nil
}
