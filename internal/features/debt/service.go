// Package debt — service.go содержит бизнес-логику займов:
// выдача, расчёт эффективного остатка и погашение с процентами.
package debt

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"dndbot/internal/common"
	"dndbot/internal/features/wallet"
)

// Store — контракт хранилища долгов. Реализуется Repository,
// в тестах подменяется in-memory заглушкой.
type Store interface {
	Get(ctx context.Context, guildID, userID, currencyName string) (*Debt, error)
	ListByUser(ctx context.Context, guildID, userID string) ([]*Debt, error)
	Create(ctx context.Context, guildID, userID, currencyName string, principal int64, loanDate time.Time) (bool, error)
	Update(ctx context.Context, id int64, principal int64, penalized bool) error
	Delete(ctx context.Context, id int64) error
}

// ledger — та часть сервиса кошельков, которая нужна займам.
type ledger interface {
	Balance(ctx context.Context, guildID, userID, currencyName string) (int64, error)
	Credit(ctx context.Context, guildID, userID, currencyName string, amount int64, txType string) (*wallet.Transaction, error)
	Transfer(ctx context.Context, guildID, fromUserID, toUserID, currencyName string, amount int64, txType string) (*wallet.Transaction, error)
	TreasuryID() string
}

// registry — проверка существования валюты.
type registry interface {
	Exists(ctx context.Context, guildID, name string) (bool, error)
}

// Service управляет займами и долгами.
type Service struct {
	store      Store
	wallets    ledger
	currencies registry

	now func() time.Time // Инъекция времени для тестов
}

// NewService создаёт сервис долгов.
func NewService(store Store, wallets ledger, currencies registry) *Service {
	return &Service{store: store, wallets: wallets, currencies: currencies, now: time.Now}
}

// Borrow выдаёт займ: казна авансирует principal, на кошелёк заёмщика
// зачисляется вся сумма, создаётся запись долга с датой выдачи.
// По одной валюте может быть только один непогашенный займ (ErrDebtExists).
func (s *Service) Borrow(ctx context.Context, guildID, userID, currencyName string, amount int64) (*Debt, error) {
	if amount <= 0 {
		return nil, common.ErrInvalidAmount
	}
	exists, err := s.currencies.Exists(ctx, guildID, currencyName)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.ErrCurrencyNotFound
	}

	now := s.now()
	created, err := s.store.Create(ctx, guildID, userID, currencyName, amount, now)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, common.ErrDebtExists
	}

	if _, err := s.wallets.Credit(ctx, guildID, userID, currencyName, amount, wallet.TxTypeLoan); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"guild":    guildID,
		"user":     userID,
		"currency": currencyName,
		"amount":   amount,
	}).Info("Займ выдан")

	return &Debt{
		GuildID:      guildID,
		UserID:       userID,
		CurrencyName: currencyName,
		Principal:    amount,
		LoanDate:     now,
	}, nil
}

// Outstanding возвращает долги пользователя с эффективными остатками
// (просрочка учитывается на лету, без записи в БД).
func (s *Service) Outstanding(ctx context.Context, guildID, userID string) ([]*Debt, error) {
	return s.store.ListByUser(ctx, guildID, userID)
}

// Effective возвращает эффективный остаток долга по валюте
// (0, если долга нет).
func (s *Service) Effective(ctx context.Context, guildID, userID, currencyName string) (int64, error) {
	d, err := s.store.Get(ctx, guildID, userID, currencyName)
	if err != nil {
		return 0, err
	}
	if d == nil {
		return 0, nil
	}
	return d.Effective(s.now()), nil
}

// PayResult — разбивка погашения.
type PayResult struct {
	Paid        int64 // Погашенная часть долга
	Interest    int64 // Комиссия 25% сверху
	TotalCharge int64 // Списано с кошелька всего
	Remaining   int64 // Остаток долга после погашения
}

// PayDebt погашает amount долга по валюте:
//   - ErrNoDebt, если эффективный остаток равен 0;
//   - комиссия 25% от суммы погашения: totalCharge = amount + amount/4;
//   - ErrInsufficientFunds, если баланса меньше totalCharge;
//   - ErrOverpayment, если amount больше эффективного остатка;
//   - totalCharge уходит в казну обычным переводом, остаток долга
//     уменьшается на amount.
//
// Штраф за просрочку материализуется именно здесь: новый остаток
// считается от эффективного значения, и долг помечается penalized,
// чтобы надбавка 50% не применялась повторно.
func (s *Service) PayDebt(ctx context.Context, guildID, userID, currencyName string, amount int64) (*PayResult, error) {
	if amount <= 0 {
		return nil, common.ErrInvalidAmount
	}

	d, err := s.store.Get(ctx, guildID, userID, currencyName)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if d == nil || d.Effective(now) == 0 {
		return nil, common.ErrNoDebt
	}

	effective := d.Effective(now)
	interest := amount / 4
	totalCharge := amount + interest

	balance, err := s.wallets.Balance(ctx, guildID, userID, currencyName)
	if err != nil {
		return nil, err
	}
	if balance < totalCharge {
		return nil, common.ErrInsufficientFunds
	}
	if amount > effective {
		return nil, common.ErrOverpayment
	}

	if _, err := s.wallets.Transfer(ctx, guildID, userID, s.wallets.TreasuryID(), currencyName, totalCharge, wallet.TxTypeDebtPayment); err != nil {
		return nil, err
	}

	remaining := effective - amount
	if remaining == 0 {
		if err := s.store.Delete(ctx, d.ID); err != nil {
			return nil, err
		}
	} else {
		// Просрочка уже вошла в remaining — фиксируем флаг
		penalized := d.Penalized || d.Overdue(now)
		if err := s.store.Update(ctx, d.ID, remaining, penalized); err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"guild":     guildID,
		"user":      userID,
		"currency":  currencyName,
		"paid":      amount,
		"interest":  interest,
		"remaining": remaining,
	}).Info("Долг погашен (частично или полностью)")

	return &PayResult{
		Paid:        amount,
		Interest:    interest,
		TotalCharge: totalCharge,
		Remaining:   remaining,
	}, nil
}
