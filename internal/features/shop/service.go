// Package shop — service.go содержит бизнес-логику комерций:
// создание (списание стоимости + стартовый бонус) и еженедельный
// обход выплат с броском d20.
package shop

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"dndbot/internal/common"
	"dndbot/internal/features/currency"
	"dndbot/internal/features/wallet"
	"dndbot/internal/notify"
)

// Store — контракт хранилища комерций. Реализуется Repository,
// в тестах подменяется in-memory заглушкой.
type Store interface {
	Create(ctx context.Context, s *Shop) error
	ListByUser(ctx context.Context, guildID, userID string) ([]*Shop, error)
	ListByGuild(ctx context.Context, guildID string) ([]*Shop, error)
	ListAll(ctx context.Context) ([]*Shop, error)
	SetLastPayout(ctx context.Context, id string, t time.Time) error
}

// ledger — та часть сервиса кошельков, которая нужна комерциям.
type ledger interface {
	Get(ctx context.Context, guildID, userID string) (*wallet.Wallet, error)
	GetOrCreate(ctx context.Context, guildID, userID string) (*wallet.Wallet, error)
	Credit(ctx context.Context, guildID, userID, currencyName string, amount int64, txType string) (*wallet.Transaction, error)
	Debit(ctx context.Context, guildID, userID, currencyName string, amount int64, txType string) (*wallet.Transaction, error)
	TreasuryID() string
}

// registry — доступ к основной валюте сервера.
type registry interface {
	Primary(ctx context.Context, guildID string) (*currency.Currency, error)
}

// Service управляет комерциями.
type Service struct {
	store      Store
	wallets    ledger
	currencies registry
	sink       notify.Sink

	randInt func(n int) int // Инъекция случайности для тестов
	now     func() time.Time
}

// NewService создаёт сервис комерций.
func NewService(store Store, wallets ledger, currencies registry, sink notify.Sink) *Service {
	return &Service{
		store:      store,
		wallets:    wallets,
		currencies: currencies,
		sink:       sink,
		randInt: func(n int) int {
			if n <= 0 {
				return 0
			}
			return rand.Intn(n)
		},
		now: time.Now,
	}
}

// CreateResult — итог создания комерции.
type CreateResult struct {
	Shop     *Shop
	Currency currency.Currency
	Cost     int64
	Bonus    int64 // Разовый стартовый бонус, без налога
}

// Create создаёт комерцию:
//   - не больше трёх на пользователя (ErrShopLimit);
//   - стоимость по размеру (2000/4000/6000) списывается в основной
//     валюте сервера (ErrInsufficientFunds — без мутаций);
//   - после создания разово начисляется стартовый бонус (250/500/750),
//     налог с бонуса не берётся.
func (s *Service) Create(ctx context.Context, guildID, userID, name, shopType, size, imageURL string) (*CreateResult, error) {
	cost, err := CreationCost(size)
	if err != nil {
		return nil, err
	}
	bonus, _ := BaseIncome(size)

	cur, err := s.currencies.Primary(ctx, guildID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.ListByUser(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= MaxShopsPerUser {
		return nil, common.ErrShopLimit
	}

	if _, err := s.wallets.GetOrCreate(ctx, guildID, userID); err != nil {
		return nil, err
	}
	if _, err := s.wallets.Debit(ctx, guildID, userID, cur.Name, cost, wallet.TxTypeShopCost); err != nil {
		return nil, err
	}

	now := s.now()
	created := &Shop{
		ID:         uuid.NewString(),
		GuildID:    guildID,
		UserID:     userID,
		Name:       name,
		Type:       shopType,
		Size:       size,
		ImageURL:   imageURL,
		CreatedAt:  now,
		LastPayout: now,
	}
	if err := s.store.Create(ctx, created); err != nil {
		return nil, err
	}

	if _, err := s.wallets.Credit(ctx, guildID, userID, cur.Name, bonus, wallet.TxTypeShopBonus); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"guild": guildID,
		"user":  userID,
		"shop":  created.ID,
		"size":  size,
		"cost":  cost,
	}).Info("Комерция создана")

	s.sink.Publish(ctx, notify.Event{
		GuildID:  guildID,
		Kind:     notify.KindShopCreated,
		ActorID:  userID,
		Currency: cur.Name,
		Amounts:  map[string]int64{"cost": cost, "bonus": bonus},
		Detail:   name,
		At:       now,
	})

	return &CreateResult{Shop: created, Currency: *cur, Cost: cost, Bonus: bonus}, nil
}

// ListByUser возвращает комерции пользователя.
func (s *Service) ListByUser(ctx context.Context, guildID, userID string) ([]*Shop, error) {
	return s.store.ListByUser(ctx, guildID, userID)
}

// OwnerIDs возвращает уникальных владельцев комерций сервера —
// для сбора налога с комерсантов.
func (s *Service) OwnerIDs(ctx context.Context, guildID string) ([]string, error) {
	shops, err := s.store.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var owners []string
	for _, sh := range shops {
		if !seen[sh.UserID] {
			seen[sh.UserID] = true
			owners = append(owners, sh.UserID)
		}
	}
	return owners, nil
}

// PayoutSummary — итог еженедельного обхода выплат.
type PayoutSummary struct {
	Paid    int // Комерций, получивших выплату
	Skipped int // Пропущено (нет кошелька владельца или валюты на сервере)
	Failed  int // Ошибки по отдельным комерциям
}

// ProcessPayouts выполняет еженедельный обход ВСЕХ комерций всех
// серверов. На каждую комерцию бросается d20, множитель по таблице
// PayoutMultiplier, налог 10% с округлением вниз:
//
//	gross = floor(base * mult);  tax = gross/10;  net = gross - tax
//
// Нетто уходит владельцу, налог — казне, обе суммы в основной валюте
// сервера; после — отметка last_payout и событие в канал логов.
// Комерция пропускается без мутаций, если у владельца нет кошелька
// или на сервере нет валют. Ошибка по одной комерции не прерывает
// обход остальных (политика continue-on-error, как у сбора налогов).
func (s *Service) ProcessPayouts(ctx context.Context) (*PayoutSummary, error) {
	shops, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := &PayoutSummary{}
	for _, sh := range shops {
		if err := s.payoutOne(ctx, sh, summary); err != nil {
			summary.Failed++
			log.WithError(err).WithFields(log.Fields{
				"guild": sh.GuildID,
				"shop":  sh.ID,
			}).Error("Ошибка выплаты комерции")
		}
	}

	log.WithFields(log.Fields{
		"paid":    summary.Paid,
		"skipped": summary.Skipped,
		"failed":  summary.Failed,
	}).Info("Еженедельные выплаты комерциям завершены")
	return summary, nil
}

func (s *Service) payoutOne(ctx context.Context, sh *Shop, summary *PayoutSummary) error {
	base, err := BaseIncome(sh.Size)
	if err != nil {
		return err
	}

	// Нет кошелька владельца — комерция спит до его появления
	owner, err := s.wallets.Get(ctx, sh.GuildID, sh.UserID)
	if err != nil {
		return err
	}
	if owner == nil {
		summary.Skipped++
		return nil
	}

	cur, err := s.currencies.Primary(ctx, sh.GuildID)
	if errors.Is(err, common.ErrNoCurrencyConfigured) {
		summary.Skipped++
		return nil
	}
	if err != nil {
		return err
	}

	roll := 1 + s.randInt(20)
	gross := int64(float64(base) * PayoutMultiplier(roll))
	tax := gross / 10
	net := gross - tax

	if _, err := s.wallets.Credit(ctx, sh.GuildID, sh.UserID, cur.Name, net, wallet.TxTypeShopIncome); err != nil {
		return err
	}
	if tax > 0 {
		if _, err := s.wallets.Credit(ctx, sh.GuildID, s.wallets.TreasuryID(), cur.Name, tax, wallet.TxTypeShopTax); err != nil {
			return err
		}
	}

	now := s.now()
	if err := s.store.SetLastPayout(ctx, sh.ID, now); err != nil {
		return err
	}

	s.sink.Publish(ctx, notify.Event{
		GuildID:  sh.GuildID,
		Kind:     notify.KindShopPayout,
		ActorID:  sh.UserID,
		Currency: cur.Name,
		Amounts: map[string]int64{
			"gross": gross,
			"tax":   tax,
			"net":   net,
			"roll":  int64(roll),
			"base":  base,
		},
		Detail: sh.Name,
		At:     now,
	})

	summary.Paid++
	return nil
}
