// Package actions реализует таймерные действия экономики:
// /trabajar (доход) и /robar (PvP-кража). Оба действия ограничены
// кулдауном в 3 дня, отметки кулдаунов живут на кошельке.
package actions

import (
	"context"
	"math/rand"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"dndbot/internal/common"
	"dndbot/internal/config"
	"dndbot/internal/features/currency"
	"dndbot/internal/features/wallet"
)

// ledger — та часть сервиса кошельков, которая нужна таймерным действиям.
type ledger interface {
	GetOrCreate(ctx context.Context, guildID, userID string) (*wallet.Wallet, error)
	Credit(ctx context.Context, guildID, userID, currencyName string, amount int64, txType string) (*wallet.Transaction, error)
	Transfer(ctx context.Context, guildID, fromUserID, toUserID, currencyName string, amount int64, txType string) (*wallet.Transaction, error)
	SetLastWorked(ctx context.Context, guildID, userID string, t time.Time) error
	SetLastStolen(ctx context.Context, guildID, userID string, t time.Time) error
	TreasuryID() string
}

// registry — та часть реестра валют, которая нужна таймерным действиям.
type registry interface {
	List(ctx context.Context, guildID string) ([]currency.Currency, error)
}

// Service реализует работу и кражу.
type Service struct {
	wallets    ledger
	currencies registry
	cfg        *config.Config

	// Инъекция случайности и времени для детерминированных тестов.
	// randInt(n) возвращает равномерное число в [0, n); randInt(0) == 0.
	randInt func(n int) int
	now     func() time.Time
}

// NewService создаёт сервис таймерных действий.
func NewService(wallets ledger, currencies registry, cfg *config.Config) *Service {
	return &Service{
		wallets:    wallets,
		currencies: currencies,
		cfg:        cfg,
		randInt: func(n int) int {
			if n <= 0 {
				return 0
			}
			return rand.Intn(n)
		},
		now: time.Now,
	}
}

// WorkResult — разбивка награды за работу.
// Net — справочная величина: в журнале остаются две записи,
// начисление брутто и списание налога.
type WorkResult struct {
	Currency   currency.Currency
	Gross      int64
	Tax        int64
	Net        int64
	NewBalance int64
}

// Work выполняет действие «работа»:
//   - кулдаун 3 дня от прошлой работы (отсутствие отметки — можно сразу);
//   - валюта выбирается равномерно из реестра сервера;
//   - брутто-награда равномерна в [WorkRewardMin, WorkRewardMax];
//   - налог 10% (с округлением вниз) уходит в казну.
//
// Последовательность записей в журнале принципиальна: сначала
// начисляется ПОЛНОЕ брутто, затем налог списывается обычным переводом
// работник → казна. Итоговый баланс работника — брутто минус налог.
func (s *Service) Work(ctx context.Context, guildID, userID string) (*WorkResult, error) {
	currencies, err := s.currencies.List(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if len(currencies) == 0 {
		return nil, common.ErrNoCurrencyConfigured
	}

	w, err := s.wallets.GetOrCreate(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if w.LastWorked != nil {
		if elapsed := now.Sub(*w.LastWorked); elapsed < s.cfg.WorkCooldown {
			return nil, common.NewCooldownError(s.cfg.WorkCooldown - elapsed)
		}
	}

	cur := currencies[s.randInt(len(currencies))]
	span := int(s.cfg.WorkRewardMax - s.cfg.WorkRewardMin + 1)
	gross := s.cfg.WorkRewardMin + int64(s.randInt(span))
	tax := gross / 10
	net := gross - tax

	if _, err := s.wallets.Credit(ctx, guildID, userID, cur.Name, gross, wallet.TxTypeWork); err != nil {
		return nil, err
	}
	if tax > 0 {
		if _, err := s.wallets.Transfer(ctx, guildID, userID, s.wallets.TreasuryID(), cur.Name, tax, wallet.TxTypeWorkTax); err != nil {
			return nil, err
		}
	}
	if err := s.wallets.SetLastWorked(ctx, guildID, userID, now); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"guild":    guildID,
		"user":     userID,
		"currency": cur.Name,
		"gross":    gross,
		"tax":      tax,
	}).Info("Работа выполнена")

	return &WorkResult{
		Currency:   cur,
		Gross:      gross,
		Tax:        tax,
		Net:        net,
		NewBalance: w.Balance(cur.Name) + net,
	}, nil
}

// StealResult — итог кражи.
type StealResult struct {
	Currency string
	Amount   int64
}

// Steal выполняет кражу у другого пользователя:
//   - нельзя красть у себя (ErrInvalidTarget);
//   - кулдаун 3 дня от прошлой кражи вора;
//   - у жертвы должна быть хотя бы одна валюта с положительным
//     балансом (иначе ErrNothingToSteal);
//   - валюта выбирается равномерно среди положительных балансов жертвы;
//   - украденное = 1 + randInt(min(10, баланс жертвы / 2)), то есть
//     не больше 10 единиц и не больше половины баланса, минимум 1.
//
// Кулдаун жертвы не трогается: быть обокраденным ничего не стоит.
func (s *Service) Steal(ctx context.Context, guildID, thiefID, victimID string) (*StealResult, error) {
	if thiefID == victimID {
		return nil, common.ErrInvalidTarget
	}

	thief, err := s.wallets.GetOrCreate(ctx, guildID, thiefID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if thief.LastStolen != nil {
		if elapsed := now.Sub(*thief.LastStolen); elapsed < s.cfg.StealCooldown {
			return nil, common.NewCooldownError(s.cfg.StealCooldown - elapsed)
		}
	}

	victim, err := s.wallets.GetOrCreate(ctx, guildID, victimID)
	if err != nil {
		return nil, err
	}

	var held []string
	for name, balance := range victim.Balances {
		if balance > 0 {
			held = append(held, name)
		}
	}
	if len(held) == 0 {
		return nil, common.ErrNothingToSteal
	}
	// Порядок обхода map недетерминирован — для воспроизводимости
	// в тестах выбираем из отсортированного списка.
	sort.Strings(held)

	curName := held[s.randInt(len(held))]
	victimBalance := victim.Balance(curName)

	limit := victimBalance / 2
	if limit > 10 {
		limit = 10
	}
	amount := int64(1 + s.randInt(int(limit)))

	if _, err := s.wallets.Transfer(ctx, guildID, victimID, thiefID, curName, amount, wallet.TxTypeSteal); err != nil {
		return nil, err
	}
	if err := s.wallets.SetLastStolen(ctx, guildID, thiefID, now); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"guild":    guildID,
		"thief":    thiefID,
		"victim":   victimID,
		"currency": curName,
		"amount":   amount,
	}).Info("Кража выполнена")

	return &StealResult{Currency: curName, Amount: amount}, nil
}
