package actions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dndbot/internal/common"
	"dndbot/internal/config"
	"dndbot/internal/features/currency"
	"dndbot/internal/features/wallet"
)

const treasury = "bot-1"

// memLedger — минимальный in-memory кошелёк для тестов действий.
type memLedger struct {
	wallets map[string]*wallet.Wallet
}

func newMemLedger() *memLedger {
	return &memLedger{wallets: map[string]*wallet.Wallet{}}
}

func (m *memLedger) GetOrCreate(_ context.Context, guildID, userID string) (*wallet.Wallet, error) {
	k := guildID + "|" + userID
	if w, ok := m.wallets[k]; ok {
		return w, nil
	}
	w := &wallet.Wallet{GuildID: guildID, UserID: userID, Balances: map[string]int64{}}
	m.wallets[k] = w
	return w, nil
}

func (m *memLedger) Credit(ctx context.Context, guildID, userID, currencyName string, amount int64, _ string) (*wallet.Transaction, error) {
	w, _ := m.GetOrCreate(ctx, guildID, userID)
	w.Balances[currencyName] += amount
	return &wallet.Transaction{Amount: amount}, nil
}

func (m *memLedger) Transfer(ctx context.Context, guildID, fromUserID, toUserID, currencyName string, amount int64, _ string) (*wallet.Transaction, error) {
	from, _ := m.GetOrCreate(ctx, guildID, fromUserID)
	to, _ := m.GetOrCreate(ctx, guildID, toUserID)
	if from.Balances[currencyName] < amount {
		return nil, common.ErrInsufficientFunds
	}
	from.Balances[currencyName] -= amount
	to.Balances[currencyName] += amount
	return &wallet.Transaction{Amount: amount}, nil
}

func (m *memLedger) SetLastWorked(_ context.Context, guildID, userID string, t time.Time) error {
	m.wallets[guildID+"|"+userID].LastWorked = &t
	return nil
}

func (m *memLedger) SetLastStolen(_ context.Context, guildID, userID string, t time.Time) error {
	m.wallets[guildID+"|"+userID].LastStolen = &t
	return nil
}

func (m *memLedger) TreasuryID() string { return treasury }

func (m *memLedger) balance(guildID, userID, currencyName string) int64 {
	w, ok := m.wallets[guildID+"|"+userID]
	if !ok {
		return 0
	}
	return w.Balance(currencyName)
}

// memRegistry — фиксированный список валют.
type memRegistry struct{ currencies []currency.Currency }

func (m *memRegistry) List(_ context.Context, _ string) ([]currency.Currency, error) {
	return m.currencies, nil
}

func testConfig() *config.Config {
	return &config.Config{
		WorkCooldown:  72 * time.Hour,
		StealCooldown: 72 * time.Hour,
		WorkRewardMin: 10,
		WorkRewardMax: 100,
	}
}

func newTestService(ledger *memLedger, currencies ...currency.Currency) *Service {
	if len(currencies) == 0 {
		currencies = []currency.Currency{{Name: "Oro", Symbol: "🪙"}}
	}
	return NewService(ledger, &memRegistry{currencies: currencies}, testConfig())
}

func TestWork_RewardAndTax(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	svc := newTestService(ledger)

	// randInt вызывается дважды: выбор валюты (1 вариант → 0)
	// и награда. 90 по сетке [10, 100] даёт брутто 100.
	calls := 0
	svc.randInt = func(n int) int {
		calls++
		if calls == 1 {
			return 0
		}
		return 90
	}

	result, err := svc.Work(ctx, "g1", "worker")
	require.NoError(t, err)

	assert.Equal(t, int64(100), result.Gross)
	assert.Equal(t, int64(10), result.Tax)
	assert.Equal(t, int64(90), result.Net)
	assert.Equal(t, int64(90), result.NewBalance)

	assert.Equal(t, int64(90), ledger.balance("g1", "worker", "Oro"))
	assert.Equal(t, int64(10), ledger.balance("g1", treasury, "Oro"))

	w, _ := ledger.GetOrCreate(ctx, "g1", "worker")
	require.NotNil(t, w.LastWorked)
}

func TestWork_Cooldown(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	svc := newTestService(ledger)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	worked := base.Add(-24 * time.Hour)
	w, _ := ledger.GetOrCreate(ctx, "g1", "worker")
	w.LastWorked = &worked

	svc.now = func() time.Time { return base }

	_, err := svc.Work(ctx, "g1", "worker")
	var cooldown *common.CooldownError
	require.ErrorAs(t, err, &cooldown)
	assert.Equal(t, 48*time.Hour, cooldown.Remaining)

	// Ровно через 3 дня работа снова доступна
	svc.now = func() time.Time { return worked.Add(72 * time.Hour) }
	_, err = svc.Work(ctx, "g1", "worker")
	require.NoError(t, err)
}

func TestWork_NoCurrencyConfigured(t *testing.T) {
	svc := NewService(newMemLedger(), &memRegistry{}, testConfig())
	_, err := svc.Work(context.Background(), "g1", "worker")
	require.ErrorIs(t, err, common.ErrNoCurrencyConfigured)
}

func TestWork_RewardBounds(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		roll      int
		wantGross int64
	}{
		{"минимальная награда", 0, 10},
		{"максимальная награда", 90, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newMemLedger()
			svc := newTestService(ledger)
			calls := 0
			svc.randInt = func(n int) int {
				calls++
				if calls == 1 {
					return 0
				}
				return tt.roll
			}

			result, err := svc.Work(ctx, "g1", "worker")
			require.NoError(t, err)
			assert.Equal(t, tt.wantGross, result.Gross)
		})
	}
}

func TestSteal_Basic(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	svc := newTestService(ledger)

	ledger.Credit(ctx, "g1", "victim", "Oro", 100, wallet.TxTypeWork)

	// limit = min(10, 100/2) = 10; 1 + 9 = 10
	svc.randInt = func(n int) int { return n - 1 }

	result, err := svc.Steal(ctx, "g1", "thief", "victim")
	require.NoError(t, err)
	assert.Equal(t, "Oro", result.Currency)
	assert.Equal(t, int64(10), result.Amount)

	assert.Equal(t, int64(10), ledger.balance("g1", "thief", "Oro"))
	assert.Equal(t, int64(90), ledger.balance("g1", "victim", "Oro"))

	thief, _ := ledger.GetOrCreate(ctx, "g1", "thief")
	require.NotNil(t, thief.LastStolen)
	victim, _ := ledger.GetOrCreate(ctx, "g1", "victim")
	assert.Nil(t, victim.LastStolen, "кулдаун жертвы не трогается")
}

func TestSteal_LimitHalfBalance(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	svc := newTestService(ledger)

	// Баланс 6 → limit = 3, максимум украденного 1 + 2 = 3
	ledger.Credit(ctx, "g1", "victim", "Oro", 6, wallet.TxTypeWork)
	svc.randInt = func(n int) int { return n - 1 }

	result, err := svc.Steal(ctx, "g1", "thief", "victim")
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Amount)
}

func TestSteal_MinimumOne(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	svc := newTestService(ledger)

	// Баланс 1 → limit = 0, randInt(0) = 0, украдено ровно 1
	ledger.Credit(ctx, "g1", "victim", "Oro", 1, wallet.TxTypeWork)

	result, err := svc.Steal(ctx, "g1", "thief", "victim")
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Amount)
	assert.Equal(t, int64(0), ledger.balance("g1", "victim", "Oro"))
}

func TestSteal_SelfTarget(t *testing.T) {
	svc := newTestService(newMemLedger())
	_, err := svc.Steal(context.Background(), "g1", "thief", "thief")
	require.ErrorIs(t, err, common.ErrInvalidTarget)
}

func TestSteal_NothingToSteal(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	svc := newTestService(ledger)

	ledger.GetOrCreate(ctx, "g1", "victim")

	_, err := svc.Steal(ctx, "g1", "thief", "victim")
	require.ErrorIs(t, err, common.ErrNothingToSteal)
}

func TestSteal_Cooldown(t *testing.T) {
	ctx := context.Background()
	ledger := newMemLedger()
	svc := newTestService(ledger)

	ledger.Credit(ctx, "g1", "victim", "Oro", 100, wallet.TxTypeWork)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	stolen := base.Add(-time.Hour)
	thief, _ := ledger.GetOrCreate(ctx, "g1", "thief")
	thief.LastStolen = &stolen

	svc.now = func() time.Time { return base }

	_, err := svc.Steal(ctx, "g1", "thief", "victim")
	var cooldown *common.CooldownError
	require.ErrorAs(t, err, &cooldown)
	assert.Equal(t, 71*time.Hour, cooldown.Remaining)
}
