package debt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dndbot/internal/common"
	"dndbot/internal/features/wallet"
)

const treasury = "bot-1"

// memStore — in-memory хранилище долгов для тестов.
type memStore struct {
	debts  map[string]*Debt
	nextID int64
}

func newMemStore() *memStore { return &memStore{debts: map[string]*Debt{}} }

func dkey(guildID, userID, currencyName string) string {
	return guildID + "|" + userID + "|" + currencyName
}

func (m *memStore) Get(_ context.Context, guildID, userID, currencyName string) (*Debt, error) {
	return m.debts[dkey(guildID, userID, currencyName)], nil
}

func (m *memStore) ListByUser(_ context.Context, guildID, userID string) ([]*Debt, error) {
	var out []*Debt
	for _, d := range m.debts {
		if d.GuildID == guildID && d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memStore) Create(_ context.Context, guildID, userID, currencyName string, principal int64, loanDate time.Time) (bool, error) {
	k := dkey(guildID, userID, currencyName)
	if _, ok := m.debts[k]; ok {
		return false, nil
	}
	m.nextID++
	m.debts[k] = &Debt{
		ID: m.nextID, GuildID: guildID, UserID: userID,
		CurrencyName: currencyName, Principal: principal, LoanDate: loanDate,
	}
	return true, nil
}

func (m *memStore) Update(_ context.Context, id int64, principal int64, penalized bool) error {
	for _, d := range m.debts {
		if d.ID == id {
			d.Principal = principal
			d.Penalized = penalized
		}
	}
	return nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	for k, d := range m.debts {
		if d.ID == id {
			delete(m.debts, k)
		}
	}
	return nil
}

// memLedger — кошельки в памяти, достаточные для займов.
type memLedger struct{ balances map[string]int64 }

func newMemLedger() *memLedger { return &memLedger{balances: map[string]int64{}} }

func (m *memLedger) Balance(_ context.Context, guildID, userID, currencyName string) (int64, error) {
	return m.balances[dkey(guildID, userID, currencyName)], nil
}

func (m *memLedger) Credit(_ context.Context, guildID, userID, currencyName string, amount int64, _ string) (*wallet.Transaction, error) {
	m.balances[dkey(guildID, userID, currencyName)] += amount
	return &wallet.Transaction{Amount: amount}, nil
}

func (m *memLedger) Transfer(_ context.Context, guildID, fromUserID, toUserID, currencyName string, amount int64, _ string) (*wallet.Transaction, error) {
	from := dkey(guildID, fromUserID, currencyName)
	if m.balances[from] < amount {
		return nil, common.ErrInsufficientFunds
	}
	m.balances[from] -= amount
	m.balances[dkey(guildID, toUserID, currencyName)] += amount
	return &wallet.Transaction{Amount: amount}, nil
}

func (m *memLedger) TreasuryID() string { return treasury }

// memRegistry — «Oro» всегда существует.
type memRegistry struct{}

func (memRegistry) Exists(_ context.Context, _, name string) (bool, error) {
	return name == "Oro", nil
}

func newTestService(store *memStore, ledger *memLedger, now time.Time) *Service {
	svc := NewService(store, ledger, memRegistry{})
	svc.now = func() time.Time { return now }
	return svc
}

func TestBorrow(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := newMemLedger()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, ledger, now)

	d, err := svc.Borrow(ctx, "g1", "user", "Oro", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), d.Principal)
	assert.Equal(t, now, d.LoanDate)
	assert.Equal(t, int64(100), ledger.balances[dkey("g1", "user", "Oro")])

	// Второй займ по той же валюте запрещён
	_, err = svc.Borrow(ctx, "g1", "user", "Oro", 50)
	require.ErrorIs(t, err, common.ErrDebtExists)

	// Неизвестная валюта
	_, err = svc.Borrow(ctx, "g1", "user", "Cobre", 50)
	require.ErrorIs(t, err, common.ErrCurrencyNotFound)

	// Некорректная сумма
	_, err = svc.Borrow(ctx, "g1", "user", "Oro", 0)
	require.ErrorIs(t, err, common.ErrInvalidAmount)
}

func TestPayDebt_Partial(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := newMemLedger()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, ledger, now)

	_, err := svc.Borrow(ctx, "g1", "user", "Oro", 100)
	require.NoError(t, err)

	// 50 погашения + 12 комиссии (50/4 с округлением вниз) = 62
	result, err := svc.PayDebt(ctx, "g1", "user", "Oro", 50)
	require.NoError(t, err)
	assert.Equal(t, int64(50), result.Paid)
	assert.Equal(t, int64(12), result.Interest)
	assert.Equal(t, int64(62), result.TotalCharge)
	assert.Equal(t, int64(50), result.Remaining)

	assert.Equal(t, int64(38), ledger.balances[dkey("g1", "user", "Oro")])
	assert.Equal(t, int64(62), ledger.balances[dkey("g1", treasury, "Oro")])

	d, _ := store.Get(ctx, "g1", "user", "Oro")
	require.NotNil(t, d)
	assert.Equal(t, int64(50), d.Principal)
}

func TestPayDebt_FullPayoffDeletes(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := newMemLedger()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, ledger, now)

	_, err := svc.Borrow(ctx, "g1", "user", "Oro", 100)
	require.NoError(t, err)
	ledger.balances[dkey("g1", "user", "Oro")] = 200

	result, err := svc.PayDebt(ctx, "g1", "user", "Oro", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Remaining)

	d, _ := store.Get(ctx, "g1", "user", "Oro")
	assert.Nil(t, d, "погашенный долг удаляется")

	_, err = svc.PayDebt(ctx, "g1", "user", "Oro", 10)
	require.ErrorIs(t, err, common.ErrNoDebt)
}

func TestPayDebt_LatePenalty(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := newMemLedger()
	loanDate := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, ledger, loanDate)

	_, err := svc.Borrow(ctx, "g1", "user", "Oro", 100)
	require.NoError(t, err)

	// Через 11 дней долг вырос на 50%: 100 → 150
	late := loanDate.Add(11 * 24 * time.Hour)
	svc.now = func() time.Time { return late }

	effective, err := svc.Effective(ctx, "g1", "user", "Oro")
	require.NoError(t, err)
	assert.Equal(t, int64(150), effective)

	ledger.balances[dkey("g1", "user", "Oro")] = 1000

	result, err := svc.PayDebt(ctx, "g1", "user", "Oro", 50)
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.Remaining)

	// Штраф материализован: остаток зафиксирован, флаг выставлен,
	// повторной надбавки 50% не будет
	d, _ := store.Get(ctx, "g1", "user", "Oro")
	require.NotNil(t, d)
	assert.True(t, d.Penalized)
	assert.Equal(t, int64(100), d.Principal)
	assert.Equal(t, int64(100), d.Effective(late.Add(100*24*time.Hour)))
}

func TestPayDebt_PenaltyBoundary(t *testing.T) {
	loanDate := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	d := &Debt{Principal: 100, LoanDate: loanDate}

	// Ровно 10.5 дней — ещё без штрафа
	assert.Equal(t, int64(100), d.Effective(loanDate.Add(LatePenaltyAfter)))
	// Чуть позже — штраф применён
	assert.Equal(t, int64(150), d.Effective(loanDate.Add(LatePenaltyAfter+time.Second)))
}

func TestPayDebt_Overpayment(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := newMemLedger()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, ledger, now)

	_, err := svc.Borrow(ctx, "g1", "user", "Oro", 100)
	require.NoError(t, err)
	ledger.balances[dkey("g1", "user", "Oro")] = 1000

	_, err = svc.PayDebt(ctx, "g1", "user", "Oro", 101)
	require.ErrorIs(t, err, common.ErrOverpayment)
}

func TestPayDebt_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := newMemLedger()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestService(store, ledger, now)

	_, err := svc.Borrow(ctx, "g1", "user", "Oro", 100)
	require.NoError(t, err)

	// Баланс 100, но списание 100 + 25 = 125
	_, err = svc.PayDebt(ctx, "g1", "user", "Oro", 100)
	require.ErrorIs(t, err, common.ErrInsufficientFunds)

	// Неудачное погашение ничего не изменило
	assert.Equal(t, int64(100), ledger.balances[dkey("g1", "user", "Oro")])
	d, _ := store.Get(ctx, "g1", "user", "Oro")
	assert.Equal(t, int64(100), d.Principal)
}
