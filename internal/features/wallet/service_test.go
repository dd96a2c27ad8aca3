package wallet

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dndbot/internal/common"
)

const treasury = "bot-1"

// memStore — in-memory реализация Store для тестов сервиса.
type memStore struct {
	wallets map[string]*Wallet
	txs     []*Transaction
	nextID  int64

	// failFor заставляет Debit падать для конкретного пользователя
	failFor map[string]error
}

func newMemStore() *memStore {
	return &memStore{wallets: map[string]*Wallet{}, failFor: map[string]error{}}
}

func key(guildID, userID string) string { return guildID + "|" + userID }

func (m *memStore) GetOrCreate(_ context.Context, guildID, userID string) (*Wallet, error) {
	if w, ok := m.wallets[key(guildID, userID)]; ok {
		return w, nil
	}
	w := &Wallet{GuildID: guildID, UserID: userID, Balances: map[string]int64{}}
	m.wallets[key(guildID, userID)] = w
	return w, nil
}

func (m *memStore) Get(_ context.Context, guildID, userID string) (*Wallet, error) {
	return m.wallets[key(guildID, userID)], nil
}

func (m *memStore) ListByGuild(_ context.Context, guildID string) ([]*Wallet, error) {
	var out []*Wallet
	for _, w := range m.wallets {
		if w.GuildID == guildID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *memStore) record(guildID string, from, to *string, currencyName string, amount int64, txType string) *Transaction {
	m.nextID++
	t := &Transaction{
		ID: m.nextID, GuildID: guildID, FromUserID: from, ToUserID: to,
		CurrencyName: currencyName, Amount: amount, Type: txType, CreatedAt: time.Now(),
	}
	m.txs = append(m.txs, t)
	return t
}

func (m *memStore) Credit(ctx context.Context, guildID, userID, currencyName string, amount int64, txType string) (*Transaction, error) {
	w, _ := m.GetOrCreate(ctx, guildID, userID)
	w.Balances[currencyName] += amount
	return m.record(guildID, nil, &userID, currencyName, amount, txType), nil
}

func (m *memStore) Debit(_ context.Context, guildID, userID, currencyName string, amount int64, txType string) (*Transaction, error) {
	if err, ok := m.failFor[userID]; ok {
		return nil, err
	}
	w, ok := m.wallets[key(guildID, userID)]
	if !ok {
		return nil, common.ErrNotFound
	}
	if w.Balances[currencyName] < amount {
		return nil, common.ErrInsufficientFunds
	}
	w.Balances[currencyName] -= amount
	return m.record(guildID, &userID, nil, currencyName, amount, txType), nil
}

func (m *memStore) Transfer(ctx context.Context, guildID, fromUserID, toUserID, currencyName string, amount int64, txType string) (*Transaction, error) {
	from, _ := m.GetOrCreate(ctx, guildID, fromUserID)
	to, _ := m.GetOrCreate(ctx, guildID, toUserID)
	if from.Balances[currencyName] < amount {
		return nil, common.ErrInsufficientFunds
	}
	from.Balances[currencyName] -= amount
	to.Balances[currencyName] += amount
	return m.record(guildID, &fromUserID, &toUserID, currencyName, amount, txType), nil
}

func (m *memStore) SetLastWorked(_ context.Context, guildID, userID string, t time.Time) error {
	m.wallets[key(guildID, userID)].LastWorked = &t
	return nil
}

func (m *memStore) SetLastStolen(_ context.Context, guildID, userID string, t time.Time) error {
	m.wallets[key(guildID, userID)].LastStolen = &t
	return nil
}

func (m *memStore) ListTransactions(_ context.Context, guildID, userID string, limit int) ([]*Transaction, error) {
	var out []*Transaction
	for i := len(m.txs) - 1; i >= 0 && len(out) < limit; i-- {
		t := m.txs[i]
		if t.GuildID != guildID {
			continue
		}
		if (t.FromUserID != nil && *t.FromUserID == userID) || (t.ToUserID != nil && *t.ToUserID == userID) {
			out = append(out, t)
		}
	}
	return out, nil
}

// memRegistry — реестр валют для тестов.
type memRegistry struct{ names map[string]bool }

func (m *memRegistry) Exists(_ context.Context, _, name string) (bool, error) {
	return m.names[name], nil
}

func newService(store *memStore) *Service {
	return NewService(store, &memRegistry{names: map[string]bool{"Oro": true, "Plata": true}}, treasury)
}

func TestTransfer_Conservation(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newService(store)

	store.Credit(ctx, "g1", "alice", "Oro", 100, TxTypeWork)
	store.Credit(ctx, "g1", "bob", "Oro", 30, TxTypeWork)

	_, err := svc.Transfer(ctx, "g1", "alice", "bob", "Oro", 40, TxTypeTransfer)
	require.NoError(t, err)

	alice, _ := store.Get(ctx, "g1", "alice")
	bob, _ := store.Get(ctx, "g1", "bob")
	assert.Equal(t, int64(60), alice.Balance("Oro"))
	assert.Equal(t, int64(70), bob.Balance("Oro"))
	// Общая масса валюты не изменилась
	assert.Equal(t, int64(130), alice.Balance("Oro")+bob.Balance("Oro"))
}

func TestTransfer_Validation(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newService(store)

	store.Credit(ctx, "g1", "alice", "Oro", 100, TxTypeWork)

	tests := []struct {
		name     string
		from, to string
		currency string
		amount   int64
		wantErr  error
	}{
		{"перевод себе", "alice", "alice", "Oro", 10, common.ErrSelfTransfer},
		{"нулевая сумма", "alice", "bob", "Oro", 0, common.ErrInvalidAmount},
		{"отрицательная сумма", "alice", "bob", "Oro", -5, common.ErrInvalidAmount},
		{"неизвестная валюта", "alice", "bob", "Cobre", 10, common.ErrCurrencyNotFound},
		{"недостаточно средств", "alice", "bob", "Oro", 500, common.ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Transfer(ctx, "g1", tt.from, tt.to, tt.currency, tt.amount, TxTypeTransfer)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	// Ни одна неудачная попытка не изменила баланс
	alice, _ := store.Get(ctx, "g1", "alice")
	assert.Equal(t, int64(100), alice.Balance("Oro"))
}

func TestBulkTax_SkipsPoorAndTreasury(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newService(store)

	store.Credit(ctx, "g1", "rich", "Oro", 100, TxTypeWork)
	store.Credit(ctx, "g1", "poor", "Oro", 5, TxTypeWork)
	store.Credit(ctx, "g1", treasury, "Oro", 1000, TxTypeWork)

	result, err := svc.BulkTax(ctx, "g1", "Oro", 50, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Collected)
	assert.Equal(t, int64(50), result.Total)
	assert.Equal(t, 0, result.Failed)

	rich, _ := store.Get(ctx, "g1", "rich")
	poor, _ := store.Get(ctx, "g1", "poor")
	bank, _ := store.Get(ctx, "g1", treasury)
	assert.Equal(t, int64(50), rich.Balance("Oro"))
	// Бедный кошелёк не тронут — частичных списаний нет
	assert.Equal(t, int64(5), poor.Balance("Oro"))
	// Казна получила сбор одним зачислением и не платила сама себе
	assert.Equal(t, int64(1050), bank.Balance("Oro"))
}

func TestBulkTax_EligibleSubset(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newService(store)

	for _, u := range []string{"a", "b", "c"} {
		store.Credit(ctx, "g1", u, "Oro", 100, TxTypeWork)
	}

	result, err := svc.BulkTax(ctx, "g1", "Oro", 20, []string{"a", "c"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Collected)
	assert.Equal(t, int64(40), result.Total)

	b, _ := store.Get(ctx, "g1", "b")
	assert.Equal(t, int64(100), b.Balance("Oro"))
}

func TestBulkTax_ContinueOnError(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newService(store)

	store.Credit(ctx, "g1", "ok", "Oro", 100, TxTypeWork)
	store.Credit(ctx, "g1", "broken", "Oro", 100, TxTypeWork)
	store.failFor["broken"] = fmt.Errorf("соединение потеряно")

	result, err := svc.BulkTax(ctx, "g1", "Oro", 10, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Collected)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, int64(10), result.Total)
}

func TestBulkTax_InvalidAmount(t *testing.T) {
	svc := newService(newMemStore())
	_, err := svc.BulkTax(context.Background(), "g1", "Oro", 0, nil)
	require.ErrorIs(t, err, common.ErrInvalidAmount)
}
