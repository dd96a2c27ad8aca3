package currency

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dndbot/internal/common"
)

// memStore — in-memory реестр валют для тестов.
type memStore struct {
	list map[string][]Currency // guildID → валюты в порядке создания
}

func newMemStore() *memStore { return &memStore{list: map[string][]Currency{}} }

func (m *memStore) Create(_ context.Context, guildID, name, symbol string) (bool, error) {
	for _, c := range m.list[guildID] {
		if c.Name == name {
			return false, nil
		}
	}
	m.list[guildID] = append(m.list[guildID], Currency{GuildID: guildID, Name: name, Symbol: symbol})
	return true, nil
}

func (m *memStore) Delete(_ context.Context, guildID, name string) (bool, error) {
	for i, c := range m.list[guildID] {
		if c.Name == name {
			m.list[guildID] = append(m.list[guildID][:i], m.list[guildID][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) List(_ context.Context, guildID string) ([]Currency, error) {
	return m.list[guildID], nil
}

func TestCreateAndDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStore())

	require.NoError(t, svc.Create(ctx, "g1", "Oro", "🪙"))

	// Дубликат отклоняется, старый символ сохраняется
	err := svc.Create(ctx, "g1", "Oro", "💰")
	require.ErrorIs(t, err, common.ErrCurrencyExists)

	cur, err := svc.Get(ctx, "g1", "Oro")
	require.NoError(t, err)
	assert.Equal(t, "🪙", cur.Symbol)

	// Та же валюта на другом сервере — независимая
	require.NoError(t, svc.Create(ctx, "g2", "Oro", "💰"))
}

func TestCreate_EmptyFields(t *testing.T) {
	svc := NewService(newMemStore())
	require.Error(t, svc.Create(context.Background(), "g1", "", "🪙"))
	require.Error(t, svc.Create(context.Background(), "g1", "Oro", ""))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStore())

	require.NoError(t, svc.Create(ctx, "g1", "Oro", "🪙"))
	require.NoError(t, svc.Delete(ctx, "g1", "Oro"))

	err := svc.Delete(ctx, "g1", "Oro")
	require.ErrorIs(t, err, common.ErrCurrencyNotFound)

	exists, err := svc.Exists(ctx, "g1", "Oro")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPrimary(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStore())

	_, err := svc.Primary(ctx, "g1")
	require.ErrorIs(t, err, common.ErrNoCurrencyConfigured)

	require.NoError(t, svc.Create(ctx, "g1", "Oro", "🪙"))
	require.NoError(t, svc.Create(ctx, "g1", "Plata", "🥈"))

	// Основная — первая зарегистрированная
	cur, err := svc.Primary(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "Oro", cur.Name)
}
