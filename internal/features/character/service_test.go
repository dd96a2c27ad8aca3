package character

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dndbot/internal/common"
)

// memStore — in-memory хранилище персонажей для тестов.
type memStore struct {
	chars []*Character
}

func (m *memStore) Create(_ context.Context, c *Character) error {
	m.chars = append(m.chars, c)
	return nil
}

func (m *memStore) ListByUser(_ context.Context, guildID, userID string) ([]*Character, error) {
	var out []*Character
	for _, c := range m.chars {
		if c.GuildID == guildID && c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memStore) Delete(_ context.Context, guildID, userID, id string) (bool, error) {
	for i, c := range m.chars {
		if c.GuildID == guildID && c.UserID == userID && c.ID == id {
			m.chars = append(m.chars[:i], m.chars[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	svc := NewService(store)

	c, err := svc.Create(ctx, &Character{
		GuildID: "g1", UserID: "user",
		Name: "Tharion", Level: 5, Class: "Mago", Race: "Elfo", Rank: "Rango C",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.False(t, c.CreatedAt.IsZero())
}

func TestCreate_Limit(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	svc := NewService(store)

	for i := 0; i < MaxPerUser; i++ {
		_, err := svc.Create(ctx, &Character{
			GuildID: "g1", UserID: "user", Name: fmt.Sprintf("Héroe %d", i+1),
		})
		require.NoError(t, err)
	}

	_, err := svc.Create(ctx, &Character{GuildID: "g1", UserID: "user", Name: "Uno más"})
	require.ErrorIs(t, err, common.ErrCharacterLimit)

	// Лимит на пользователя, не на сервер
	_, err = svc.Create(ctx, &Character{GuildID: "g1", UserID: "other", Name: "Otro"})
	require.NoError(t, err)
}

func TestFind_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	svc := NewService(store)

	_, err := svc.Create(ctx, &Character{GuildID: "g1", UserID: "user", Name: "Tharion"})
	require.NoError(t, err)

	c, err := svc.Find(ctx, "g1", "user", "tHaRiOn")
	require.NoError(t, err)
	assert.Equal(t, "Tharion", c.Name)

	_, err = svc.Find(ctx, "g1", "user", "Desconocido")
	require.ErrorIs(t, err, common.ErrNotFound)

	// Чужого персонажа не видно
	_, err = svc.Find(ctx, "g1", "other", "Tharion")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	svc := NewService(store)

	c, err := svc.Create(ctx, &Character{GuildID: "g1", UserID: "user", Name: "Tharion"})
	require.NoError(t, err)

	// Чужой персонаж не удаляется
	err = svc.Delete(ctx, "g1", "other", c.ID)
	require.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, "g1", "user", c.ID))

	err = svc.Delete(ctx, "g1", "user", c.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}
