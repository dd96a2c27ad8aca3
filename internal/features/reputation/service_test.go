package reputation

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dndbot/internal/common"
)

// memStore — in-memory хранилище репутации. Повторяет контракт
// репозитория: очки не опускаются ниже нуля.
type memStore struct {
	points map[string]int64
}

func newMemStore() *memStore { return &memStore{points: map[string]int64{}} }

func rkey(guildID, userID string) string { return guildID + "|" + userID }

func (m *memStore) Add(_ context.Context, guildID, userID string, delta int64) (int64, error) {
	k := rkey(guildID, userID)
	next := m.points[k] + delta
	if next < 0 {
		next = 0
	}
	m.points[k] = next
	return next, nil
}

func (m *memStore) Get(_ context.Context, guildID, userID string) (int64, error) {
	return m.points[rkey(guildID, userID)], nil
}

func (m *memStore) Ranking(_ context.Context, guildID string, limit int) ([]*Entry, error) {
	var out []*Entry
	for k, p := range m.points {
		if len(k) > len(guildID) && k[:len(guildID)] == guildID {
			out = append(out, &Entry{GuildID: guildID, UserID: k[len(guildID)+1:], Points: p})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Points != out[j].Points {
			return out[i].Points > out[j].Points
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func TestAddAndRemove(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStore())

	points, err := svc.Add(ctx, "g1", "user", 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), points)

	points, err = svc.Remove(ctx, "g1", "user", 3)
	require.NoError(t, err)
	assert.Equal(t, int64(2), points)
}

func TestRemove_ClampsAtZero(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStore())

	_, err := svc.Add(ctx, "g1", "user", 2)
	require.NoError(t, err)

	points, err := svc.Remove(ctx, "g1", "user", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), points)
}

func TestInvalidAmount(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStore())

	_, err := svc.Add(ctx, "g1", "user", 0)
	require.ErrorIs(t, err, common.ErrInvalidAmount)
	_, err = svc.Add(ctx, "g1", "user", -5)
	require.ErrorIs(t, err, common.ErrInvalidAmount)
	_, err = svc.Remove(ctx, "g1", "user", 0)
	require.ErrorIs(t, err, common.ErrInvalidAmount)
}

func TestRanking(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := NewService(store)

	svc.Add(ctx, "g1", "bronze", 1)
	svc.Add(ctx, "g1", "gold", 10)
	svc.Add(ctx, "g1", "silver", 5)
	svc.Add(ctx, "g2", "stranger", 100)

	ranking, err := svc.Ranking(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, ranking, 3)
	assert.Equal(t, "gold", ranking[0].UserID)
	assert.Equal(t, "silver", ranking[1].UserID)
	assert.Equal(t, "bronze", ranking[2].UserID)
}

func TestRanking_Limit(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMemStore())

	for i := 0; i < 15; i++ {
		svc.Add(ctx, "g1", string(rune('a'+i)), int64(i+1))
	}

	ranking, err := svc.Ranking(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, ranking, RankingLimit)
}
