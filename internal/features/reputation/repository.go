// Package reputation — repository.go выполняет операции с таблицей reputation.
package reputation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository работает с таблицей reputation.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий репутации.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Add прибавляет delta очков (может быть отрицательной) и возвращает
// новое значение. Итог никогда не опускается ниже нуля.
func (r *Repository) Add(ctx context.Context, guildID, userID string, delta int64) (int64, error) {
	var points int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO reputation (guild_id, user_id, points)
		VALUES ($1, $2, GREATEST(0, $3::bigint))
		ON CONFLICT (guild_id, user_id)
		DO UPDATE SET points = GREATEST(0, reputation.points + $3)
		RETURNING points
	`, guildID, userID, delta).Scan(&points)
	if err != nil {
		return 0, fmt.Errorf("ошибка изменения репутации: %w", err)
	}
	return points, nil
}

// Get возвращает очки пользователя (0, если записи нет).
func (r *Repository) Get(ctx context.Context, guildID, userID string) (int64, error) {
	var points int64
	err := r.db.QueryRow(ctx,
		`SELECT points FROM reputation WHERE guild_id = $1 AND user_id = $2`,
		guildID, userID,
	).Scan(&points)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка получения репутации: %w", err)
	}
	return points, nil
}

// Ranking возвращает топ limit пользователей по убыванию очков.
// При равенстве очков порядок стабилен по user_id.
func (r *Repository) Ranking(ctx context.Context, guildID string, limit int) ([]*Entry, error) {
	rows, err := r.db.Query(ctx, `
		SELECT guild_id, user_id, points
		FROM reputation
		WHERE guild_id = $1
		ORDER BY points DESC, user_id ASC
		LIMIT $2
	`, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения рейтинга: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.GuildID, &e.UserID, &e.Points); err != nil {
			return nil, fmt.Errorf("ошибка сканирования репутации: %w", err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
