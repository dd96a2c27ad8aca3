// Package character — repository.go выполняет операции с таблицей characters.
package character

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository работает с таблицей characters.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий персонажей.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create сохраняет нового персонажа.
func (r *Repository) Create(ctx context.Context, c *Character) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO characters (id, guild_id, user_id, name, level, class, race, rank, image_url, n20_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, c.ID, c.GuildID, c.UserID, c.Name, c.Level, c.Class, c.Race, c.Rank, c.ImageURL, c.N20URL, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка создания персонажа: %w", err)
	}
	return nil
}

// ListByUser возвращает персонажей пользователя на сервере.
func (r *Repository) ListByUser(ctx context.Context, guildID, userID string) ([]*Character, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, guild_id, user_id, name, level, class, race, rank, image_url, n20_url, created_at
		FROM characters
		WHERE guild_id = $1 AND user_id = $2
		ORDER BY created_at
	`, guildID, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения персонажей: %w", err)
	}
	defer rows.Close()

	var chars []*Character
	for rows.Next() {
		var c Character
		if err := rows.Scan(&c.ID, &c.GuildID, &c.UserID, &c.Name, &c.Level,
			&c.Class, &c.Race, &c.Rank, &c.ImageURL, &c.N20URL, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования персонажа: %w", err)
		}
		chars = append(chars, &c)
	}
	return chars, rows.Err()
}

// Delete удаляет персонажа владельца. Возвращает false, если персонаж
// не найден или принадлежит другому пользователю.
func (r *Repository) Delete(ctx context.Context, guildID, userID, id string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM characters WHERE guild_id = $1 AND user_id = $2 AND id = $3`,
		guildID, userID, id,
	)
	if err != nil {
		return false, fmt.Errorf("ошибка удаления персонажа: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
