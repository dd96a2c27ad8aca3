// Package shop — repository.go выполняет операции с таблицей shops.
package shop

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository работает с таблицей shops.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий комерций.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новую комерцию.
func (r *Repository) Create(ctx context.Context, s *Shop) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO shops (id, guild_id, user_id, name, type, size, image_url, created_at, last_payout)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, s.ID, s.GuildID, s.UserID, s.Name, s.Type, s.Size, s.ImageURL, s.CreatedAt, s.LastPayout)
	if err != nil {
		return fmt.Errorf("ошибка создания комерции: %w", err)
	}
	return nil
}

// ListByUser возвращает комерции пользователя на сервере.
func (r *Repository) ListByUser(ctx context.Context, guildID, userID string) ([]*Shop, error) {
	return r.list(ctx, `
		SELECT id, guild_id, user_id, name, type, size, image_url, created_at, last_payout
		FROM shops WHERE guild_id = $1 AND user_id = $2
		ORDER BY created_at
	`, guildID, userID)
}

// ListByGuild возвращает все комерции сервера.
func (r *Repository) ListByGuild(ctx context.Context, guildID string) ([]*Shop, error) {
	return r.list(ctx, `
		SELECT id, guild_id, user_id, name, type, size, image_url, created_at, last_payout
		FROM shops WHERE guild_id = $1
		ORDER BY created_at
	`, guildID)
}

// ListAll возвращает комерции всех серверов — для еженедельного обхода.
func (r *Repository) ListAll(ctx context.Context) ([]*Shop, error) {
	return r.list(ctx, `
		SELECT id, guild_id, user_id, name, type, size, image_url, created_at, last_payout
		FROM shops
		ORDER BY guild_id, created_at
	`)
}

// SetLastPayout ставит отметку последней выплаты.
func (r *Repository) SetLastPayout(ctx context.Context, id string, t time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE shops SET last_payout = $2 WHERE id = $1`, id, t)
	if err != nil {
		return fmt.Errorf("ошибка обновления last_payout: %w", err)
	}
	return nil
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]*Shop, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения комерций: %w", err)
	}
	defer rows.Close()

	var shops []*Shop
	for rows.Next() {
		var s Shop
		if err := rows.Scan(&s.ID, &s.GuildID, &s.UserID, &s.Name, &s.Type,
			&s.Size, &s.ImageURL, &s.CreatedAt, &s.LastPayout); err != nil {
			return nil, fmt.Errorf("ошибка сканирования комерции: %w", err)
		}
		shops = append(shops, &s)
	}
	return shops, rows.Err()
}
