// Package currency — repository.go выполняет операции с таблицей currencies.
package currency

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository работает с таблицей currencies.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий валют.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Create добавляет валюту. Возвращает false, если валюта с таким
// именем уже существует на сервере (ничего не перезаписывается).
func (r *Repository) Create(ctx context.Context, guildID, name, symbol string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO currencies (guild_id, name, symbol)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id, name) DO NOTHING
	`, guildID, name, symbol)
	if err != nil {
		return false, fmt.Errorf("ошибка создания валюты: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete удаляет валюту. Возвращает true, только если строка
// действительно была удалена.
func (r *Repository) Delete(ctx context.Context, guildID, name string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM currencies WHERE guild_id = $1 AND name = $2`,
		guildID, name,
	)
	if err != nil {
		return false, fmt.Errorf("ошибка удаления валюты: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// List возвращает все валюты сервера в порядке создания.
// Первая зарегистрированная валюта считается основной: в ней
// списывается стоимость комерций и начисляются их выплаты.
func (r *Repository) List(ctx context.Context, guildID string) ([]Currency, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, guild_id, name, symbol
		FROM currencies
		WHERE guild_id = $1
		ORDER BY id
	`, guildID)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения валют: %w", err)
	}
	defer rows.Close()

	var list []Currency
	for rows.Next() {
		var c Currency
		if err := rows.Scan(&c.ID, &c.GuildID, &c.Name, &c.Symbol); err != nil {
			return nil, fmt.Errorf("ошибка сканирования валюты: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
