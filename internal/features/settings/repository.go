// Package settings — repository.go выполняет операции с таблицей guild_settings.
package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository работает с таблицей guild_settings.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий настроек.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Get возвращает настройки сервера. Если записи нет, возвращаются
// настройки по умолчанию.
func (r *Repository) Get(ctx context.Context, guildID string) (*GuildSettings, error) {
	var s GuildSettings
	err := r.db.QueryRow(ctx,
		`SELECT guild_id, transaction_log_channel FROM guild_settings WHERE guild_id = $1`,
		guildID,
	).Scan(&s.GuildID, &s.TransactionLogChanID)
	if errors.Is(err, pgx.ErrNoRows) {
		return &GuildSettings{GuildID: guildID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения настроек: %w", err)
	}
	return &s, nil
}

// SetLogChannel сохраняет канал логов транзакций (upsert).
func (r *Repository) SetLogChannel(ctx context.Context, guildID, channelID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO guild_settings (guild_id, transaction_log_channel)
		VALUES ($1, $2)
		ON CONFLICT (guild_id) DO UPDATE SET transaction_log_channel = $2
	`, guildID, channelID)
	if err != nil {
		return fmt.Errorf("ошибка сохранения канала логов: %w", err)
	}
	return nil
}
