// Package settings хранит настройки серверов.
package settings

// GuildSettings — настройки одного сервера.
type GuildSettings struct {
	GuildID              string `db:"guild_id"`
	TransactionLogChanID string `db:"transaction_log_channel"` // Пусто — канал не настроен
}
