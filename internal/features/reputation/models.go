// Package reputation реализует очки репутации пользователей
// и рейтинг сервера.
package reputation

// Entry — запись репутации пользователя на сервере.
// Очки не бывают отрицательными.
type Entry struct {
	GuildID string `db:"guild_id"`
	UserID  string `db:"user_id"`
	Points  int64  `db:"points"`
}
