// Package character реализует листы персонажей игроков.
package character

import "time"

// MaxPerUser — лимит персонажей на пользователя в пределах сервера.
const MaxPerUser = 3

// Character — лист персонажа. Идентичность — (GuildID, ID), где ID
// генерируется один раз при создании.
type Character struct {
	ID        string    `db:"id"` // UUID
	GuildID   string    `db:"guild_id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	Level     int       `db:"level"`
	Class     string    `db:"class"`
	Race      string    `db:"race"`
	Rank      string    `db:"rank"`
	ImageURL  string    `db:"image_url"`
	N20URL    string    `db:"n20_url"` // Ссылка на лист на nivel20
	CreatedAt time.Time `db:"created_at"`
}
