// Package currency управляет реестром валют сервера.
// models.go описывает структуру валюты.
package currency

// Currency — именованная валюта сервера.
// Уникальна в паре (GuildID, Name); баланс на валюте не хранится.
type Currency struct {
	ID      int64  `db:"id"`
	GuildID string `db:"guild_id"`
	Name    string `db:"name"`
	Symbol  string `db:"symbol"`
}
