// Package shop реализует комерции (лавки игроков) и еженедельные
// выплаты их владельцам. models.go описывает структуру комерции
// и таблицы доходов/стоимости по размеру.
package shop

import (
	"time"

	"dndbot/internal/common"
)

// Размеры комерций. Приходят прямо из слэш-команды.
const (
	SizeChico   = "chico"
	SizeMediano = "mediano"
	SizeGrande  = "grande"
)

// MaxShopsPerUser — лимит комерций на пользователя в пределах сервера.
const MaxShopsPerUser = 3

// Shop — комерция игрока. Идентичность — (GuildID, ID), где ID
// генерируется один раз при создании и больше не пересчитывается.
type Shop struct {
	ID         string     `db:"id"` // UUID
	GuildID    string     `db:"guild_id"`
	UserID     string     `db:"user_id"`
	Name       string     `db:"name"`
	Type       string     `db:"type"`
	Size       string     `db:"size"`
	ImageURL   string     `db:"image_url"`
	CreatedAt  time.Time  `db:"created_at"`
	LastPayout time.Time  `db:"last_payout"`
}

// Стоимость создания по размеру.
var creationCosts = map[string]int64{
	SizeChico:   2000,
	SizeMediano: 4000,
	SizeGrande:  6000,
}

// Базовый еженедельный доход (он же разовый стартовый бонус).
var baseIncomes = map[string]int64{
	SizeChico:   250,
	SizeMediano: 500,
	SizeGrande:  750,
}

// CreationCost возвращает стоимость создания комерции размера size.
func CreationCost(size string) (int64, error) {
	cost, ok := creationCosts[size]
	if !ok {
		return 0, common.ErrNotFound
	}
	return cost, nil
}

// BaseIncome возвращает базовый еженедельный доход размера size.
func BaseIncome(size string) (int64, error) {
	income, ok := baseIncomes[size]
	if !ok {
		return 0, common.ErrNotFound
	}
	return income, nil
}

// PayoutMultiplier возвращает множитель дохода по броску d20:
// 1–5 → 0.5, 6–10 → 1.0, 11–15 → 1.25, 16–19 → 1.5, 20 → 2.0.
func PayoutMultiplier(roll int) float64 {
	switch {
	case roll <= 5:
		return 0.5
	case roll <= 10:
		return 1.0
	case roll <= 15:
		return 1.25
	case roll <= 19:
		return 1.5
	default:
		return 2.0
	}
}

// RollDescription — пояснение броска для канала логов.
func RollDescription(roll int) string {
	switch {
	case roll <= 5:
		return "¡Mala suerte! Solo 50% de las ganancias base"
	case roll <= 10:
		return "Día normal, ganancias base"
	case roll <= 15:
		return "¡Buen día! +25% de ganancias"
	case roll <= 19:
		return "¡Excelente día! +50% de ganancias"
	default:
		return "¡CRÍTICO! Doble de ganancias"
	}
}
