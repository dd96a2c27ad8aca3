// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: испанская плюрализация, форматирование сумм и времени.
package common

import (
	"fmt"
	"time"
)

// FormatAmount форматирует сумму с символом валюты.
// Пример: FormatAmount(150, "o") → "150 o"
func FormatAmount(amount int64, symbol string) string {
	return fmt.Sprintf("%d %s", amount, symbol)
}

// PluralizeDias возвращает правильную форму слова «día» для числа n.
// В испанском всё просто: 1 → "día", остальное → "días".
func PluralizeDias(n int64) string {
	if n == 1 {
		return "día"
	}
	return "días"
}

// PluralizeHoras возвращает правильную форму слова «hora».
func PluralizeHoras(n int64) string {
	if n == 1 {
		return "hora"
	}
	return "horas"
}

// FormatRemaining форматирует остаток кулдауна в целых днях и часах
// для сообщения пользователю.
//
// Примеры:
//
//	FormatRemaining(50*time.Hour) → "2 días y 2 horas"
//	FormatRemaining(3*time.Hour)  → "3 horas"
//	FormatRemaining(30*time.Minute) → "menos de 1 hora"
func FormatRemaining(d time.Duration) string {
	days := int64(d.Hours()) / 24
	hours := int64(d.Hours()) % 24

	switch {
	case days > 0 && hours > 0:
		return fmt.Sprintf("%d %s y %d %s", days, PluralizeDias(days), hours, PluralizeHoras(hours))
	case days > 0:
		return fmt.Sprintf("%d %s", days, PluralizeDias(days))
	case hours > 0:
		return fmt.Sprintf("%d %s", hours, PluralizeHoras(hours))
	default:
		return "menos de 1 hora"
	}
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04".
// Используется для отображения дат транзакций в логе.
func FormatDateTime(t time.Time) string {
	return t.Format("02.01.2006 15:04")
}
