// Package debt реализует займы и долги.
// models.go описывает структуру долга.
//
// Долг — самостоятельная запись с ключом (guild, user, currency),
// а не синтетические ключи debt_* внутри карты балансов: так валюта
// с буквальным именем "debt_Oro" не ломает бухгалтерию.
package debt

import "time"

// Debt — непогашенный займ пользователя в одной валюте.
// На пару (пользователь, валюта) может существовать максимум один займ.
type Debt struct {
	ID           int64     `db:"id"`
	GuildID      string    `db:"guild_id"`
	UserID       string    `db:"user_id"`
	CurrencyName string    `db:"currency_name"`
	Principal    int64     `db:"principal"` // Остаток основного долга
	LoanDate     time.Time `db:"loan_date"` // Дата выдачи займа
	// Penalized выставляется, когда штраф за просрочку уже
	// материализован в Principal — второй раз штраф не применяется.
	Penalized bool `db:"penalized"`
}

// LatePenaltyAfter — срок, после которого долг считается просроченным.
// 10.5 суток.
const LatePenaltyAfter = time.Duration(10.5 * 24 * float64(time.Hour))

// Effective возвращает эффективный остаток долга на момент now:
// просроченный и ещё не оштрафованный долг получает разовую надбавку
// 50% (floor(principal * 1.5)). Функция чистая — ничего не сохраняет;
// штраф материализуется только при реальном погашении.
func (d *Debt) Effective(now time.Time) int64 {
	if d.Penalized || now.Sub(d.LoanDate) <= LatePenaltyAfter {
		return d.Principal
	}
	return d.Principal * 3 / 2
}

// Overdue сообщает, просрочен ли долг на момент now.
func (d *Debt) Overdue(now time.Time) bool {
	return now.Sub(d.LoanDate) > LatePenaltyAfter
}
