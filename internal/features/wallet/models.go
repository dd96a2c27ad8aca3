// Package wallet управляет кошельками пользователей и журналом транзакций.
// models.go описывает структуры кошелька и транзакции.
package wallet

import "time"

// Wallet — кошелёк пользователя на конкретном сервере.
// Создаётся лениво при первом обращении. Balances — разреженная карта
// «имя валюты → количество»; отсутствие ключа означает 0.
// Инвариант: каждый баланс ≥ 0 после любой операции.
type Wallet struct {
	ID         int64             `db:"id"`
	GuildID    string            `db:"guild_id"`
	UserID     string            `db:"user_id"`
	Balances   map[string]int64  `db:"balances"`
	LastWorked *time.Time        `db:"last_worked"` // Кулдаун /trabajar
	LastStolen *time.Time        `db:"last_stolen"` // Кулдаун /robar
}

// Balance возвращает баланс валюты; отсутствующий ключ ≡ 0.
func (w *Wallet) Balance(currencyName string) int64 {
	return w.Balances[currencyName]
}

// Transaction — запись журнала о завершённом движении валюты.
// Журнал append-only: записи никогда не изменяются и не удаляются.
// NULL в FromUserID означает системную эмиссию (работа, займ, выплата
// комерции), NULL в ToUserID — системное списание (налог при сборе).
type Transaction struct {
	ID           int64     `db:"id"`
	GuildID      string    `db:"guild_id"`
	FromUserID   *string   `db:"from_user_id"`
	ToUserID     *string   `db:"to_user_id"`
	CurrencyName string    `db:"currency_name"`
	Amount       int64     `db:"amount"` // Всегда положительная
	Type         string    `db:"tx_type"`
	CreatedAt    time.Time `db:"created_at"`
}

// Допустимые типы транзакций
const (
	TxTypeTransfer    = "transfer"     // Перевод между пользователями
	TxTypeWork        = "work"         // Награда за работу (брутто)
	TxTypeWorkTax     = "work_tax"     // Налог 10% с работы
	TxTypeSteal       = "steal"        // Кража
	TxTypeLoan        = "loan"         // Выдача займа
	TxTypeDebtPayment = "debt_payment" // Погашение долга (с процентами)
	TxTypeTax         = "tax"          // Массовый сбор налогов
	TxTypeShopCost    = "shop_cost"    // Оплата создания комерции
	TxTypeShopBonus   = "shop_bonus"   // Стартовый бонус комерции
	TxTypeShopIncome  = "shop_income"  // Еженедельный доход комерции
	TxTypeShopTax     = "shop_tax"     // Налог с дохода комерции
)

// BulkTaxResult — итог массового сбора налогов.
// Кошельки с недостаточным балансом пропускаются целиком (частичных
// списаний нет), ошибки по отдельным кошелькам считаются, но не
// прерывают обход.
type BulkTaxResult struct {
	Collected int   // Сколько кошельков заплатило
	Total     int64 // Сумма, зачисленная казне
	Failed    int   // Ошибки по отдельным кошелькам
}
