// Package notify описывает контракт канала уведомлений о движениях валют.
// Ядро экономики только публикует структурированные события;
// куда их рендерить (канал логов Discord) — решает реализация в internal/bot.
package notify

import (
	"context"
	"time"
)

// Типы событий. Используются реализацией для выбора шаблона сообщения.
const (
	KindTransfer    = "transfer"     // Перевод между пользователями
	KindWork        = "work"         // Награда за работу (и налог)
	KindSteal       = "steal"        // Кража
	KindLoan        = "loan"         // Выдача займа
	KindDebtPayment = "debt_payment" // Погашение долга
	KindBulkTax     = "bulk_tax"     // Массовый сбор налогов
	KindShopCreated = "shop_created" // Создание комерции (+стартовый бонус)
	KindShopPayout  = "shop_payout"  // Еженедельная выплата комерции
)

// Event — одно завершённое движение валюты.
// Amounts несёт именованные суммы разбивки (gross/tax/net и т.п.),
// смысл ключей зависит от Kind.
type Event struct {
	GuildID  string
	Kind     string
	ActorID  string
	TargetID string
	Currency string
	Amounts  map[string]int64
	Detail   string
	At       time.Time
}

// Sink принимает события. Реализация не должна возвращать ошибку наружу:
// доставка уведомлений — best effort и не влияет на сами операции.
type Sink interface {
	Publish(ctx context.Context, e Event)
}

// Discard — заглушка для тестов и окружений без канала логов.
type Discard struct{}

func (Discard) Publish(context.Context, Event) {}
