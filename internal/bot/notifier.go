// Package bot — notifier.go рендерит события экономики в канал логов
// транзакций сервера. Реализует notify.Sink.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"dndbot/internal/common"
	"dndbot/internal/features/settings"
	"dndbot/internal/features/shop"
	"dndbot/internal/notify"
)

// Notifier публикует события в настроенный канал логов гильдии.
// Доставка best effort: любые ошибки логируются и глотаются,
// сами операции экономики от канала логов не зависят.
type Notifier struct {
	session  *discordgo.Session
	settings *settings.Service
}

// NewNotifier создаёт нотификатор поверх открытой сессии.
func NewNotifier(session *discordgo.Session, settings *settings.Service) *Notifier {
	return &Notifier{session: session, settings: settings}
}

// Publish отправляет событие в канал логов, если он настроен.
func (n *Notifier) Publish(ctx context.Context, e notify.Event) {
	cfg, err := n.settings.Get(ctx, e.GuildID)
	if err != nil {
		log.WithError(err).WithField("guild", e.GuildID).
			Warn("Не удалось получить настройки для канала логов")
		return
	}
	if cfg.TransactionLogChanID == "" {
		return
	}

	if e.At.IsZero() {
		e.At = time.Now()
	}

	text := renderEvent(e)
	if text == "" {
		return
	}

	if _, err := n.session.ChannelMessageSend(cfg.TransactionLogChanID, text); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guild":   e.GuildID,
			"channel": cfg.TransactionLogChanID,
			"kind":    e.Kind,
		}).Warn("Не удалось отправить событие в канал логов")
	}
}

// renderEvent собирает испанский текст сообщения по типу события.
func renderEvent(e notify.Event) string {
	date := common.FormatDateTime(e.At)

	switch e.Kind {
	case notify.KindTransfer:
		return fmt.Sprintf(
			"💰 Nueva transferencia:\nDe: <@%s>\nPara: <@%s>\nCantidad: %d %s\nFecha: %s",
			e.ActorID, e.TargetID, e.Amounts["amount"], e.Currency, date)

	case notify.KindWork:
		return fmt.Sprintf(
			"💼 Recompensa por trabajo:\nUsuario: <@%s>\nGanancia: %d %s\nImpuesto: %d %s\nFecha: %s",
			e.ActorID, e.Amounts["gross"], e.Currency, e.Amounts["tax"], e.Currency, date)

	case notify.KindSteal:
		return fmt.Sprintf(
			"🕵️ Robo:\nLadrón: <@%s>\nVíctima: <@%s>\nCantidad: %d %s\nFecha: %s",
			e.ActorID, e.TargetID, e.Amounts["amount"], e.Currency, date)

	case notify.KindLoan:
		return fmt.Sprintf(
			"🏦 Préstamo concedido:\nUsuario: <@%s>\nCantidad: %d %s\nFecha: %s",
			e.ActorID, e.Amounts["amount"], e.Currency, date)

	case notify.KindDebtPayment:
		return fmt.Sprintf(
			"🏦 Pago de deuda:\nUsuario: <@%s>\nPagado: %d + %d de interés %s\nDeuda restante: %d\nFecha: %s",
			e.ActorID, e.Amounts["paid"], e.Amounts["interest"], e.Currency, e.Amounts["remaining"], date)

	case notify.KindBulkTax:
		return fmt.Sprintf(
			"💰 Cobro de impuestos:\nAdministrador: <@%s>\nMonto por usuario: %d %s\nTotal recaudado: %d %s\nUsuarios cobrados: %d\nFecha: %s",
			e.ActorID, e.Amounts["amount"], e.Currency, e.Amounts["total"], e.Currency, e.Amounts["collected"], date)

	case notify.KindShopCreated:
		return fmt.Sprintf(
			"🏪 Nuevo comercio creado:\nUsuario: <@%s>\nNombre: %s\nCosto: %d %s\nPago inicial: %d %s\nFecha: %s",
			e.ActorID, e.Detail, e.Amounts["cost"], e.Currency, e.Amounts["bonus"], e.Currency, date)

	case notify.KindShopPayout:
		roll := int(e.Amounts["roll"])
		return fmt.Sprintf(
			"🏪 Pago semanal de comercio:\nComercio: %s\nDueño: <@%s>\nTirada: %d — %s\nGanancia neta: %d %s\nImpuesto: %d %s\nFecha: %s",
			e.Detail, e.ActorID, roll, shop.RollDescription(roll),
			e.Amounts["net"], e.Currency, e.Amounts["tax"], e.Currency, date)
	}

	log.WithField("kind", e.Kind).Warn("Неизвестный тип события, пропускаем")
	return ""
}
