// Package debt — handlers.go обрабатывает команды:
// /prestamo, /pagar-deuda, /mis-deudas.
package debt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"dndbot/internal/common"
	"dndbot/internal/notify"
)

// Handler обрабатывает команды займов.
type Handler struct {
	service *Service
	sink    notify.Sink
}

// NewHandler создаёт обработчик команд займов.
func NewHandler(service *Service, sink notify.Sink) *Handler {
	return &Handler{service: service, sink: sink}
}

// Commands возвращает описания слэш-команд для регистрации.
func (h *Handler) Commands() []*discordgo.ApplicationCommand {
	minAmount := float64(1)
	return []*discordgo.ApplicationCommand{
		{
			Name:        "prestamo",
			Description: "Pide un préstamo a la tesorería",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "moneda",
					Description: "Nombre de la moneda",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "cantidad",
					Description: "Cantidad a pedir",
					Required:    true,
					MinValue:    &minAmount,
				},
			},
		},
		{
			Name:        "pagar-deuda",
			Description: "Paga parte o toda tu deuda",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "moneda",
					Description: "Nombre de la moneda",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "cantidad",
					Description: "Cantidad de deuda a pagar (sin contar el interés)",
					Required:    true,
					MinValue:    &minAmount,
				},
			},
		},
		{
			Name:        "mis-deudas",
			Description: "Muestra tus deudas pendientes",
		},
	}
}

// Interactions возвращает обработчики по имени команды.
func (h *Handler) Interactions() map[string]func(*discordgo.Session, *discordgo.InteractionCreate) {
	return map[string]func(*discordgo.Session, *discordgo.InteractionCreate){
		"prestamo":    h.handleBorrow,
		"pagar-deuda": h.handlePay,
		"mis-deudas":  h.handleList,
	}
}

func (h *Handler) handleBorrow(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	opts := common.CommandOptions(i)
	userID := common.InteractionUserID(i)
	currencyName := opts["moneda"].StringValue()
	amount := opts["cantidad"].IntValue()

	d, err := h.service.Borrow(ctx, i.GuildID, userID, currencyName, amount)
	switch {
	case errors.Is(err, common.ErrCurrencyNotFound):
		common.RespondEphemeral(s, i, "Moneda no encontrada")
		return
	case errors.Is(err, common.ErrDebtExists):
		common.RespondEphemeral(s, i, "Ya tienes un préstamo pendiente en esa moneda. Págalo antes de pedir otro.")
		return
	case err != nil:
		log.WithError(err).Error("Ошибка выдачи займа")
		common.RespondEphemeral(s, i, "Hubo un error al procesar el préstamo")
		return
	}

	common.Respond(s, i, fmt.Sprintf(
		"Préstamo concedido: %d %s.\nRecuerda: la devolución lleva un 25%% de interés, y después de 10 días la deuda aumenta un 50%%.",
		amount, currencyName))

	h.sink.Publish(ctx, notify.Event{
		GuildID:  i.GuildID,
		Kind:     notify.KindLoan,
		ActorID:  userID,
		Currency: currencyName,
		Amounts:  map[string]int64{"amount": amount},
		At:       d.LoanDate,
	})
}

func (h *Handler) handlePay(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	opts := common.CommandOptions(i)
	userID := common.InteractionUserID(i)
	currencyName := opts["moneda"].StringValue()
	amount := opts["cantidad"].IntValue()

	result, err := h.service.PayDebt(ctx, i.GuildID, userID, currencyName, amount)
	switch {
	case errors.Is(err, common.ErrNoDebt):
		common.RespondEphemeral(s, i, "No tienes deudas en esa moneda")
		return
	case errors.Is(err, common.ErrOverpayment):
		common.RespondEphemeral(s, i, "Estás intentando pagar más de lo que debes")
		return
	case errors.Is(err, common.ErrInsufficientFunds):
		common.RespondEphemeral(s, i, "No tienes fondos suficientes (recuerda el 25% de interés)")
		return
	case err != nil:
		log.WithError(err).Error("Ошибка погашения долга")
		common.RespondEphemeral(s, i, "Hubo un error al pagar la deuda")
		return
	}

	msg := fmt.Sprintf(
		"Pago aceptado: %d + %d de interés = %d %s.",
		result.Paid, result.Interest, result.TotalCharge, currencyName)
	if result.Remaining == 0 {
		msg += "\n¡Has saldado toda tu deuda!"
	} else {
		msg += fmt.Sprintf("\nDeuda restante: %d %s", result.Remaining, currencyName)
	}
	common.Respond(s, i, msg)

	h.sink.Publish(ctx, notify.Event{
		GuildID:  i.GuildID,
		Kind:     notify.KindDebtPayment,
		ActorID:  userID,
		Currency: currencyName,
		Amounts: map[string]int64{
			"paid":      result.Paid,
			"interest":  result.Interest,
			"remaining": result.Remaining,
		},
	})
}

func (h *Handler) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := common.InteractionUserID(i)

	debts, err := h.service.Outstanding(ctx, i.GuildID, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения долгов")
		common.RespondEphemeral(s, i, "Hubo un error al consultar tus deudas")
		return
	}
	if len(debts) == 0 {
		common.RespondEphemeral(s, i, "No tienes deudas pendientes. ¡Enhorabuena!")
		return
	}

	now := time.Now()
	var lines []string
	for _, d := range debts {
		line := fmt.Sprintf("• %s: %d (pedido el %s)",
			d.CurrencyName, d.Effective(now), common.FormatDateTime(d.LoanDate))
		if d.Overdue(now) {
			line += " ⚠️ en mora"
		}
		lines = append(lines, line)
	}
	common.RespondEphemeral(s, i, "Tus deudas:\n"+strings.Join(lines, "\n"))
}
