// Package wallet — handlers.go обрабатывает команды:
// /balance, /transferir, /cobrar и /cobrar-comerciante (админские).
package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"dndbot/internal/common"
	"dndbot/internal/features/currency"
	"dndbot/internal/notify"
)

// currencyRegistry — та часть реестра валют, которая нужна обработчикам.
type currencyRegistry interface {
	List(ctx context.Context, guildID string) ([]currency.Currency, error)
	Get(ctx context.Context, guildID, name string) (*currency.Currency, error)
	Exists(ctx context.Context, guildID, name string) (bool, error)
}

// merchantRegistry — владельцы комерций сервера (для /cobrar-comerciante).
type merchantRegistry interface {
	OwnerIDs(ctx context.Context, guildID string) ([]string, error)
}

// Handler обрабатывает команды кошельков.
type Handler struct {
	service    *Service
	currencies currencyRegistry
	merchants  merchantRegistry
	sink       notify.Sink
}

// NewHandler создаёт обработчик команд кошельков.
func NewHandler(service *Service, currencies currencyRegistry, merchants merchantRegistry, sink notify.Sink) *Handler {
	return &Handler{service: service, currencies: currencies, merchants: merchants, sink: sink}
}

// Commands возвращает описания слэш-команд для регистрации.
func (h *Handler) Commands() []*discordgo.ApplicationCommand {
	minAmount := float64(1)
	return []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Muestra tu balance actual de monedas",
		},
		{
			Name:        "transferir",
			Description: "Transfiere monedas a otro usuario",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "usuario",
					Description: "Usuario que recibirá las monedas",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "moneda",
					Description: "Nombre de la moneda",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "cantidad",
					Description: "Cantidad a transferir",
					Required:    true,
					MinValue:    &minAmount,
				},
			},
		},
		{
			Name:                     "cobrar",
			Description:              "Cobra un monto a todos los usuarios (Admin)",
			DefaultMemberPermissions: &common.AdminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "moneda",
					Description: "Tipo de moneda",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "monto",
					Description: "Monto a cobrar",
					Required:    true,
					MinValue:    &minAmount,
				},
			},
		},
		{
			Name:        "cobrar-comerciante",
			Description: "Cobra un monto a todos los usuarios con comercios",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "moneda",
					Description: "Tipo de moneda",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "monto",
					Description: "Monto a cobrar",
					Required:    true,
					MinValue:    &minAmount,
				},
			},
		},
	}
}

// Interactions возвращает обработчики по имени команды.
func (h *Handler) Interactions() map[string]func(*discordgo.Session, *discordgo.InteractionCreate) {
	return map[string]func(*discordgo.Session, *discordgo.InteractionCreate){
		"balance":            h.handleBalance,
		"transferir":         h.handleTransfer,
		"cobrar":             h.handleBulkTax,
		"cobrar-comerciante": h.handleMerchantTax,
	}
}

// handleBalance показывает балансы инициатора по всем валютам сервера.
func (h *Handler) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := common.InteractionUserID(i)

	currencies, err := h.currencies.List(ctx, i.GuildID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения валют для баланса")
		common.RespondEphemeral(s, i, "Hubo un error al consultar tu balance")
		return
	}
	if len(currencies) == 0 {
		common.Respond(s, i, "No hay monedas configuradas en este servidor.")
		return
	}

	w, err := h.service.GetOrCreate(ctx, i.GuildID, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения кошелька")
		common.RespondEphemeral(s, i, "Hubo un error al consultar tu balance")
		return
	}

	var lines []string
	for _, c := range currencies {
		lines = append(lines, fmt.Sprintf("%s: %d %s", c.Name, w.Balance(c.Name), c.Symbol))
	}
	common.RespondEphemeral(s, i, fmt.Sprintf("Balance de <@%s>:\n%s", userID, strings.Join(lines, "\n")))
}

func (h *Handler) handleTransfer(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	opts := common.CommandOptions(i)
	fromID := common.InteractionUserID(i)
	target := opts["usuario"].UserValue(s)
	currencyName := opts["moneda"].StringValue()
	amount := opts["cantidad"].IntValue()

	cur, err := h.currencies.Get(ctx, i.GuildID, currencyName)
	if err != nil {
		common.RespondEphemeral(s, i, "Moneda no encontrada")
		return
	}

	// Кошелёк получателя создаётся заранее, чтобы перевод не падал
	// на первом упоминании пользователя
	if _, err := h.service.GetOrCreate(ctx, i.GuildID, target.ID); err != nil {
		log.WithError(err).Error("Ошибка создания кошелька получателя")
		common.RespondEphemeral(s, i, "Hubo un error al realizar la transferencia")
		return
	}

	rec, err := h.service.Transfer(ctx, i.GuildID, fromID, target.ID, currencyName, amount, TxTypeTransfer)
	switch {
	case errors.Is(err, common.ErrSelfTransfer):
		common.RespondEphemeral(s, i, "No puedes transferirte monedas a ti mismo")
		return
	case errors.Is(err, common.ErrInsufficientFunds):
		common.RespondEphemeral(s, i, fmt.Sprintf("No tienes suficientes %s", cur.Symbol))
		return
	case errors.Is(err, common.ErrInvalidAmount):
		common.RespondEphemeral(s, i, "La cantidad debe ser positiva")
		return
	case err != nil:
		log.WithError(err).Error("Ошибка перевода")
		common.RespondEphemeral(s, i, "Hubo un error al realizar la transferencia")
		return
	}

	common.Respond(s, i, fmt.Sprintf("Transferencia exitosa: %d %s enviados a <@%s>", amount, cur.Symbol, target.ID))

	h.sink.Publish(ctx, notify.Event{
		GuildID:  i.GuildID,
		Kind:     notify.KindTransfer,
		ActorID:  fromID,
		TargetID: target.ID,
		Currency: cur.Name,
		Amounts:  map[string]int64{"amount": amount},
		At:       rec.CreatedAt,
	})
}

// handleBulkTax собирает налог со всех кошельков сервера.
func (h *Handler) handleBulkTax(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	opts := common.CommandOptions(i)
	currencyName := opts["moneda"].StringValue()
	amount := opts["monto"].IntValue()

	exists, err := h.currencies.Exists(ctx, i.GuildID, currencyName)
	if err != nil || !exists {
		common.RespondEphemeral(s, i, "Moneda no encontrada")
		return
	}

	result, err := h.service.BulkTax(ctx, i.GuildID, currencyName, amount, nil)
	if err != nil {
		log.WithError(err).Error("Ошибка сбора налогов")
		common.RespondEphemeral(s, i, "Ocurrió un error al procesar el cobro")
		return
	}

	common.Respond(s, i, fmt.Sprintf(
		"Cobro completado:\n✅ %d usuarios pagaron impuestos\n❌ %d errores durante el cobro",
		result.Collected, result.Failed))

	h.publishBulkTax(ctx, i, currencyName, amount, result)
}

// handleMerchantTax собирает налог только с владельцев комерций.
func (h *Handler) handleMerchantTax(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !common.IsAdmin(i) {
		common.RespondEphemeral(s, i, "No tienes permiso para usar este comando")
		return
	}

	ctx := context.Background()
	opts := common.CommandOptions(i)
	currencyName := opts["moneda"].StringValue()
	amount := opts["monto"].IntValue()

	exists, err := h.currencies.Exists(ctx, i.GuildID, currencyName)
	if err != nil || !exists {
		common.RespondEphemeral(s, i, "Moneda no encontrada")
		return
	}

	owners, err := h.merchants.OwnerIDs(ctx, i.GuildID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения владельцев комерций")
		common.RespondEphemeral(s, i, "Hubo un error al realizar el cobro")
		return
	}
	if len(owners) == 0 {
		common.RespondEphemeral(s, i, "No hay comercios en este servidor.")
		return
	}

	result, err := h.service.BulkTax(ctx, i.GuildID, currencyName, amount, owners)
	if err != nil {
		log.WithError(err).Error("Ошибка сбора налога с комерсантов")
		common.RespondEphemeral(s, i, "Hubo un error al realizar el cobro")
		return
	}

	common.Respond(s, i, fmt.Sprintf(
		"✅ Cobro realizado:\n• Monto por usuario: %d %s\n• Total cobrado: %d %s\n• Usuarios cobrados: %d",
		amount, currencyName, result.Total, currencyName, result.Collected))

	h.publishBulkTax(ctx, i, currencyName, amount, result)
}

func (h *Handler) publishBulkTax(ctx context.Context, i *discordgo.InteractionCreate, currencyName string, amount int64, result *BulkTaxResult) {
	h.sink.Publish(ctx, notify.Event{
		GuildID:  i.GuildID,
		Kind:     notify.KindBulkTax,
		ActorID:  common.InteractionUserID(i),
		Currency: currencyName,
		Amounts: map[string]int64{
			"amount":    amount,
			"total":     result.Total,
			"collected": int64(result.Collected),
		},
	})
}
