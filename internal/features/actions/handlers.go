// Package actions — handlers.go обрабатывает команды /trabajar и /robar.
package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"dndbot/internal/common"
	"dndbot/internal/notify"
)

// Handler обрабатывает таймерные команды.
type Handler struct {
	service *Service
	sink    notify.Sink
}

// NewHandler создаёт обработчик таймерных команд.
func NewHandler(service *Service, sink notify.Sink) *Handler {
	return &Handler{service: service, sink: sink}
}

// Commands возвращает описания слэш-команд для регистрации.
func (h *Handler) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "trabajar",
			Description: "Trabaja para ganar monedas aleatorias",
		},
		{
			Name:        "robar",
			Description: "Intenta robar monedas a otro usuario",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "usuario",
					Description: "Usuario al que robar",
					Required:    true,
				},
			},
		},
	}
}

// Interactions возвращает обработчики по имени команды.
func (h *Handler) Interactions() map[string]func(*discordgo.Session, *discordgo.InteractionCreate) {
	return map[string]func(*discordgo.Session, *discordgo.InteractionCreate){
		"trabajar": h.handleWork,
		"robar":    h.handleSteal,
	}
}

func (h *Handler) handleWork(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := common.InteractionUserID(i)

	result, err := h.service.Work(ctx, i.GuildID, userID)
	var cooldown *common.CooldownError
	switch {
	case errors.As(err, &cooldown):
		common.RespondEphemeral(s, i, fmt.Sprintf(
			"Todavía estás cansado. Podrás volver a trabajar en %s.",
			common.FormatRemaining(cooldown.Remaining)))
		return
	case errors.Is(err, common.ErrNoCurrencyConfigured):
		common.Respond(s, i, "No hay monedas configuradas en este servidor.")
		return
	case err != nil:
		log.WithError(err).Error("Ошибка выполнения работы")
		common.RespondEphemeral(s, i, "Hubo un error al procesar tu trabajo")
		return
	}

	common.Respond(s, i, fmt.Sprintf(
		"¡Has trabajado y ganado %d %s! El recaudador se llevó %d %s de impuestos.\nTu nuevo balance de %s es: %d %s",
		result.Gross, result.Currency.Symbol,
		result.Tax, result.Currency.Symbol,
		result.Currency.Name, result.NewBalance, result.Currency.Symbol))

	h.sink.Publish(ctx, notify.Event{
		GuildID:  i.GuildID,
		Kind:     notify.KindWork,
		ActorID:  userID,
		Currency: result.Currency.Name,
		Amounts: map[string]int64{
			"gross": result.Gross,
			"tax":   result.Tax,
			"net":   result.Net,
		},
	})
}

func (h *Handler) handleSteal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	opts := common.CommandOptions(i)
	thiefID := common.InteractionUserID(i)
	victim := opts["usuario"].UserValue(s)

	result, err := h.service.Steal(ctx, i.GuildID, thiefID, victim.ID)
	var cooldown *common.CooldownError
	switch {
	case errors.As(err, &cooldown):
		common.RespondEphemeral(s, i, fmt.Sprintf(
			"Los guardias todavía te vigilan. Podrás volver a robar en %s.",
			common.FormatRemaining(cooldown.Remaining)))
		return
	case errors.Is(err, common.ErrInvalidTarget):
		common.RespondEphemeral(s, i, "No puedes robarte a ti mismo")
		return
	case errors.Is(err, common.ErrNothingToSteal):
		common.RespondEphemeral(s, i, fmt.Sprintf("<@%s> no tiene nada que robar", victim.ID))
		return
	case err != nil:
		log.WithError(err).Error("Ошибка кражи")
		common.RespondEphemeral(s, i, "Hubo un error al intentar el robo")
		return
	}

	common.Respond(s, i, fmt.Sprintf("¡Has robado %d %s a <@%s>!", result.Amount, result.Currency, victim.ID))

	h.sink.Publish(ctx, notify.Event{
		GuildID:  i.GuildID,
		Kind:     notify.KindSteal,
		ActorID:  thiefID,
		TargetID: victim.ID,
		Currency: result.Currency,
		Amounts:  map[string]int64{"amount": result.Amount},
	})
}
