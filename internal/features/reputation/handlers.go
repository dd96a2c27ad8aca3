// Package reputation — handlers.go обрабатывает команды:
// /dar-reputacion, /quitar-reputacion (админские),
// /ver-reputacion, /ranking.
package reputation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"dndbot/internal/common"
)

// Handler обрабатывает команды репутации.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик команд репутации.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Commands возвращает описания слэш-команд для регистрации.
func (h *Handler) Commands() []*discordgo.ApplicationCommand {
	minAmount := float64(1)
	return []*discordgo.ApplicationCommand{
		{
			Name:                     "dar-reputacion",
			Description:              "Da puntos de reputación a un usuario",
			DefaultMemberPermissions: &common.AdminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "usuario",
					Description: "Usuario al que dar reputación",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "cantidad",
					Description: "Cantidad de puntos a dar",
					Required:    true,
					MinValue:    &minAmount,
				},
			},
		},
		{
			Name:                     "quitar-reputacion",
			Description:              "Quita reputación a un usuario (solo administradores)",
			DefaultMemberPermissions: &common.AdminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "usuario",
					Description: "Usuario al que quitar reputación",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "cantidad",
					Description: "Cantidad de reputación a quitar",
					Required:    true,
					MinValue:    &minAmount,
				},
			},
		},
		{
			Name:        "ver-reputacion",
			Description: "Muestra la reputación de un usuario",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "usuario",
					Description: "Usuario del que ver la reputación",
					Required:    true,
				},
			},
		},
		{
			Name:        "ranking",
			Description: "Muestra el ranking de reputación de los usuarios",
		},
	}
}

// Interactions возвращает обработчики по имени команды.
func (h *Handler) Interactions() map[string]func(*discordgo.Session, *discordgo.InteractionCreate) {
	return map[string]func(*discordgo.Session, *discordgo.InteractionCreate){
		"dar-reputacion":    h.handleAdd,
		"quitar-reputacion": h.handleRemove,
		"ver-reputacion":    h.handleView,
		"ranking":           h.handleRanking,
	}
}

func (h *Handler) handleAdd(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := common.CommandOptions(i)
	user := opts["usuario"].UserValue(s)
	amount := opts["cantidad"].IntValue()

	newPoints, err := h.service.Add(context.Background(), i.GuildID, user.ID, amount)
	switch {
	case errors.Is(err, common.ErrInvalidAmount):
		common.RespondEphemeral(s, i, "La cantidad debe ser positiva")
	case err != nil:
		log.WithError(err).Error("Ошибка начисления репутации")
		common.RespondEphemeral(s, i, "Hubo un error al dar reputación")
	default:
		common.Respond(s, i, fmt.Sprintf(
			"Se han agregado %d puntos de reputación a <@%s>. Nueva reputación total: %d",
			amount, user.ID, newPoints))
	}
}

func (h *Handler) handleRemove(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := common.CommandOptions(i)
	user := opts["usuario"].UserValue(s)
	amount := opts["cantidad"].IntValue()

	_, err := h.service.Remove(context.Background(), i.GuildID, user.ID, amount)
	switch {
	case errors.Is(err, common.ErrInvalidAmount):
		common.RespondEphemeral(s, i, "La cantidad debe ser positiva")
	case err != nil:
		log.WithError(err).Error("Ошибка снятия репутации")
		common.RespondEphemeral(s, i, "Hubo un error al quitar reputación")
	default:
		embed := &discordgo.MessageEmbed{
			Title:       "Reputación Quitada",
			Description: fmt.Sprintf("Se han quitado %d puntos de reputación a <@%s>", amount, user.ID),
			Color:       0xff0000,
		}
		common.RespondEmbeds(s, i, "", []*discordgo.MessageEmbed{embed}, false)
	}
}

func (h *Handler) handleView(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := common.CommandOptions(i)
	user := opts["usuario"].UserValue(s)

	points, err := h.service.Get(context.Background(), i.GuildID, user.ID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения репутации")
		common.RespondEphemeral(s, i, "Hubo un error al consultar la reputación")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🏆 Puntos de Reputación",
		Description: fmt.Sprintf("<@%s> tiene **%d** puntos de reputación", user.ID, points),
		Color:       0x0099ff,
	}
	common.RespondEmbeds(s, i, "", []*discordgo.MessageEmbed{embed}, false)
}

func (h *Handler) handleRanking(s *discordgo.Session, i *discordgo.InteractionCreate) {
	entries, err := h.service.Ranking(context.Background(), i.GuildID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения рейтинга")
		common.RespondEphemeral(s, i, "Hubo un error al consultar el ranking")
		return
	}
	if len(entries) == 0 {
		common.Respond(s, i, "No hay usuarios con reputación.")
		return
	}

	medals := []string{"🥇", "🥈", "🥉"}
	var lines []string
	for idx, e := range entries {
		medal := "•"
		if idx < len(medals) {
			medal = medals[idx]
		}
		lines = append(lines, fmt.Sprintf("%s <@%s>: %d puntos", medal, e.UserID, e.Points))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🏆 Ranking de Reputación",
		Description: strings.Join(lines, "\n"),
		Color:       0x0099ff,
	}
	common.RespondEmbeds(s, i, "", []*discordgo.MessageEmbed{embed}, false)
}
