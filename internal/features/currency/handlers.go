// Package currency — handlers.go обрабатывает команды:
// /monedas (список), /crear-moneda и /eliminar-moneda (админские).
package currency

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"dndbot/internal/common"
)

// Handler обрабатывает команды валют.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик команд валют.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Commands возвращает описания слэш-команд для регистрации.
func (h *Handler) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "monedas",
			Description: "Lista todas las monedas disponibles",
		},
		{
			Name:                     "crear-moneda",
			Description:              "Crea una nueva moneda para el servidor (Admin)",
			DefaultMemberPermissions: &common.AdminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "nombre",
					Description: "Nombre de la moneda",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "simbolo",
					Description: "Símbolo de la moneda",
					Required:    true,
				},
			},
		},
		{
			Name:                     "eliminar-moneda",
			Description:              "Elimina una moneda existente del servidor (Admin)",
			DefaultMemberPermissions: &common.AdminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "nombre",
					Description: "Nombre de la moneda a eliminar",
					Required:    true,
				},
			},
		},
	}
}

// Interactions возвращает обработчики по имени команды.
func (h *Handler) Interactions() map[string]func(*discordgo.Session, *discordgo.InteractionCreate) {
	return map[string]func(*discordgo.Session, *discordgo.InteractionCreate){
		"monedas":         h.handleList,
		"crear-moneda":    h.handleCreate,
		"eliminar-moneda": h.handleDelete,
	}
}

func (h *Handler) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	currencies, err := h.service.List(context.Background(), i.GuildID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения списка валют")
		common.RespondEphemeral(s, i, "Hubo un error al listar las monedas")
		return
	}
	if len(currencies) == 0 {
		common.Respond(s, i, "No hay monedas configuradas en este servidor.")
		return
	}

	var lines []string
	for _, c := range currencies {
		lines = append(lines, fmt.Sprintf("%s (%s)", c.Name, c.Symbol))
	}
	common.Respond(s, i, "Monedas disponibles:\n"+strings.Join(lines, "\n"))
}

func (h *Handler) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := common.CommandOptions(i)
	name := opts["nombre"].StringValue()
	symbol := opts["simbolo"].StringValue()

	err := h.service.Create(context.Background(), i.GuildID, name, symbol)
	switch {
	case errors.Is(err, common.ErrCurrencyExists):
		common.RespondEphemeral(s, i, fmt.Sprintf("Ya existe una moneda llamada \"%s\"", name))
	case err != nil:
		log.WithError(err).Error("Ошибка создания валюты")
		common.RespondEphemeral(s, i, "Hubo un error al crear la moneda")
	default:
		common.Respond(s, i, fmt.Sprintf("¡Moneda \"%s\" (%s) creada con éxito!", name, symbol))
	}
}

func (h *Handler) handleDelete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := common.CommandOptions(i)
	name := opts["nombre"].StringValue()

	err := h.service.Delete(context.Background(), i.GuildID, name)
	switch {
	case errors.Is(err, common.ErrCurrencyNotFound):
		common.RespondEphemeral(s, i, fmt.Sprintf("No se encontró una moneda llamada \"%s\"", name))
	case err != nil:
		log.WithError(err).Error("Ошибка удаления валюты")
		common.RespondEphemeral(s, i, "Hubo un error al eliminar la moneda")
	default:
		common.Respond(s, i, fmt.Sprintf("Moneda \"%s\" eliminada con éxito.", name))
	}
}
