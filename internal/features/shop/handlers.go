// Package shop — handlers.go обрабатывает команды
// /crear-comercio и /ver-comercios.
package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"dndbot/internal/common"
)

// Handler обрабатывает команды комерций.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик команд комерций.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Commands возвращает описания слэш-команд для регистрации.
func (h *Handler) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "crear-comercio",
			Description: "Crea un nuevo comercio",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "nombre",
					Description: "Nombre del comercio",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "tipo",
					Description: "Tipo de comercio",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "tamaño",
					Description: "Tamaño del comercio",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Chico", Value: SizeChico},
						{Name: "Mediano", Value: SizeMediano},
						{Name: "Grande", Value: SizeGrande},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "imagen",
					Description: "URL de la imagen del comercio",
					Required:    true,
				},
			},
		},
		{
			Name:        "ver-comercios",
			Description: "Muestra tus comercios",
		},
	}
}

// Interactions возвращает обработчики по имени команды.
func (h *Handler) Interactions() map[string]func(*discordgo.Session, *discordgo.InteractionCreate) {
	return map[string]func(*discordgo.Session, *discordgo.InteractionCreate){
		"crear-comercio": h.handleCreate,
		"ver-comercios":  h.handleList,
	}
}

func (h *Handler) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	opts := common.CommandOptions(i)
	userID := common.InteractionUserID(i)
	name := opts["nombre"].StringValue()
	shopType := opts["tipo"].StringValue()
	size := opts["tamaño"].StringValue()
	imageURL := opts["imagen"].StringValue()

	result, err := h.service.Create(ctx, i.GuildID, userID, name, shopType, size, imageURL)
	switch {
	case errors.Is(err, common.ErrNoCurrencyConfigured):
		common.RespondEphemeral(s, i, "No hay monedas configuradas en el servidor.")
		return
	case errors.Is(err, common.ErrShopLimit):
		common.RespondEphemeral(s, i, fmt.Sprintf("Ya tienes el máximo de %d comercios permitidos.", MaxShopsPerUser))
		return
	case errors.Is(err, common.ErrInsufficientFunds):
		cost, _ := CreationCost(size)
		common.RespondEphemeral(s, i, fmt.Sprintf("No tienes suficiente dinero. Necesitas %d monedas", cost))
		return
	case err != nil:
		log.WithError(err).Error("Ошибка создания комерции")
		common.RespondEphemeral(s, i, "Hubo un error al crear el comercio")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🏪 Nuevo Comercio: %s", name),
		Description: fmt.Sprintf("¡<@%s> ha creado un nuevo comercio!", userID),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Tipo", Value: shopType, Inline: true},
			{Name: "Tamaño", Value: capitalize(size), Inline: true},
			{Name: "Costo", Value: fmt.Sprintf("%d %s", result.Cost, result.Currency.Symbol), Inline: true},
			{Name: "Pago inicial", Value: fmt.Sprintf("%d %s", result.Bonus, result.Currency.Symbol), Inline: true},
		},
		Image: &discordgo.MessageEmbedImage{URL: imageURL},
		Color: 0x00ff00,
	}
	common.RespondEmbeds(s, i, "", []*discordgo.MessageEmbed{embed}, false)
}

func (h *Handler) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := common.InteractionUserID(i)

	shops, err := h.service.ListByUser(ctx, i.GuildID, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения комерций")
		common.RespondEphemeral(s, i, "Hubo un error al obtener tus comercios")
		return
	}
	if len(shops) == 0 {
		common.RespondEphemeral(s, i, "No tienes ningún comercio todavía.")
		return
	}

	var embeds []*discordgo.MessageEmbed
	for _, sh := range shops {
		income, _ := BaseIncome(sh.Size)
		embeds = append(embeds, &discordgo.MessageEmbed{
			Title:       fmt.Sprintf("🏪 %s", sh.Name),
			Description: fmt.Sprintf("Tipo: %s", sh.Type),
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Tamaño", Value: capitalize(sh.Size), Inline: true},
				{Name: "Ingresos (Semanal)", Value: fmt.Sprintf("%d", income), Inline: true},
			},
			Image:     &discordgo.MessageEmbedImage{URL: sh.ImageURL},
			Color:     0x00ff00,
			Timestamp: sh.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	common.RespondEmbeds(s, i,
		fmt.Sprintf("**Tus comercios** (%d/%d):", len(shops), MaxShopsPerUser),
		embeds, false)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
