// Package character — handlers.go обрабатывает команды:
// /crear-personaje, /ver-personajes, /eliminar-personaje, /me.
package character

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"dndbot/internal/common"
)

// Классы и расы персонажей. Значения идут прямо в слэш-команду.
var classChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Artifice", Value: "artifice"},
	{Name: "Bárbaro", Value: "barbaro"},
	{Name: "Bardo", Value: "bardo"},
	{Name: "Clérigo", Value: "clerigo"},
	{Name: "Druida", Value: "druida"},
	{Name: "Guerrero", Value: "guerrero"},
	{Name: "Hechicero", Value: "hechicero"},
	{Name: "Mago", Value: "mago"},
	{Name: "Monje", Value: "monje"},
	{Name: "Paladín", Value: "paladin"},
	{Name: "Pícaro", Value: "picaro"},
	{Name: "Explorador", Value: "explorador"},
}

var raceChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Acompañante", Value: "acompanante"},
	{Name: "Dhamphiro", Value: "dhamphiro"},
	{Name: "Draconido", Value: "draconido"},
	{Name: "Draconido Cromatico", Value: "draconido_cromatico"},
	{Name: "Draconido Gema", Value: "draconido_gema"},
	{Name: "Draconido Metalico", Value: "draconido_metalico"},
	{Name: "Elfo", Value: "elfo"},
	{Name: "Enano", Value: "enano"},
	{Name: "Gnomo", Value: "gnomo"},
	{Name: "Humano", Value: "humano"},
	{Name: "Linaje Personalizado", Value: "linaje_personalizado"},
	{Name: "Mediano", Value: "mediano"},
	{Name: "Renacido", Value: "renacido"},
	{Name: "Sangre Malefica", Value: "sangre_malefica"},
	{Name: "Semielfo", Value: "semielfo"},
	{Name: "Semiorco", Value: "semiorco"},
	{Name: "Tiefling", Value: "tiefling"},
	{Name: "Tiefling Variante", Value: "tiefling_variante"},
}

var rankChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Rango E", Value: "Rango E"},
	{Name: "Rango D", Value: "Rango D"},
	{Name: "Rango C", Value: "Rango C"},
	{Name: "Rango B", Value: "Rango B"},
	{Name: "Rango A", Value: "Rango A"},
}

// Handler обрабатывает команды персонажей.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик команд персонажей.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Commands возвращает описания слэш-команд для регистрации.
func (h *Handler) Commands() []*discordgo.ApplicationCommand {
	minLevel, maxLevel := float64(1), float64(20)
	return []*discordgo.ApplicationCommand{
		{
			Name:        "crear-personaje",
			Description: "Crea una nueva hoja de personaje",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "nombre",
					Description: "Nombre del personaje",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "nivel",
					Description: "Nivel del personaje",
					Required:    true,
					MinValue:    &minLevel,
					MaxValue:    maxLevel,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "clase",
					Description: "Clase del personaje",
					Required:    true,
					Choices:     classChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "raza",
					Description: "Raza del personaje",
					Required:    true,
					Choices:     raceChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "rango",
					Description: "Rango del personaje",
					Required:    true,
					Choices:     rankChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "imagen",
					Description: "URL de la imagen del personaje",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "n20",
					Description: "URL adicional para N20",
					Required:    true,
				},
			},
		},
		{
			Name:        "ver-personajes",
			Description: "Muestra tus personajes creados",
		},
		{
			Name:        "eliminar-personaje",
			Description: "Elimina uno de tus personajes",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "nombre",
					Description: "Nombre del personaje a eliminar",
					Required:    true,
				},
			},
		},
		{
			Name:        "me",
			Description: "Realiza una acción con tu personaje",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "personaje",
					Description: "Nombre del personaje",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "accion",
					Description: "La acción que quieres realizar",
					Required:    true,
				},
			},
		},
	}
}

// Interactions возвращает обработчики по имени команды.
func (h *Handler) Interactions() map[string]func(*discordgo.Session, *discordgo.InteractionCreate) {
	return map[string]func(*discordgo.Session, *discordgo.InteractionCreate){
		"crear-personaje":    h.handleCreate,
		"ver-personajes":     h.handleList,
		"eliminar-personaje": h.handleDelete,
		"me":                 h.handleMe,
	}
}

func (h *Handler) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	opts := common.CommandOptions(i)
	userID := common.InteractionUserID(i)
	name := opts["nombre"].StringValue()

	// Имя должно быть уникальным среди персонажей пользователя
	if _, err := h.service.Find(ctx, i.GuildID, userID, name); err == nil {
		common.RespondEphemeral(s, i, fmt.Sprintf(
			"Ya tienes un personaje llamado \"%s\". Por favor, elige otro nombre.", name))
		return
	}

	c, err := h.service.Create(ctx, &Character{
		GuildID:  i.GuildID,
		UserID:   userID,
		Name:     name,
		Level:    int(opts["nivel"].IntValue()),
		Class:    opts["clase"].StringValue(),
		Race:     opts["raza"].StringValue(),
		Rank:     opts["rango"].StringValue(),
		ImageURL: opts["imagen"].StringValue(),
		N20URL:   opts["n20"].StringValue(),
	})
	switch {
	case errors.Is(err, common.ErrCharacterLimit):
		common.RespondEphemeral(s, i, fmt.Sprintf("Ya tienes el máximo de %d personajes permitidos.", MaxPerUser))
		return
	case err != nil:
		log.WithError(err).Error("Ошибка создания персонажа")
		common.RespondEphemeral(s, i, "Hubo un error al crear el personaje")
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "¡Personaje creado!",
		Description: fmt.Sprintf("**%s** ha sido agregado a tu colección.", c.Name),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Nivel", Value: fmt.Sprintf("%d", c.Level), Inline: true},
			{Name: "Clase", Value: c.Class, Inline: true},
			{Name: "Raza", Value: c.Race, Inline: true},
			{Name: "Rango", Value: c.Rank, Inline: true},
			{Name: "N20", Value: fmt.Sprintf("[Ver en N20](%s)", c.N20URL)},
		},
		Image: &discordgo.MessageEmbedImage{URL: c.ImageURL},
		Color: 0x00ff00,
	}
	common.RespondEmbeds(s, i, "", []*discordgo.MessageEmbed{embed}, false)
}

func (h *Handler) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	userID := common.InteractionUserID(i)

	chars, err := h.service.ListByUser(ctx, i.GuildID, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения персонажей")
		common.RespondEphemeral(s, i, "Hubo un error al obtener los personajes")
		return
	}
	if len(chars) == 0 {
		common.RespondEphemeral(s, i, "No tienes personajes creados aún.")
		return
	}

	var embeds []*discordgo.MessageEmbed
	for _, c := range chars {
		fields := []*discordgo.MessageEmbedField{
			{Name: "Clase", Value: c.Class, Inline: true},
			{Name: "Raza", Value: c.Race, Inline: true},
			{Name: "Nivel", Value: fmt.Sprintf("%d", c.Level), Inline: true},
			{Name: "Rango", Value: c.Rank, Inline: true},
			{Name: "Creado", Value: common.FormatDateTime(c.CreatedAt), Inline: true},
		}
		if c.N20URL != "" {
			fields = append(fields, &discordgo.MessageEmbedField{
				Name: "N20", Value: fmt.Sprintf("[Ver en N20](%s)", c.N20URL),
			})
		}
		embed := &discordgo.MessageEmbed{
			Title:  c.Name,
			Fields: fields,
			Color:  0x0099ff,
		}
		if c.ImageURL != "" {
			embed.Image = &discordgo.MessageEmbedImage{URL: c.ImageURL}
		}
		embeds = append(embeds, embed)
	}

	common.RespondEmbeds(s, i,
		fmt.Sprintf("**Tus personajes** (%d):", len(chars)), embeds, true)
}

func (h *Handler) handleDelete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	opts := common.CommandOptions(i)
	userID := common.InteractionUserID(i)
	name := opts["nombre"].StringValue()

	c, err := h.service.Find(ctx, i.GuildID, userID, name)
	if err != nil {
		common.RespondEphemeral(s, i, fmt.Sprintf(
			"No se encontró ningún personaje con el nombre \"%s\" o no eres su propietario.", name))
		return
	}

	if err := h.service.Delete(ctx, i.GuildID, userID, c.ID); err != nil {
		log.WithError(err).Error("Ошибка удаления персонажа")
		common.RespondEphemeral(s, i, fmt.Sprintf(
			"Hubo un error al eliminar el personaje \"%s\". Por favor, inténtalo de nuevo.", name))
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Personaje eliminado",
		Description: fmt.Sprintf("**%s** ha sido eliminado de tu colección.", c.Name),
		Color:       0xff0000,
	}
	common.RespondEmbeds(s, i, "", []*discordgo.MessageEmbed{embed}, true)
}

func (h *Handler) handleMe(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	opts := common.CommandOptions(i)
	userID := common.InteractionUserID(i)
	name := opts["personaje"].StringValue()
	action := opts["accion"].StringValue()

	c, err := h.service.Find(ctx, i.GuildID, userID, name)
	if err != nil {
		common.RespondEphemeral(s, i, fmt.Sprintf(
			"No se encontró el personaje \"%s\" o no eres su propietario.", name))
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:       c.Name,
		Description: fmt.Sprintf("*%s*", action),
		Color:       0x9b59b6,
	}
	if c.ImageURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: c.ImageURL}
	}
	common.RespondEmbeds(s, i, "", []*discordgo.MessageEmbed{embed}, false)
}
