// Package settings — handlers.go обрабатывает админскую команду
// /canal-registro.
package settings

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"dndbot/internal/common"
)

// Handler обрабатывает команды настроек.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик команд настроек.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Commands возвращает описания слэш-команд для регистрации.
func (h *Handler) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:                     "canal-registro",
			Description:              "Establece el canal para registrar transacciones (Admin)",
			DefaultMemberPermissions: &common.AdminOnly,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "canal",
					Description: "Canal donde se registrarán las transacciones",
					Required:    true,
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildText,
						discordgo.ChannelTypeGuildNews,
						discordgo.ChannelTypeGuildPublicThread,
						discordgo.ChannelTypeGuildPrivateThread,
						discordgo.ChannelTypeGuildNewsThread,
					},
				},
			},
		},
	}
}

// Interactions возвращает обработчики по имени команды.
func (h *Handler) Interactions() map[string]func(*discordgo.Session, *discordgo.InteractionCreate) {
	return map[string]func(*discordgo.Session, *discordgo.InteractionCreate){
		"canal-registro": h.handleSetLogChannel,
	}
}

func (h *Handler) handleSetLogChannel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := common.CommandOptions(i)
	channel := opts["canal"].ChannelValue(s)

	if err := h.service.SetLogChannel(context.Background(), i.GuildID, channel.ID); err != nil {
		log.WithError(err).Error("Ошибка настройки канала логов")
		common.RespondEphemeral(s, i, "Hubo un error al configurar el canal de registro")
		return
	}

	common.Respond(s, i, fmt.Sprintf("Canal de registro establecido a <#%s>", channel.ID))

	// Проверка доступа: если бот не может писать в канал, админ
	// узнает об этом сразу, а не при первой транзакции
	if _, err := s.ChannelMessageSend(channel.ID,
		"✅ Canal configurado correctamente para registro de transacciones."); err != nil {
		log.WithError(err).WithField("channel", channel.ID).
			Warn("Не удалось отправить проверочное сообщение в канал логов")
	}
}
