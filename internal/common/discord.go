// Package common — discord.go содержит вспомогательные функции
// для ответов на слэш-команды.
package common

import (
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// AdminOnly — маска прав для админских команд. Используется как
// DefaultMemberPermissions при регистрации команды.
var AdminOnly int64 = discordgo.PermissionAdministrator

// InteractionUserID возвращает ID инициатора взаимодействия.
// В гильдии пользователь приходит в Member, в личке — в User.
func InteractionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// IsAdmin проверяет права администратора у инициатора.
func IsAdmin(i *discordgo.InteractionCreate) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator != 0
}

// CommandOptions раскладывает опции слэш-команды в map по имени.
func CommandOptions(i *discordgo.InteractionCreate) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	opts := i.ApplicationCommandData().Options
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

// Respond отвечает на взаимодействие обычным сообщением.
func Respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	respond(s, i, content, 0)
}

// RespondEphemeral отвечает сообщением, видимым только инициатору.
func RespondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	respond(s, i, content, discordgo.MessageFlagsEphemeral)
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, flags discordgo.MessageFlags) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
	if err != nil {
		log.WithError(err).Error("Ошибка ответа на взаимодействие")
	}
}

// RespondEmbeds отвечает сообщением с эмбедами.
func RespondEmbeds(s *discordgo.Session, i *discordgo.InteractionCreate, content string, embeds []*discordgo.MessageEmbed, ephemeral bool) {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Embeds:  embeds,
			Flags:   flags,
		},
	})
	if err != nil {
		log.WithError(err).Error("Ошибка ответа на взаимодействие")
	}
}
