package middleware

import (
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// LogCommand логирует входящую слэш-команду.
func LogCommand(i *discordgo.InteractionCreate) {
	userID := ""
	if i.Member != nil && i.Member.User != nil {
		userID = i.Member.User.ID
	} else if i.User != nil {
		userID = i.User.ID
	}

	log.WithFields(log.Fields{
		"guild":   i.GuildID,
		"user":    userID,
		"command": i.ApplicationCommandData().Name,
	}).Debug("Получена команда")
}
