// Package bot содержит главный модуль бота — регистрацию слэш-команд
// и маршрутизацию взаимодействий к обработчикам фич.
package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"dndbot/internal/bot/middleware"
)

// Feature — обработчик одной фичи: описания слэш-команд и функции
// реакции на них. Реализуется Handler'ами из internal/features.
type Feature interface {
	Commands() []*discordgo.ApplicationCommand
	Interactions() map[string]func(*discordgo.Session, *discordgo.InteractionCreate)
}

// Bot объединяет сессию Discord и обработчики всех фич.
type Bot struct {
	session  *discordgo.Session
	commands []*discordgo.ApplicationCommand
	handlers map[string]func(*discordgo.Session, *discordgo.InteractionCreate)
}

// New собирает бота из обработчиков фич. Имена команд должны быть
// уникальны между фичами.
func New(session *discordgo.Session, features ...Feature) *Bot {
	b := &Bot{
		session:  session,
		handlers: map[string]func(*discordgo.Session, *discordgo.InteractionCreate){},
	}
	for _, f := range features {
		b.commands = append(b.commands, f.Commands()...)
		for name, handler := range f.Interactions() {
			if _, dup := b.handlers[name]; dup {
				log.WithField("command", name).Warn("Дублирующаяся команда, перезаписываем обработчик")
			}
			b.handlers[name] = handler
		}
	}
	return b
}

// Start подключает диспетчер взаимодействий и регистрирует слэш-команды
// глобально (BulkOverwrite заменяет весь набор разом, устаревшие
// команды исчезают сами). Сессия должна быть уже открыта.
func (b *Bot) Start() error {
	b.session.AddHandler(b.onInteraction)

	if _, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, "", b.commands); err != nil {
		return fmt.Errorf("ошибка регистрации слэш-команд: %w", err)
	}

	log.WithField("commands", len(b.commands)).Info("Бот запущен, слэш-команды зарегистрированы")
	return nil
}

// Stop закрывает сессию Discord.
func (b *Bot) Stop() {
	if err := b.session.Close(); err != nil {
		log.WithError(err).Error("Ошибка закрытия сессии Discord")
	}
	log.Info("Сессия Discord закрыта")
}

// onInteraction маршрутизирует слэш-команду к обработчику её фичи.
func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	defer middleware.RecoverFromPanic()

	middleware.LogCommand(i)

	name := i.ApplicationCommandData().Name
	handler, ok := b.handlers[name]
	if !ok {
		log.WithField("command", name).Warn("Команда без обработчика")
		return
	}
	handler(s, i)
}
