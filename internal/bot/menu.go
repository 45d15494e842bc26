package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"who-left-bot/internal/command"
)

// MenuPublisher publishes the command menu through setMyCommands.
type MenuPublisher struct {
	api command.Requester
}

func NewMenuPublisher(api command.Requester) *MenuPublisher {
	return &MenuPublisher{api: api}
}

func (p *MenuPublisher) PublishMenu(_ context.Context, menu []command.MenuEntry) error {
	commands := make([]tgbotapi.BotCommand, 0, len(menu))
	for _, m := range menu {
		commands = append(commands, tgbotapi.BotCommand{Command: m.Command, Description: m.Description})
	}
	if _, err := p.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		return fmt.Errorf("set my commands: %w", err)
	}
	return nil
}
