package commands

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"who-left-bot/internal/command"
	"who-left-bot/internal/format"
)

// Help lists the published commands.
type Help struct {
	command.Base
	api      Sender
	registry Registry
}

func NewHelp(deps Deps) (*Help, error) {
	if deps.API == nil || deps.Registry == nil {
		return nil, fmt.Errorf("help needs an api and a registry")
	}
	return &Help{api: deps.API, registry: deps.Registry}, nil
}

func (c *Help) Name() string        { return "Помощь" }
func (c *Help) Triggers() []string  { return []string{"help", "start"} }
func (c *Help) Description() string { return "Список команд" }

func (c *Help) Invoke(_ context.Context, msg *tgbotapi.Message) error {
	var b strings.Builder
	b.WriteString("ℹ️ <b>Команды</b>\n")
	for _, m := range c.registry.Menu() {
		b.WriteString(fmt.Sprintf("• /%s — %s\n", m.Command, format.Escape(m.Description)))
	}
	return reply(c.api, msg, strings.TrimSpace(b.String()), tgbotapi.ModeHTML)
}
