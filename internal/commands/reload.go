package commands

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"who-left-bot/internal/command"
)

// Reload rediscovers every command. It is hidden from the menu and admin-only.
type Reload struct {
	command.Base
	api      Sender
	registry Registry
	admins   command.AccessList
}

func NewReload(deps Deps) (*Reload, error) {
	if deps.API == nil || deps.Registry == nil {
		return nil, fmt.Errorf("reload needs an api and a registry")
	}
	return &Reload{api: deps.API, registry: deps.Registry, admins: deps.Admins}, nil
}

func (c *Reload) Name() string        { return "Reload commands" }
func (c *Reload) Triggers() []string  { return []string{"reload"} }
func (c *Reload) Description() string { return "" }

func (c *Reload) Guards() []command.Guard {
	return []command.Guard{command.AdminOnly(c.admins)}
}

func (c *Reload) Invoke(ctx context.Context, msg *tgbotapi.Message) error {
	if err := c.registry.Reload(ctx); err != nil {
		return err
	}
	return reply(c.api, msg, fmt.Sprintf("💩 Reloaded, %d command(s) in menu", len(c.registry.Menu())), "")
}
