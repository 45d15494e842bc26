// Package commands contains the built-in command handlers and their factory table.
package commands

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"who-left-bot/internal/command"
	"who-left-bot/internal/model"
)

// Sender sends replies and chat actions.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Store is what the built-in commands need from the activity store.
type Store interface {
	command.ActivityRecorder
	RecentDepartures(ctx context.Context, chatID int64, window time.Duration) ([]model.Departure, error)
}

// Registry is what the built-in commands need from the command registry.
type Registry interface {
	Reload(ctx context.Context) error
	Menu() []command.MenuEntry
}

// Deps are shared by every built-in handler.
type Deps struct {
	API      Sender
	Store    Store
	Registry Registry
	Admins   command.AccessList
	Now      func() time.Time
}

// Factories returns the factory table of the built-in handlers keyed by id.
func Factories(deps Deps) command.Factories {
	return command.Factories{
		"who_left": func() (command.Handler, error) { return handler(NewWhoLeft(deps)) },
		"reload":   func() (command.Handler, error) { return handler(NewReload(deps)) },
		"help":     func() (command.Handler, error) { return handler(NewHelp(deps)) },
	}
}

// handler keeps a failed constructor from leaking a typed nil into the interface.
func handler[H command.Handler](h H, err error) (command.Handler, error) {
	if err != nil {
		return nil, err
	}
	return h, nil
}

func reply(api Sender, msg *tgbotapi.Message, text, parseMode string) error {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	out.ParseMode = parseMode
	out.DisableWebPagePreview = true
	if _, err := api.Send(out); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}
