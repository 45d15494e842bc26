// Package command defines the command handler contract, the guards that wrap
// handler invocation and the registry that loads handlers and routes triggers.
package command

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// InvokeFunc runs a command for an inbound message.
type InvokeFunc func(ctx context.Context, msg *tgbotapi.Message) error

// Handler is a command that can be registered in the Registry.
// The first trigger is the canonical one; handlers without triggers or without a
// description are not published in the command menu.
type Handler interface {
	Name() string
	Triggers() []string
	Description() string
	Invoke(ctx context.Context, msg *tgbotapi.Message) error
}

// Loader is implemented by handlers that need to run logic after they are registered.
type Loader interface {
	OnLoaded(ctx context.Context)
}

// Unloader is implemented by handlers that need to release resources when they are removed.
type Unloader interface {
	OnUnloaded()
}

// Guarded is implemented by handlers that want guards around their invocation.
// The first guard is the outermost one.
type Guarded interface {
	Guards() []Guard
}

// Factory builds a handler. Each factory runs in isolation during discovery.
type Factory func() (Handler, error)

// Factories maps handler ids to their factories.
type Factories map[string]Factory

// Base can be embedded by handlers to get no-op lifecycle hooks.
type Base struct{}

func (Base) OnLoaded(context.Context) {}

func (Base) OnUnloaded() {}
