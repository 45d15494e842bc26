package command

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"who-left-bot/internal/model"
)

// Guard wraps an invocation with cross-cutting behaviour.
type Guard interface {
	Wrap(next InvokeFunc) InvokeFunc
}

// GuardFunc adapts a function to the Guard interface.
type GuardFunc func(next InvokeFunc) InvokeFunc

func (f GuardFunc) Wrap(next InvokeFunc) InvokeFunc { return f(next) }

// Chain composes guards around core. guards[0] runs first.
func Chain(core InvokeFunc, guards ...Guard) InvokeFunc {
	invoke := core
	for i := len(guards) - 1; i >= 0; i-- {
		if guards[i] == nil {
			continue
		}
		invoke = guards[i].Wrap(invoke)
	}
	return invoke
}

// AccessList decides who may run administrator commands.
type AccessList interface {
	IsAdmin(id int64) bool
}

// AdminOnly drops the call silently unless the sender is an administrator.
func AdminOnly(admins AccessList) Guard {
	return GuardFunc(func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, msg *tgbotapi.Message) error {
			if msg.From == nil {
				return nil
			}
			if admins == nil || !admins.IsAdmin(msg.From.ID) {
				log.Printf("[info] ignore admin command from user=%d", msg.From.ID)
				return nil
			}
			return next(ctx, msg)
		}
	})
}

// ActivityRecorder persists issued commands.
type ActivityRecorder interface {
	RecordCommand(ctx context.Context, user model.UserProfile, chat *model.ChatProfile, command string) error
}

// LogActivity records the command text, or the content type for non-text messages,
// before calling next. Store failures abort the invocation.
func LogActivity(store ActivityRecorder) Guard {
	return GuardFunc(func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, msg *tgbotapi.Message) error {
			if msg.From != nil {
				text := msg.Text
				if text == "" {
					text = ContentType(msg)
				}
				if err := store.RecordCommand(ctx, UserProfile(msg.From), ChatProfile(msg.Chat), text); err != nil {
					return err
				}
			}
			return next(ctx, msg)
		}
	})
}

// Requester performs API calls that do not produce a message, such as chat actions.
type Requester interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Presence shows a chat action before calling next. Failures are only logged.
func Presence(sender Requester, action string) Guard {
	return GuardFunc(func(next InvokeFunc) InvokeFunc {
		return func(ctx context.Context, msg *tgbotapi.Message) error {
			if msg.Chat != nil {
				if _, err := sender.Request(tgbotapi.NewChatAction(msg.Chat.ID, action)); err != nil {
					log.Printf("[warn] send chat action %q to chat=%d: %v", action, msg.Chat.ID, err)
				}
			}
			return next(ctx, msg)
		}
	})
}

// Typing shows the "typing" indicator.
func Typing(sender Requester) Guard { return Presence(sender, tgbotapi.ChatTyping) }

// UploadingPhoto shows the "uploading photo" indicator.
func UploadingPhoto(sender Requester) Guard {
	return Presence(sender, tgbotapi.ChatUploadPhoto)
}
