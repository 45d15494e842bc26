package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"who-left-bot/internal/command"
	"who-left-bot/internal/config"
	"who-left-bot/internal/format"
	"who-left-bot/internal/model"
)

const (
	iconInfo  = "ℹ️"
	iconError = "⛔️"

	maxReportedRequest = 200
)

// Transport is the subset of the Telegram Bot API used by the bot.
type Transport interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Store persists users, chats and departures.
type Store interface {
	UpsertUserAndChat(ctx context.Context, user model.UserProfile, chat *model.ChatProfile) (int64, *int64, error)
	RecordDeparture(ctx context.Context, user model.UserProfile, chat model.ChatProfile) error
}

// Bot routes Telegram updates to registered commands and records departures.
type Bot struct {
	api      Transport
	self     tgbotapi.User
	registry *command.Registry
	store    Store
	config   *config.Config
}

func New(api Transport, self tgbotapi.User, registry *command.Registry, store Store, cfg *config.Config) *Bot {
	return &Bot{
		api:      api,
		self:     self,
		registry: registry,
		store:    store,
		config:   cfg,
	}
}

// RegisterSelf stores the bot's own account so that it can be referenced like any user.
func (b *Bot) RegisterSelf(ctx context.Context) error {
	if _, _, err := b.store.UpsertUserAndChat(ctx, command.UserProfile(&b.self), nil); err != nil {
		return fmt.Errorf("save bot user: %w", err)
	}
	return nil
}

// NotifyRestart tells every administrator that the bot has started.
func (b *Bot) NotifyRestart() {
	b.broadcast([]string{iconInfo + " I was restarted"}, "")
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	offset := 0
	if b.config.CleanUpdates {
		next, err := b.skipPending()
		if err != nil {
			return err
		}
		offset = next
	}

	updateConfig := tgbotapi.NewUpdate(offset)
	updateConfig.Timeout = b.config.PollTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.HandleUpdate(ctx, update)
	}

	return ctx.Err()
}

// skipPending acknowledges everything queued while the bot was offline.
func (b *Bot) skipPending() (int, error) {
	pending, err := b.api.GetUpdates(tgbotapi.UpdateConfig{Offset: -1, Limit: 1})
	if err != nil {
		return 0, fmt.Errorf("skip pending updates: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}
	last := pending[len(pending)-1].UpdateID
	log.Printf("[info] skipped pending updates up to id=%d", last)
	return last + 1, nil
}

// HandleUpdate processes a single update. It never panics.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}
	if msg.LeftChatMember != nil {
		if err := b.handleLeftChatMember(ctx, msg); err != nil {
			log.Printf("[error] record departure user=%d chat=%d: %v", msg.LeftChatMember.ID, chatID(msg), err)
		}
		return
	}
	b.handleTextMessage(ctx, msg)
}

func (b *Bot) handleTextMessage(ctx context.Context, msg *tgbotapi.Message) {
	defer func() {
		if rec := recover(); rec != nil {
			b.reportFailure(msg, fmt.Errorf("panic: %v", rec), debug.Stack())
		}
	}()

	if err := b.dispatch(ctx, msg); err != nil {
		b.reportFailure(msg, err, nil)
	}
}

func (b *Bot) dispatch(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.Text == "" || msg.ForwardFromChat != nil {
		return nil
	}

	token, mention, ok := command.ParseCommand(msg.Text)
	if !ok || token == "" {
		return nil
	}
	if mention != "" && !strings.EqualFold(mention, b.self.UserName) {
		return nil
	}

	handler, invoke, ok := b.registry.Match(token)
	if !ok {
		return nil
	}

	log.Printf("[info] command /%s from user=%d chat=%d -> %s", token, senderID(msg), chatID(msg), handler.Name())
	if err := invoke(ctx, msg); err != nil {
		return fmt.Errorf("command /%s: %w", token, err)
	}
	return nil
}

func (b *Bot) handleLeftChatMember(ctx context.Context, msg *tgbotapi.Message) error {
	chat := command.ChatProfile(msg.Chat)
	if chat == nil {
		return nil
	}
	return b.store.RecordDeparture(ctx, command.UserProfile(msg.LeftChatMember), *chat)
}

// reportFailure logs a failed invocation and sends the details to every administrator.
func (b *Bot) reportFailure(msg *tgbotapi.Message, err error, stack []byte) {
	incident := uuid.NewString()
	request := command.Text(msg)
	log.Printf("[error] incident=%s user=%d chat=%d request=%q: %v", incident, senderID(msg), chatID(msg), request, err)

	details := err.Error()
	if len(stack) > 0 {
		details += "\n\n" + string(stack)
	}
	header := fmt.Sprintf(
		"%s Exception: <code>%s</code>\nIncident: <code>%s</code>\nRequest: <code>%s</code>\n\n",
		iconError,
		format.Escape(errorKind(err, stack)),
		incident,
		format.Escape(truncate(request, maxReportedRequest)),
	)
	b.broadcast(reportChunks(header, details, b.config.ErrorChunkSize), tgbotapi.ModeHTML)
}

// reportChunks splits details into self-contained <code> blocks of at most size runes.
// The header leads the first block, or is sent alone when no room is left next to it.
func reportChunks(header, details string, size int) []string {
	const open, closing = "<code>", "</code>"
	rest := size - len(open) - len(closing)
	first := rest - utf8.RuneCountInString(header)

	var chunks []string
	if first < len("&amp;") {
		chunks = append(chunks, header)
		header, first = "", rest
	}
	for i, piece := range format.EscapeChunks(details, first, rest) {
		block := open + piece + closing
		if i == 0 {
			block = header + block
		}
		chunks = append(chunks, block)
	}
	return chunks
}

// broadcast sends every message to every administrator. Failures are logged only.
func (b *Bot) broadcast(messages []string, parseMode string) {
	for _, admin := range b.config.Admins {
		for _, text := range messages {
			out := tgbotapi.NewMessage(admin, text)
			out.ParseMode = parseMode
			if _, err := b.api.Send(out); err != nil {
				log.Printf("[warn] send to admin=%d: %v", admin, err)
			}
		}
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}

func errorKind(err error, stack []byte) string {
	if len(stack) > 0 {
		return "panic"
	}
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return fmt.Sprintf("%T", err)
		}
		err = next
	}
}

func senderID(msg *tgbotapi.Message) int64 {
	if msg.From == nil {
		return 0
	}
	return msg.From.ID
}

func chatID(msg *tgbotapi.Message) int64 {
	if msg.Chat == nil {
		return 0
	}
	return msg.Chat.ID
}
