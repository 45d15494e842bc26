package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"who-left-bot/internal/command"
	"who-left-bot/internal/format"
)

const (
	defaultWindowHours = 24
	maxWindowHours     = 30 * 24

	iconSad   = "😢"
	iconHeart = "❤️"
)

// WhoLeft lists the members who left the group recently.
type WhoLeft struct {
	command.Base
	api   Sender
	store Store
	now   func() time.Time
}

func NewWhoLeft(deps Deps) (*WhoLeft, error) {
	if deps.API == nil || deps.Store == nil {
		return nil, fmt.Errorf("who_left needs an api and a store")
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &WhoLeft{api: deps.API, store: deps.Store, now: now}, nil
}

func (c *WhoLeft) Name() string        { return "Кто покинул чат?" }
func (c *WhoLeft) Triggers() []string  { return []string{"who_left"} }
func (c *WhoLeft) Description() string { return "Кто покинул чат?" }

func (c *WhoLeft) Guards() []command.Guard {
	return []command.Guard{command.LogActivity(c.store), command.Typing(c.api)}
}

func (c *WhoLeft) Invoke(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.Chat == nil || msg.Chat.IsPrivate() {
		return nil
	}

	hours, ok := parseWindow(command.Arguments(msg.Text))
	if !ok {
		return reply(c.api, msg, fmt.Sprintf("Укажи число часов от 1 до %d, например: /who_left 6", maxWindowHours), "")
	}

	departures, err := c.store.RecentDepartures(ctx, msg.Chat.ID, time.Duration(hours)*time.Hour)
	if err != nil {
		return err
	}

	window := "последние " + format.Hours(hours)
	if len(departures) == 0 {
		return reply(c.api, msg, fmt.Sprintf("За %s никто из чата не выходил! %s", window, iconHeart), "")
	}

	now := c.now()
	var b strings.Builder
	b.WriteString(format.EscapeMarkdown(fmt.Sprintf("%s За %s из чата вышли:", iconSad, window)) + "\n")
	for _, d := range departures {
		person := format.Person{ID: d.UserID}
		if d.User != nil {
			person = format.PersonFromUser(d.User)
		}
		b.WriteString(fmt.Sprintf("• %s %s\n",
			format.UserName(person, format.NameOptions{WithUsername: true, Mention: format.MentionMarkdown}),
			format.EscapeMarkdown("— "+format.Ago(now.Sub(d.LeftAt)))))
	}
	return reply(c.api, msg, strings.TrimSpace(b.String()), tgbotapi.ModeMarkdownV2)
}

func parseWindow(arg string) (int, bool) {
	if arg == "" {
		return defaultWindowHours, true
	}
	hours, err := strconv.Atoi(strings.Fields(arg)[0])
	if err != nil || hours < 1 || hours > maxWindowHours {
		return 0, false
	}
	return hours, true
}
