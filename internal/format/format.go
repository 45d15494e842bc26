// Package format renders user-facing text: escaping, user names, plurals and report chunks.
package format

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"who-left-bot/internal/model"
)

// MentionStyle selects how a user name is turned into a clickable mention.
type MentionStyle int

const (
	MentionNone MentionStyle = iota
	MentionMarkdown
)

// Person is the minimal set of fields needed to display a user.
type Person struct {
	ID        int64
	FirstName string
	LastName  string
	Username  string
}

// PersonFromUser converts a stored user.
func PersonFromUser(u *model.User) Person {
	p := Person{ID: u.ID, FirstName: u.FirstName}
	if u.LastName != nil {
		p.LastName = *u.LastName
	}
	if u.Username != nil {
		p.Username = *u.Username
	}
	return p
}

// NameOptions tune UserName.
type NameOptions struct {
	WithUsername bool
	Mention      MentionStyle
}

// Hangul filler is used to fake empty names.
const hangulFiller = "ᅠ"

// UserName renders "First @username Last" with optional mention markup.
func UserName(p Person, opts NameOptions) string {
	name := p.FirstName
	if opts.WithUsername && p.Username != "" {
		name += " @" + p.Username
	}
	if p.LastName != "" {
		name += " " + p.LastName
	}
	name = strings.TrimSpace(strings.ReplaceAll(name, hangulFiller, ""))
	if name == "" {
		name = fmt.Sprintf("id%d", p.ID)
	}

	switch opts.Mention {
	case MentionMarkdown:
		return fmt.Sprintf("[%s](tg://user?id=%d)", EscapeMarkdown(name), p.ID)
	default:
		return name
	}
}

// Escape encodes text for the HTML parse mode.
func Escape(s string) string {
	return html.EscapeString(s)
}

// EscapeMarkdown escapes text for the MarkdownV2 parse mode.
func EscapeMarkdown(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdownV2, strings.ReplaceAll(s, `\`, `\\`))
}

// EscapeChunks HTML-escapes s and splits the result into pieces: the first of at most
// first runes, the rest of at most rest runes. Entities are never cut and every piece
// carries at least one rune of s.
func EscapeChunks(s string, first, rest int) []string {
	var (
		chunks []string
		b      strings.Builder
		size   int
	)
	limit := first
	for _, r := range s {
		escaped := html.EscapeString(string(r))
		width := utf8.RuneCountInString(escaped)
		if size > 0 && size+width > limit {
			chunks = append(chunks, b.String())
			b.Reset()
			size = 0
			limit = rest
		}
		b.WriteString(escaped)
		size += width
	}
	if size > 0 {
		chunks = append(chunks, b.String())
	}
	return chunks
}

// Plural renders n with the Russian form for it: many ("5 часов"), one ("1 час")
// or few ("2 часа").
func Plural(n int, many, one, few string) string {
	abs := n
	if abs < 0 {
		abs = -abs
	}
	form := many
	switch {
	case abs%10 == 1 && abs%100 != 11:
		form = one
	case abs%10 >= 2 && abs%10 <= 4 && (abs%100 < 12 || abs%100 > 14):
		form = few
	}
	return fmt.Sprintf("%d %s", n, form)
}

// Ago describes how long ago something happened, in Russian.
func Ago(d time.Duration) string {
	if d < time.Minute {
		return "только что"
	}
	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)

	switch {
	case days > 0 && hours > 0:
		return fmt.Sprintf("%s %s назад", Plural(days, "дней", "день", "дня"), Plural(hours, "часов", "час", "часа"))
	case days > 0:
		return Plural(days, "дней", "день", "дня") + " назад"
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%s %s назад", Plural(hours, "часов", "час", "часа"), Plural(minutes, "минут", "минуту", "минуты"))
	case hours > 0:
		return Plural(hours, "часов", "час", "часа") + " назад"
	default:
		return Plural(minutes, "минут", "минуту", "минуты") + " назад"
	}
}

// Hours renders a look-back window: "сутки" for 24 hours, otherwise "N часов".
func Hours(hours int) string {
	if hours == 24 {
		return "сутки"
	}
	return Plural(hours, "часов", "час", "часа")
}
