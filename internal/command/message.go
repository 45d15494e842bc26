package command

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"who-left-bot/internal/model"
)

// Prefix starts every command.
const Prefix = "/"

// ParseCommand extracts the lowercased trigger and the optional @mention from a
// command message such as "/Who_Left@SomeBot 12". ok is false for non-commands.
func ParseCommand(text string) (token, mention string, ok bool) {
	if !strings.HasPrefix(text, Prefix) {
		return "", "", false
	}
	head := strings.TrimPrefix(text, Prefix)
	if i := strings.IndexFunc(head, isSpace); i >= 0 {
		head = head[:i]
	}
	if at := strings.Index(head, "@"); at >= 0 {
		mention = head[at+1:]
		head = head[:at]
	}
	return strings.ToLower(head), mention, true
}

// Arguments returns the text after the command token.
func Arguments(text string) string {
	i := strings.IndexFunc(text, isSpace)
	if i < 0 {
		return ""
	}
	return strings.TrimSpace(text[i:])
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t' || r == '\r'
}

// NormalizeTrigger lowercases a trigger and strips the command prefix.
func NormalizeTrigger(trigger string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(trigger), Prefix))
}

// UserProfile converts a Telegram user to the stored profile.
func UserProfile(u *tgbotapi.User) model.UserProfile {
	return model.UserProfile{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.UserName,
		Language:  u.LanguageCode,
	}
}

// ChatProfile converts a Telegram chat to the stored profile. Private chats yield nil.
func ChatProfile(c *tgbotapi.Chat) *model.ChatProfile {
	if c == nil || c.IsPrivate() {
		return nil
	}
	return &model.ChatProfile{
		ID:       c.ID,
		Type:     c.Type,
		Title:    c.Title,
		Username: c.UserName,
	}
}

// ContentType names the payload of a message, e.g. "text", "photo" or "sticker".
func ContentType(msg *tgbotapi.Message) string {
	switch {
	case msg.Text != "":
		return "text"
	case msg.Animation != nil:
		return "animation"
	case msg.Audio != nil:
		return "audio"
	case msg.Document != nil:
		return "document"
	case len(msg.Photo) > 0:
		return "photo"
	case msg.Sticker != nil:
		return "sticker"
	case msg.Video != nil:
		return "video"
	case msg.VideoNote != nil:
		return "video_note"
	case msg.Voice != nil:
		return "voice"
	case msg.Contact != nil:
		return "contact"
	case msg.Dice != nil:
		return "dice"
	case msg.Poll != nil:
		return "poll"
	case msg.Venue != nil:
		return "venue"
	case msg.Location != nil:
		return "location"
	case len(msg.NewChatMembers) > 0:
		return "new_chat_members"
	case msg.LeftChatMember != nil:
		return "left_chat_member"
	case msg.NewChatTitle != "":
		return "new_chat_title"
	case len(msg.NewChatPhoto) > 0:
		return "new_chat_photo"
	case msg.PinnedMessage != nil:
		return "pinned_message"
	default:
		return "unknown"
	}
}

// Text returns the text or the caption of a message.
func Text(msg *tgbotapi.Message) string {
	if msg.Text != "" {
		return msg.Text
	}
	return msg.Caption
}
