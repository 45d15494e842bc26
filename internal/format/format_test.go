package format

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"who-left-bot/internal/model"
)

func TestUserName(t *testing.T) {
	p := Person{ID: 42, FirstName: "Ann", LastName: "Lee <3", Username: "ann"}

	tests := []struct {
		opts NameOptions
		want string
	}{
		{NameOptions{}, "Ann Lee <3"},
		{NameOptions{WithUsername: true}, "Ann @ann Lee <3"},
		{NameOptions{Mention: MentionMarkdown}, `[Ann Lee <3](tg://user?id=42)`},
		{NameOptions{WithUsername: true, Mention: MentionMarkdown}, `[Ann @ann Lee <3](tg://user?id=42)`},
	}
	for _, tt := range tests {
		if got := UserName(p, tt.opts); got != tt.want {
			t.Fatalf("UserName(%+v) = %q, want %q", tt.opts, got, tt.want)
		}
	}
}

func TestUserName_FillerOnly(t *testing.T) {
	got := UserName(Person{ID: 7, FirstName: "ᅠᅠ"}, NameOptions{})
	if got != "id7" {
		t.Fatalf("expected id fallback, got %q", got)
	}
}

func TestPersonFromUser(t *testing.T) {
	last, un := "Lee", "ann"
	p := PersonFromUser(&model.User{ID: 1, FirstName: "Ann", LastName: &last, Username: &un})
	if p != (Person{ID: 1, FirstName: "Ann", LastName: "Lee", Username: "ann"}) {
		t.Fatalf("unexpected person %+v", p)
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := map[string]string{
		"a_b*c.d!":   `a\_b\*c\.d\!`,
		`back\slash`: `back\\slash`,
		"[x](y)":     `\[x\]\(y\)`,
		"plain":      "plain",
	}
	for in, want := range tests {
		if got := EscapeMarkdown(in); got != want {
			t.Fatalf("EscapeMarkdown(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEscapeChunks(t *testing.T) {
	chunks := EscapeChunks("абвгдеё", 3, 3)
	if len(chunks) != 3 || chunks[0] != "абв" || chunks[2] != "ё" {
		t.Fatalf("unexpected chunks %q", chunks)
	}
	if EscapeChunks("", 3, 3) != nil {
		t.Fatalf("expected nil chunks for empty input")
	}

	chunks = EscapeChunks(strings.Repeat("<x>", 1500), 3000, 3000)
	if len(chunks) < 2 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}
	var joined strings.Builder
	for _, c := range chunks {
		if n := utf8.RuneCountInString(c); n > 3000 {
			t.Fatalf("chunk has %d runes", n)
		}
		if !utf8.ValidString(c) {
			t.Fatalf("chunk %q is not valid utf-8", c)
		}
		if strings.HasSuffix(c, "&gt") || strings.HasSuffix(c, "&l") || strings.HasSuffix(c, "&lt") {
			t.Fatalf("chunk ends inside an entity: %q", c[len(c)-8:])
		}
		joined.WriteString(c)
	}
	if joined.String() != Escape(strings.Repeat("<x>", 1500)) {
		t.Fatalf("chunks do not add up to the escaped text")
	}

	if chunks := EscapeChunks("&&", 1, 1); len(chunks) != 2 || chunks[0] != "&amp;" {
		t.Fatalf("an entity wider than n must still be kept whole, got %q", chunks)
	}

	if chunks := EscapeChunks("abcdef", 2, 4); len(chunks) != 2 || chunks[0] != "ab" || chunks[1] != "cdef" {
		t.Fatalf("first piece must use its own limit, got %q", chunks)
	}
}

func TestPlural(t *testing.T) {
	tests := map[int]string{
		0: "0 часов", 1: "1 час", 2: "2 часа", 4: "4 часа", 5: "5 часов",
		11: "11 часов", 12: "12 часов", 21: "21 час", 22: "22 часа", 111: "111 часов", 112: "112 часов",
	}
	for n, want := range tests {
		if got := Plural(n, "часов", "час", "часа"); got != want {
			t.Fatalf("Plural(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestAgo(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "только что"},
		{5 * time.Minute, "5 минут назад"},
		{time.Hour, "1 час назад"},
		{2*time.Hour + time.Minute, "2 часа 1 минуту назад"},
		{25 * time.Hour, "1 день 1 час назад"},
		{48 * time.Hour, "2 дня назад"},
	}
	for _, tt := range tests {
		if got := Ago(tt.d); got != tt.want {
			t.Fatalf("Ago(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestHours(t *testing.T) {
	if Hours(24) != "сутки" || Hours(6) != "6 часов" || Hours(1) != "1 час" {
		t.Fatalf("unexpected window rendering")
	}
}
