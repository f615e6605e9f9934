package transcript

import (
	"chat-collect/domain"
	"fmt"
	"regexp"
	"strings"
	"time"
)

type Side string

const (
	Left  Side = "left"
	Right Side = "right"
)

// Labels name the two speakers.
type Labels struct {
	Self  string
	Other string
}

var DefaultLabels = Labels{Self: "あなた", Other: "相手"}

var urlPattern = regexp.MustCompile(`https?://(www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b[-a-zA-Z0-9()@:%_+.~#?&/=]*`)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"/", "&#x2F;",
	"`", "&#x60;",
	"=", "&#x3D;",
)

// EscapeHTML replaces the characters that are unsafe in HTML text and
// attribute values by entities.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// Entry is an event ready to be displayed.
type Entry struct {
	Type      domain.EventType
	From      string
	Timestamp string
	Side      Side
	Speaker   string
	Clock     string
	Body      string
}

// Render places an event: the first user's own messages and the second
// user's partner messages go on the left.
func Render(evt domain.Event, isFirstUser bool, labels Labels, loc *time.Location) Entry {
	self := evt.From == domain.Self
	side := Right
	if self == isFirstUser {
		side = Left
	}
	speaker := labels.Other
	if self {
		speaker = labels.Self
	}
	return Entry{
		Type:      evt.Type,
		From:      evt.From,
		Timestamp: evt.Timestamp,
		Side:      side,
		Speaker:   speaker,
		Clock:     Clock(evt.Timestamp, loc),
		Body:      evt.Body,
	}
}

// Clock formats the whole seconds of a timestamp as HH:MM:SS in loc.
func Clock(timestamp string, loc *time.Location) string {
	if i := strings.IndexByte(timestamp, '.'); i >= 0 {
		timestamp = timestamp[:i]
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", timestamp, time.UTC)
	if err != nil {
		return ""
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format("15:04:05")
}

// Highlight rewrites every link of body with link and every other part with
// text.
func Highlight(body string, text, link func(string) string) string {
	var b strings.Builder
	last := 0
	for _, loc := range urlPattern.FindAllStringIndex(body, -1) {
		b.WriteString(text(body[last:loc[0]]))
		b.WriteString(link(body[loc[0]:loc[1]]))
		last = loc[1]
	}
	b.WriteString(text(body[last:]))
	return b.String()
}

// HTML renders the entry with the markup of the chat page.
func (e Entry) HTML() string {
	body := Highlight(e.Body,
		func(s string) string { return strings.ReplaceAll(EscapeHTML(s), "\n", "<br/>") },
		func(u string) string {
			escaped := EscapeHTML(u)
			return fmt.Sprintf(`<a href="%s" target="_blank">%s</a>`, escaped, escaped)
		})

	var b strings.Builder
	fmt.Fprintf(&b, `<div class="msg msg-%s">`, e.Side)
	b.WriteString(`<div class="msg-avatar"></div>`)
	fmt.Fprintf(&b, `<div class="msg-bubble msg-type-%s">`, EscapeHTML(string(e.Type)))
	b.WriteString(`<div class="msg-header">`)
	fmt.Fprintf(&b, `<div class="msg-from">%s</div>`, EscapeHTML(e.From))
	fmt.Fprintf(&b, `<div class="msg-timestamp">%s</div>`, EscapeHTML(e.Timestamp))
	fmt.Fprintf(&b, `<div class="msg-user">%s</div>`, EscapeHTML(e.Speaker))
	fmt.Fprintf(&b, `<div class="msg-time">%s</div>`, e.Clock)
	b.WriteString(`</div>`)
	fmt.Fprintf(&b, `<div class="msg-body">%s</div>`, body)
	b.WriteString(`</div></div>`)
	return b.String()
}
