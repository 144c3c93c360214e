// Package textutil renders Telegram message content as HTML for poster-facing
// notices.
package textutil

import (
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// RenderHTML returns the text or caption of a message with HTML special
// characters escaped, entity formatting reduced to plain text. Used when a
// review message is quoted back to the poster.
func RenderHTML(msg *tgbotapi.Message) string {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	return html.EscapeString(text)
}

// HTMLLink renders an anchor tag.
func HTMLLink(url, label string) string {
	var b strings.Builder
	b.WriteString(`<a href="`)
	b.WriteString(html.EscapeString(url))
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(label))
	b.WriteString("</a>")
	return b.String()
}
