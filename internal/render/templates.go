// Package render turns a dialogue into chat bubble HTML.
package render

import (
	"html"
	"strings"

	"docchat/internal/domain"
)

// Placeholder is replaced by the escaped message text in the bubble templates.
const Placeholder = "{{MSG}}"

const CSS = `<style>
.chat-message { padding: 1.5rem; border-radius: 0.5rem; margin-bottom: 1rem; display: flex; }
.chat-message.user { background-color: #2b313e; }
.chat-message.bot { background-color: #475063; }
.chat-message .avatar { width: 15%; }
.chat-message .avatar span { display: inline-block; width: 48px; height: 48px; line-height: 48px;
  border-radius: 50%; text-align: center; font-weight: bold; color: #fff; background-color: #1f2430; }
.chat-message .message { width: 85%; padding: 0 1.5rem; color: #fff; white-space: pre-wrap; }
</style>`

const UserTemplate = `<div class="chat-message user">
    <div class="avatar"><span>You</span></div>
    <div class="message">{{MSG}}</div>
</div>`

const BotTemplate = `<div class="chat-message bot">
    <div class="avatar"><span>AI</span></div>
    <div class="message">{{MSG}}</div>
</div>`

// Bubble renders one turn with the template for its speaker.
func Bubble(t domain.Turn) string {
	tmpl := BotTemplate
	if t.Speaker == domain.SpeakerUser {
		tmpl = UserTemplate
	}
	return strings.Replace(tmpl, Placeholder, html.EscapeString(t.Message), 1)
}

// Transcript renders turns in order, oldest first.
func Transcript(turns []domain.Turn) string {
	var b strings.Builder
	for _, t := range turns {
		b.WriteString(Bubble(t))
		b.WriteString("\n")
	}
	return b.String()
}

// Page wraps a transcript in a standalone HTML document.
func Page(title string, turns []domain.Turn) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n")
	b.WriteString(CSS)
	b.WriteString("\n</head><body>\n<h1>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</h1>\n")
	b.WriteString(Transcript(turns))
	b.WriteString("</body></html>\n")
	return b.String()
}
