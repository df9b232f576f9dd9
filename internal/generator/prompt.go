package generator

import (
	"strings"
)

const basePrompt = "Generate a complete responsive HTML and CSS website. " +
	"All CSS must be inside the HTML page. " +
	"Return only the HTML document."

// BuildPrompt assembles the model instruction for prompt, optionally
// revising existingHTML.
func BuildPrompt(prompt, existingHTML string) string {
	var b strings.Builder
	b.WriteString(basePrompt)
	b.WriteString(" ")
	b.WriteString(prompt)

	if strings.TrimSpace(existingHTML) != "" {
		b.WriteString("\n\nModify the following existing page to satisfy the request above. ")
		b.WriteString("Keep everything the request does not ask to change.\n\n")
		b.WriteString(existingHTML)
	}
	return b.String()
}

// ExtractHTML strips markdown code fences and surrounding prose from a model
// reply. It returns "" when the reply holds no markup.
func ExtractHTML(text string) string {
	text = strings.TrimSpace(text)

	if start := strings.Index(text, "```"); start >= 0 {
		body := text[start+3:]
		// Drop the info string ("html", "HTML", ...) on the opening fence line.
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			body = body[nl+1:]
		} else {
			body = ""
		}
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		text = strings.TrimSpace(body)
	}

	if i := indexFold(text, "<!doctype"); i > 0 {
		text = text[i:]
	} else if i := indexFold(text, "<html"); i > 0 {
		text = text[i:]
	}

	if !strings.Contains(text, "<") {
		return ""
	}
	return text
}

// indexFold is a case-insensitive strings.Index for an ASCII needle.
func indexFold(s, needle string) int {
	for i := 0; i+len(needle) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(needle)], needle) {
			return i
		}
	}
	return -1
}
