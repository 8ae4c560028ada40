// Package mailtext turns raw email payloads into classifier-ready text.
package mailtext

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// MaxBodyLength bounds the text sent to the classifier and embedder;
// anything past this rarely adds signal and burns tokens.
const MaxBodyLength = 3000

var whitespace = regexp.MustCompile(`\s+`)

// FromHTML extracts readable text from an HTML body, dropping style,
// script and image subtrees.
func FromHTML(raw string) string {
	node, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return Clean(raw)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "style", "script", "img", "head":
				return
			}
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	return Clean(b.String())
}

// Clean collapses whitespace and trims.
func Clean(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// Combine builds the subject-plus-body text shared by classification and
// embedding, truncated to MaxBodyLength.
func Combine(subject, body string) string {
	text := "Subject: " + Clean(subject) + "\n\n" + Clean(body)
	if len(text) > MaxBodyLength {
		// Cut on a rune boundary so the tail stays valid UTF-8
		cut := MaxBodyLength
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text
}
