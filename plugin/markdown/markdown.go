// Package markdown renders tutor replies for the web client and produces
// plain-text previews for conversation lists.
package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown to HTML. Safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer creates a GFM renderer with hard line breaks, matching how
// the tutor formats its answers.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
	}
}

// Render converts markdown source to HTML.
func (r *Renderer) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", errors.Wrap(err, "failed to render markdown")
	}
	return buf.String(), nil
}

var (
	codeBlockRE  = regexp.MustCompile("```[\\s\\S]*?```")
	inlineCodeRE = regexp.MustCompile("`([^`]+)`")
	linkRE       = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	symbolRE     = regexp.MustCompile(`[#*_>]+`)
	htmlTagRE    = regexp.MustCompile(`<[^>]*>`)
	multiSpaceRE = regexp.MustCompile(`\s+`)
)

// PlainText strips markdown down to a single-line preview, truncated to
// maxLen runes. Code blocks collapse to a placeholder.
func PlainText(source string, maxLen int) string {
	text := codeBlockRE.ReplaceAllString(source, "(code)")
	text = inlineCodeRE.ReplaceAllString(text, "$1")
	text = linkRE.ReplaceAllString(text, "$1")
	text = symbolRE.ReplaceAllString(text, "")
	text = htmlTagRE.ReplaceAllString(text, "")
	text = strings.TrimSpace(multiSpaceRE.ReplaceAllString(text, " "))

	if maxLen > 0 {
		runes := []rune(text)
		if len(runes) > maxLen {
			text = strings.TrimSpace(string(runes[:maxLen])) + "..."
		}
	}
	return text
}
