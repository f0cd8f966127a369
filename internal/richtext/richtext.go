// Package richtext renders product descriptions written in markdown into sanitized HTML.
package richtext

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer converts markdown into HTML that is safe to embed in a page.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New returns a renderer with the storefront sanitizing policy.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
		),
		policy: newDescriptionPolicy(),
	}
}

var defaultRenderer = New()

// Render converts markdown using the default renderer.
func Render(markdown string) template.HTML {
	return defaultRenderer.Render(markdown)
}

// Render converts markdown to sanitized HTML. Conversion failures fall back to
// escaped text in a single paragraph.
func (r *Renderer) Render(markdown string) template.HTML {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return template.HTML("<p>" + html.EscapeString(markdown) + "</p>")
	}
	// #nosec G203 -- output passed through the bluemonday policy.
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes()))
}

// Plain strips all markup, which is what listing cards show.
func (r *Renderer) Plain(markdown string) string {
	rendered := r.Render(markdown)
	if rendered == "" {
		return ""
	}
	text := bluemonday.StrictPolicy().Sanitize(string(rendered))
	return strings.Join(strings.Fields(html.UnescapeString(text)), " ")
}

// Plain strips markup using the default renderer.
func Plain(markdown string) string {
	return defaultRenderer.Plain(markdown)
}

func newDescriptionPolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span")
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)
	return policy
}
