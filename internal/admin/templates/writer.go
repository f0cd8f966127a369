// Package templates renders the admin console as templ components.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// printer writes markup and keeps the first error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

// text writes s HTML-escaped. Attribute values go through it as well.
func (p *printer) text(s string) {
	p.raw(templ.EscapeString(s))
}

// url writes a sanitized, escaped URL.
func (p *printer) url(s string) {
	p.text(string(templ.URL(s)))
}

func (p *printer) component(ctx context.Context, c templ.Component) {
	if p.err != nil || c == nil {
		return
	}
	p.err = c.Render(ctx, p.w)
}

func component(fn func(ctx context.Context, p *printer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		fn(ctx, p)
		return p.err
	})
}

// Text returns a component that renders value escaped.
func Text(value string) templ.Component {
	return component(func(_ context.Context, p *printer) { p.text(value) })
}
