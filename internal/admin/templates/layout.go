package templates

import (
	"context"
	"time"

	"github.com/a-h/templ"

	"ecocycle.app/storefront/internal/admin/httpserver/middleware"
)

// Chrome is the per-request data the console shell needs.
type Chrome struct {
	Title     string
	CSRFToken string
	// UserName is empty on the login page.
	UserName string
	Flash    string
}

// Layout wraps body in the console document.
func Layout(chrome Chrome, body templ.Component) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		base := middleware.BasePathFromContext(ctx)
		env := middleware.EnvironmentFromContext(ctx)

		p.raw(`<!doctype html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>`)
		if chrome.Title != "" {
			p.text(chrome.Title)
			p.raw(` | `)
		}
		p.raw(`EcoCycle Admin</title>`)
		p.raw(`<meta name="csrf-token" content="`)
		p.text(chrome.CSRFToken)
		p.raw(`"><link rel="stylesheet" href="/assets/app.css">`)
		p.raw(`<script src="https://unpkg.com/htmx.org@1.9.12" defer></script><script src="/assets/app.js" defer></script></head>`)
		p.raw(`<body class="admin"><header class="site-header"><a class="brand" href="`)
		p.url(base)
		p.raw(`">EcoCycle Admin</a><span class="env-badge" data-testid="environment">`)
		p.text(env)
		p.raw(`</span>`)
		if chrome.UserName != "" {
			p.raw(`<div class="account"><span class="account-name">`)
			p.text(chrome.UserName)
			p.raw(`</span><form method="post" class="inline" action="`)
			p.url(joinPath(base, "logout"))
			p.raw(`"><input type="hidden" name="csrf_token" value="`)
			p.text(chrome.CSRFToken)
			p.raw(`"><button type="submit" class="link">Sign out</button></form></div>`)
		}
		p.raw(`</header><main id="main" class="container">`)
		if chrome.Flash != "" {
			p.raw(`<div class="flash flash-info" role="status">`)
			p.text(chrome.Flash)
			p.raw(`</div>`)
		}
		p.component(ctx, body)
		p.raw(`</main><footer class="site-footer"><p>&copy; `)
		p.text(time.Now().Format("2006"))
		p.raw(` EcoCycle</p></footer></body></html>`)
	})
}

func joinPath(base, suffix string) string {
	if base == "" || base == "/" {
		return "/" + suffix
	}
	return base + "/" + suffix
}
