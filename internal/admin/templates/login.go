package templates

import (
	"context"

	"github.com/a-h/templ"

	"ecocycle.app/storefront/internal/admin/httpserver/middleware"
)

// LoginData drives the console sign-in form.
type LoginData struct {
	Chrome   Chrome
	Username string
	Next     string
	Error    string
	Notice   string
}

// LoginPage renders the admin sign-in form.
func LoginPage(data LoginData) templ.Component {
	if data.Chrome.Title == "" {
		data.Chrome.Title = "Sign in"
	}
	return Layout(data.Chrome, component(func(ctx context.Context, p *printer) {
		base := middleware.BasePathFromContext(ctx)
		p.raw(`<section class="auth-card"><h1>Admin sign in</h1>`)
		if data.Notice != "" {
			p.raw(`<p class="notice" data-testid="login-notice">`)
			p.text(data.Notice)
			p.raw(`</p>`)
		}
		if data.Error != "" {
			p.raw(`<p class="form-error" role="alert">`)
			p.text(data.Error)
			p.raw(`</p>`)
		}
		p.raw(`<form method="post" action="`)
		p.url(joinPath(base, "login"))
		p.raw(`"><input type="hidden" name="csrf_token" value="`)
		p.text(data.Chrome.CSRFToken)
		p.raw(`"><input type="hidden" name="next" value="`)
		p.text(data.Next)
		p.raw(`"><label>Username <input type="text" name="username" autocomplete="username" required value="`)
		p.text(data.Username)
		p.raw(`"></label><label>Password <input type="password" name="password" autocomplete="current-password" required></label>`)
		p.raw(`<button type="submit" class="button">Sign in</button></form></section>`)
	}))
}
