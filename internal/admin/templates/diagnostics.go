package templates

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"ecocycle.app/storefront/internal/admin/httpserver/middleware"
	"ecocycle.app/storefront/internal/media"
)

// DiagnosticsData drives the image availability report.
type DiagnosticsData struct {
	Chrome  Chrome
	Results []media.CheckResult
	Extra   []string
	Error   *Notice
}

// Loaded counts the images that could be fetched.
func (d DiagnosticsData) Loaded() int {
	n := 0
	for _, r := range d.Results {
		if r.Available {
			n++
		}
	}
	return n
}

// DiagnosticsPage renders the image checker results.
func DiagnosticsPage(data DiagnosticsData) templ.Component {
	if data.Chrome.Title == "" {
		data.Chrome.Title = "Image diagnostics"
	}
	return Layout(data.Chrome, component(func(ctx context.Context, p *printer) {
		base := middleware.BasePathFromContext(ctx)
		p.raw(`<div class="page-head"><h1>Image diagnostics</h1><p>Checks that product images and the placeholder can be loaded.</p></div>`)
		p.raw(`<form method="get" class="inline-form" action="`)
		p.url(joinPath(base, "diagnostics/images"))
		p.raw(`"><label>Extra path <input type="text" name="path" placeholder="/media/products/item.png" value="`)
		if len(data.Extra) > 0 {
			p.text(data.Extra[len(data.Extra)-1])
		}
		p.raw(`"></label><button type="submit" class="button">Check</button></form>`)
		if data.Error != nil {
			p.component(ctx, noticePanel(*data.Error))
			return
		}
		p.raw(`<p class="summary" data-testid="diagnostics-summary">`)
		p.text(strconv.Itoa(data.Loaded()) + " of " + strconv.Itoa(len(data.Results)) + " images loaded")
		p.raw(`</p>`)
		tableHead(p, "diagnostics-table", "Input", "Resolved", "Source", "Result", "Preview")
		for _, r := range data.Results {
			p.raw(`<tr data-available="`)
			p.text(strconv.FormatBool(r.Available))
			p.raw(`">`)
			cell(p, r.Input)
			cell(p, r.URL)
			cell(p, r.Source)
			p.raw(`<td>`)
			if r.Available {
				p.raw(`<span class="badge badge-green">Loaded</span>`)
			} else {
				p.raw(`<span class="badge badge-red">Failed</span> <span class="muted">`)
				p.text(r.Error)
				p.raw(`</span>`)
			}
			p.raw(`</td><td><img loading="lazy" alt="" width="48" height="48" src="`)
			p.url(r.URL)
			p.raw(`"></td></tr>`)
		}
		p.raw(`</tbody></table>`)
	}))
}
