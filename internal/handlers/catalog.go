package handlers

import (
	"html/template"
	"net/url"
	"sort"
	"strings"

	"ecocycle.app/storefront/internal/backend"
	"ecocycle.app/storefront/internal/format"
	"ecocycle.app/storefront/internal/media"
	"ecocycle.app/storefront/internal/richtext"
)

// maxQuantityOptions caps the quantity selector for well-stocked products.
const maxQuantityOptions = 10

// ProductCard is one tile of the product grid.
type ProductCard struct {
	ID       string
	Href     string
	Name     string
	Price    string
	Category string
	Summary  string
	Image    string
	InStock  bool
}

// ProductsView backs the product listing page.
type ProductsView struct {
	Cards      []ProductCard
	Query      string
	Category   string
	Categories []string
	Total      int
	Empty      bool
	Filtered   bool
}

// BuildProductsView filters products by a case-insensitive name substring and
// an exact category, then renders the cards.
func BuildProductsView(products []backend.Product, resolver media.Resolver, query, category, lang string) *ProductsView {
	query = strings.TrimSpace(query)
	category = strings.TrimSpace(category)
	needle := strings.ToLower(query)

	view := &ProductsView{
		Query:    query,
		Category: category,
		Total:    len(products),
		Filtered: query != "" || category != "",
	}
	seen := map[string]bool{}
	for _, p := range products {
		if cat := p.Category.String(); cat != "" && !seen[cat] {
			seen[cat] = true
			view.Categories = append(view.Categories, cat)
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		if category != "" && !strings.EqualFold(p.Category.String(), category) {
			continue
		}
		view.Cards = append(view.Cards, newProductCard(p, resolver, lang))
	}
	sort.Strings(view.Categories)
	view.Empty = len(view.Cards) == 0
	return view
}

func newProductCard(p backend.Product, resolver media.Resolver, lang string) ProductCard {
	id := p.ID.String()
	return ProductCard{
		ID:       id,
		Href:     "/products/" + url.PathEscape(id),
		Name:     displayName(p.Name),
		Price:    format.Baht(p.Price.Float64(), lang),
		Category: p.Category.String(),
		Summary:  summarize(richtext.Plain(p.Description), 120),
		Image:    resolver.Resolve(p.ImageRef()),
		InStock:  p.Available() > 0,
	}
}

// ProductDetail backs the product page.
type ProductDetail struct {
	ID          string
	Name        string
	Price       string
	Description template.HTML
	Category    string
	Image       string
	Stock       int
	OutOfStock  bool
	Quantities  []int
}

// BuildProductDetail renders a product for its page. The quantity selector is
// bounded to 1..stock.
func BuildProductDetail(p backend.Product, resolver media.Resolver, lang string) *ProductDetail {
	stock := p.Available()
	detail := &ProductDetail{
		ID:          p.ID.String(),
		Name:        displayName(p.Name),
		Price:       format.Baht(p.Price.Float64(), lang),
		Description: richtext.Render(p.Description),
		Category:    p.Category.String(),
		Image:       resolver.Resolve(p.ImageRef()),
		Stock:       stock,
		OutOfStock:  stock <= 0,
	}
	limit := stock
	if limit > maxQuantityOptions {
		limit = maxQuantityOptions
	}
	for q := 1; q <= limit; q++ {
		detail.Quantities = append(detail.Quantities, q)
	}
	return detail
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "Untitled product"
	}
	return strings.TrimSpace(name)
}

func summarize(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	cut := strings.TrimSpace(string(runes[:limit]))
	if i := strings.LastIndex(cut, " "); i > limit/2 {
		cut = cut[:i]
	}
	return cut + "…"
}
