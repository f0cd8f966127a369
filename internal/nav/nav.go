// Package nav builds the storefront header navigation and breadcrumbs.
package nav

import (
	"path"
	"strings"
)

// Item represents a top-level navigation item.
type Item struct {
	Path  string
	Label string
	// Auth items are only shown to signed-in customers.
	Auth bool
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Href   string
	Label  string
	Active bool
}

// Crumb represents a breadcrumb entry.
type Crumb struct {
	Href   string
	Label  string
	Active bool
}

// Main is the primary navigation definition.
var Main = []Item{
	{Path: "/products", Label: "Shop"},
	{Path: "/cart", Label: "Cart", Auth: true},
	{Path: "/account/orders", Label: "Orders", Auth: true},
}

// Build renders navigation items with active state given the current path.
func Build(currentPath string, signedIn bool) []RenderedItem {
	if currentPath == "" {
		currentPath = "/"
	}
	items := make([]RenderedItem, 0, len(Main))
	for _, it := range Main {
		if it.Auth && !signedIn {
			continue
		}
		items = append(items, RenderedItem{
			Href:   it.Path,
			Label:  it.Label,
			Active: isActive(it.Path, currentPath),
		})
	}
	return items
}

func isActive(itemPath, currentPath string) bool {
	if itemPath == "/" {
		return currentPath == "/"
	}
	return currentPath == itemPath || strings.HasPrefix(currentPath, itemPath+"/")
}

// Breadcrumbs builds breadcrumb entries from the current path. The last
// segment uses leaf when it is non-empty (e.g. the product name).
func Breadcrumbs(currentPath, leaf string) []Crumb {
	crumbs := []Crumb{{Href: "/", Label: "Home", Active: currentPath == "/" || currentPath == ""}}
	clean := path.Clean("/" + currentPath)
	if clean == "/" {
		return crumbs
	}

	parts := strings.Split(strings.TrimPrefix(clean, "/"), "/")
	href := ""
	for i, part := range parts {
		href += "/" + part
		label := labelFor(href, part)
		last := i == len(parts)-1
		if last && leaf != "" {
			label = leaf
		}
		crumbs = append(crumbs, Crumb{Href: href, Label: label, Active: last})
	}
	return crumbs
}

func labelFor(href, seg string) string {
	for _, it := range Main {
		if it.Path == href {
			return it.Label
		}
	}
	return titleFromSegment(seg)
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	s := strings.ReplaceAll(seg, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}
