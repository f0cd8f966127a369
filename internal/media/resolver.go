package media

import (
	"path"
	"strings"
)

const (
	// PlaceholderPath is served whenever a product has no usable image.
	PlaceholderPath = "/images/placeholder.svg"
	// LocalPrefix is the path under which the storefront serves its own image files.
	LocalPrefix = "/images/"
	// MediaPrefix is the upload path used by the backend for product media.
	MediaPrefix = "/media/"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".svg":  {},
	".webp": {},
}

// Resolver maps stored image references to URLs a browser can load.
type Resolver struct {
	Placeholder string
	LocalPrefix string
	MediaPrefix string
}

// Options customises a Resolver. Empty fields keep the package defaults.
type Options struct {
	Placeholder string
	LocalPrefix string
	MediaPrefix string
}

// DefaultResolver uses the package level prefixes.
var DefaultResolver = NewResolver(Options{})

// NewResolver constructs a Resolver, normalising prefixes so they start and end with a slash.
func NewResolver(opts Options) Resolver {
	local := normalizePrefix(opts.LocalPrefix, LocalPrefix)
	placeholder := strings.TrimSpace(opts.Placeholder)
	switch {
	case placeholder == "":
		placeholder = local + path.Base(PlaceholderPath)
	case !isAbsoluteURL(placeholder) && !strings.HasPrefix(placeholder, "/"):
		placeholder = local + placeholder
	}
	return Resolver{
		Placeholder: placeholder,
		LocalPrefix: local,
		MediaPrefix: normalizePrefix(opts.MediaPrefix, MediaPrefix),
	}
}

// Resolve applies DefaultResolver to ref.
func Resolve(ref string) string {
	return DefaultResolver.Resolve(ref)
}

// Resolve returns a displayable URL for ref. It never fails and
// Resolve(Resolve(x)) == Resolve(x) for every input.
func (r Resolver) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	switch {
	case ref == "":
		return r.placeholder()
	case isAbsoluteURL(ref):
		return ref
	case strings.HasPrefix(ref, r.localPrefix()):
		return ref
	case strings.HasPrefix(ref, r.mediaPrefix()):
		name := path.Base(strings.TrimPrefix(ref, r.mediaPrefix()))
		if name == "" || name == "." || name == "/" {
			return r.placeholder()
		}
		return r.localPrefix() + name
	case isBareImageName(ref):
		return r.localPrefix() + ref
	default:
		return ref
	}
}

// IsPlaceholder reports whether url is the resolver's placeholder.
func (r Resolver) IsPlaceholder(url string) bool {
	return url == r.placeholder()
}

// PlaceholderURL returns the configured placeholder path.
func (r Resolver) PlaceholderURL() string {
	return r.placeholder()
}

func (r Resolver) placeholder() string {
	if r.Placeholder == "" {
		return PlaceholderPath
	}
	return r.Placeholder
}

func (r Resolver) localPrefix() string {
	if r.LocalPrefix == "" {
		return LocalPrefix
	}
	return r.LocalPrefix
}

func (r Resolver) mediaPrefix() string {
	if r.MediaPrefix == "" {
		return MediaPrefix
	}
	return r.MediaPrefix
}

func isAbsoluteURL(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func isBareImageName(ref string) bool {
	if strings.ContainsAny(ref, `/\`) {
		return false
	}
	_, ok := imageExtensions[strings.ToLower(path.Ext(ref))]
	return ok
}

func normalizePrefix(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if !strings.HasPrefix(value, "/") {
		value = "/" + value
	}
	if !strings.HasSuffix(value, "/") {
		value += "/"
	}
	return value
}
