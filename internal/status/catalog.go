// Package status maps backend status codes (orders, products, roles) to display labels and badge tones.
package status

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Kind groups related status codes.
type Kind string

const (
	KindOrder   Kind = "order"
	KindProduct Kind = "product"
	KindRole    Kind = "role"
)

// DefaultTone is used for codes the catalog does not know.
const DefaultTone = "gray"

// Badge is the display form of a status code.
type Badge struct {
	Code  string `yaml:"-"`
	Label string `yaml:"label"`
	Tone  string `yaml:"tone"`
}

// Catalog holds the badges per kind.
type Catalog struct {
	entries map[Kind]map[string]Badge
}

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Parse decodes a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var raw map[Kind]map[string]Badge
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("status: parse catalog: %w", err)
	}
	entries := make(map[Kind]map[string]Badge, len(raw))
	for kind, codes := range raw {
		normalized := make(map[string]Badge, len(codes))
		for code, badge := range codes {
			code = normalizeCode(code)
			badge.Code = code
			if badge.Tone == "" {
				badge.Tone = DefaultTone
			}
			normalized[code] = badge
		}
		entries[kind] = normalized
	}
	return &Catalog{entries: entries}, nil
}

// Default returns the embedded catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(defaultCatalogYAML)
	})
	if defaultErr != nil {
		panic(defaultErr)
	}
	return defaultCatalog
}

// Lookup returns the badge for code. Unknown codes keep their text with the default tone.
func (c *Catalog) Lookup(kind Kind, code string) Badge {
	normalized := normalizeCode(code)
	if c != nil {
		if badge, ok := c.entries[kind][normalized]; ok {
			return badge
		}
	}
	label := strings.TrimSpace(code)
	if label == "" {
		label = "Unknown"
	} else {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	return Badge{Code: normalized, Label: label, Tone: DefaultTone}
}

// Known reports whether code is listed for kind.
func (c *Catalog) Known(kind Kind, code string) bool {
	if c == nil {
		return false
	}
	_, ok := c.entries[kind][normalizeCode(code)]
	return ok
}

// Order is shorthand for Default().Lookup(KindOrder, code).
func Order(code string) Badge { return Default().Lookup(KindOrder, code) }

// Product is shorthand for Default().Lookup(KindProduct, code).
func Product(code string) Badge { return Default().Lookup(KindProduct, code) }

// Role is shorthand for Default().Lookup(KindRole, code).
func Role(code string) Badge { return Default().Lookup(KindRole, code) }

func normalizeCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "canceled" {
		return "cancelled"
	}
	return code
}
