package color

import (
	"fmt"
	"regexp"
	"strings"
)

var hexRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Color is one entry of the global palette used by color-picker facets.
type Color struct {
	name  string
	hex   string
	image string
}

// New validates and creates a Color. Either hex or image must be set.
func New(name, hex, image string) (Color, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Color{}, fmt.Errorf("color name is required")
	}
	if hex == "" && image == "" {
		return Color{}, fmt.Errorf("color %q needs a hex value or an image", name)
	}
	if hex != "" && !hexRegex.MatchString(hex) {
		return Color{}, fmt.Errorf("color %q: invalid hex value %q", name, hex)
	}
	return Color{name: name, hex: hex, image: image}, nil
}

// Reconstruct creates a Color without validation (storage hydration).
func Reconstruct(name, hex, image string) Color {
	return Color{name: name, hex: hex, image: image}
}

// Name returns the color name.
func (c Color) Name() string { return c.name }

// Hex returns the #rrggbb value.
func (c Color) Hex() string { return c.hex }

// Image returns the swatch image URL.
func (c Color) Image() string { return c.image }

// Tuple returns [name, hex, image] as shown by the catalog.
func (c Color) Tuple() []string { return []string{c.name, c.hex, c.image} }
