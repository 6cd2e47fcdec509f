package extract

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/pdxkit/clausewitz/internal/types"
	"github.com/pdxkit/clausewitz/script"
)

// RGB is an 8-bit color.
type RGB struct {
	R, G, B uint8
}

// Hex returns the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalJSON encodes the color as [r, g, b].
func (c RGB) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]uint8{c.R, c.G, c.B})
}

// MarshalYAML encodes the color as [r, g, b].
func (c RGB) MarshalYAML() (any, error) {
	return []int{int(c.R), int(c.G), int(c.B)}, nil
}

// HSVToRGB converts a color with every component in [0, 1]. The hue
// wraps, so 1.0 is red again.
func HSVToRGB(h, s, v float64) RGB {
	h -= math.Floor(h)
	s = clamp01(s)
	v = clamp01(v)

	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return RGB{R: channel(r * 255), G: channel(g * 255), B: channel(b * 255)}
}

func clamp01(x float64) float64 {
	return math.Min(1, math.Max(0, x))
}

func channel(x float64) uint8 {
	return uint8(math.Min(255, math.Max(0, math.Round(x))))
}

// CountryColors reads the color of every country entry. Entries without
// a color, or with one that cannot be read, are skipped.
func CountryColors(doc *script.Document, opts ...Option) (map[string]RGB, []script.Diagnostic) {
	x := newExtraction(KindColors, doc, opts)
	out := make(map[string]RGB)
	for _, e := range doc.Entries {
		f, ok := e.Body.Lookup(script.Ident("color"))
		if !ok {
			x.Trace("entry without color", slog.String("tag", e.Name))
			continue
		}
		c, err := parseColor(f.Value.Last())
		if err != nil {
			x.warn(types.DiagInvalidColor, f.Line, "%s: %v", e.Name, err)
			continue
		}
		out[e.Name] = c
	}
	x.Log(slog.LevelDebug, "colors extracted", slog.Int("count", len(out)))
	return out, x.diags
}

func parseColor(n script.Node) (RGB, error) {
	space := "rgb"
	if t, ok := n.(*script.Tagged); ok {
		space = strings.ToLower(t.Tag)
		n = t.Value
	}
	l, ok := n.(*script.List)
	if !ok {
		return RGB{}, fmt.Errorf("color is a %s, not a list", describe(n))
	}
	nums, ok := numbers(l)
	if !ok || len(nums) != 3 {
		return RGB{}, fmt.Errorf("color needs three numbers")
	}
	switch space {
	case "rgb":
		return RGB{R: channel(nums[0]), G: channel(nums[1]), B: channel(nums[2])}, nil
	case "hsv":
		return HSVToRGB(nums[0], nums[1], nums[2]), nil
	case "hsv360":
		return HSVToRGB(nums[0]/360, nums[1]/100, nums[2]/100), nil
	}
	return RGB{}, fmt.Errorf("unknown color space %q", space)
}
