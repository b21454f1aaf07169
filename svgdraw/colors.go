package svgdraw

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// subset of the CSS named colors, enough for hand authored documents
var namedColors = map[string]color.RGBA{
	"black":   {0x00, 0x00, 0x00, 0xff},
	"silver":  {0xc0, 0xc0, 0xc0, 0xff},
	"gray":    {0x80, 0x80, 0x80, 0xff},
	"grey":    {0x80, 0x80, 0x80, 0xff},
	"white":   {0xff, 0xff, 0xff, 0xff},
	"maroon":  {0x80, 0x00, 0x00, 0xff},
	"red":     {0xff, 0x00, 0x00, 0xff},
	"purple":  {0x80, 0x00, 0x80, 0xff},
	"fuchsia": {0xff, 0x00, 0xff, 0xff},
	"magenta": {0xff, 0x00, 0xff, 0xff},
	"green":   {0x00, 0x80, 0x00, 0xff},
	"lime":    {0x00, 0xff, 0x00, 0xff},
	"olive":   {0x80, 0x80, 0x00, 0xff},
	"yellow":  {0xff, 0xff, 0x00, 0xff},
	"navy":    {0x00, 0x00, 0x80, 0xff},
	"blue":    {0x00, 0x00, 0xff, 0xff},
	"teal":    {0x00, 0x80, 0x80, 0xff},
	"aqua":    {0x00, 0xff, 0xff, 0xff},
	"cyan":    {0x00, 0xff, 0xff, 0xff},
	"orange":  {0xff, 0xa5, 0x00, 0xff},
}

// parseSVGColor parses a fill or stroke value.
// ok is false for "none" (a valid value disabling the paint).
func parseSVGColor(s string) (c color.RGBA, ok bool, err error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "none" || s == "transparent":
		return color.RGBA{}, false, nil
	case s == "currentColor":
		return color.RGBA{A: 0xff}, true, nil
	case strings.HasPrefix(s, "#"):
		c, err = parseHexColor(s[1:])
		return c, err == nil, err
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		c, err = parseRGBColor(s[4 : len(s)-1])
		return c, err == nil, err
	default:
		if c, found := namedColors[strings.ToLower(s)]; found {
			return c, true, nil
		}
		return color.RGBA{}, false, fmt.Errorf("unsupported color %q", s)
	}
}

func parseHexColor(hexs string) (color.RGBA, error) {
	var parts [3]uint8
	switch len(hexs) {
	case 3:
		for i := range parts {
			v, err := strconv.ParseUint(hexs[i:i+1], 16, 8)
			if err != nil {
				return color.RGBA{}, err
			}
			parts[i] = uint8(v * 0x11)
		}
	case 6:
		for i := range parts {
			v, err := strconv.ParseUint(hexs[2*i:2*i+2], 16, 8)
			if err != nil {
				return color.RGBA{}, err
			}
			parts[i] = uint8(v)
		}
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", "#"+hexs)
	}
	return color.RGBA{parts[0], parts[1], parts[2], 0xff}, nil
}

func parseRGBColor(body string) (color.RGBA, error) {
	fields := strings.Split(body, ",")
	if len(fields) != 3 {
		return color.RGBA{}, fmt.Errorf("invalid rgb() color %q", body)
	}
	var parts [3]uint8
	for i, f := range fields {
		f = strings.TrimSpace(f)
		percent := strings.HasSuffix(f, "%")
		f = strings.TrimSuffix(f, "%")
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return color.RGBA{}, err
		}
		if percent {
			v = v * 255 / 100
		}
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		parts[i] = uint8(v)
	}
	return color.RGBA{parts[0], parts[1], parts[2], 0xff}, nil
}
