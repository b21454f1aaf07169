package svgdraw

import (
	"errors"
	"image/color"
	"log"
	"strings"

	"github.com/benoitkugler/svgexport/svgdom"
	"github.com/benoitkugler/svgexport/svgpath"
)

// DefaultStyle fills black with the non-zero winding rule,
// full opacity and no stroke.
var DefaultStyle = Style{
	FillColor:         color.RGBA{A: 0xff},
	HasFill:           true,
	FillOpacity:       1,
	StrokeOpacity:     1,
	LineWidth:         2,
	UseNonZeroWinding: true,
	Transform:         svgdom.Identity,
}

// elements which are never rendered, but are not worth a warning
var silentTags = map[string]bool{
	"defs":           true,
	"title":          true,
	"desc":           true,
	"metadata":       true,
	"style":          true,
	"namedview":      true,
	"linearGradient": true,
	"radialGradient": true,
	"stop":           true,
	"filter":         true,
	"marker":         true,
	"clipPath":       true,
	"mask":           true,
	"pattern":        true,
	"symbol":         true,
	"script":         true,
	"foreignObject":  true,
}

type flattener struct {
	list  DrawList
	grads map[string]color.RGBA // gradient id -> flattened color
	mode  svgdom.ErrorMode
}

// Flatten resolves the document into a draw list: a flat sequence
// of paths with resolved styles and accumulated transforms.
// errMode determines if unsupported elements are ignored, logged,
// or rejected.
func Flatten(doc *svgdom.Document, errMode svgdom.ErrorMode) (DrawList, error) {
	f := &flattener{mode: errMode, grads: collectGradients(doc.Root)}
	f.list.ViewBox = doc.ViewBox
	err := f.walk(doc.Root, DefaultStyle)
	return f.list, err
}

func (f *flattener) unsupported(tag string) error {
	errStr := "cannot process svg element " + tag
	switch f.mode {
	case svgdom.StrictErrorMode:
		return errors.New(errStr)
	case svgdom.WarnErrorMode:
		log.Println(errStr)
	}
	return nil
}

func (f *flattener) walk(e *svgdom.Element, parent Style) error {
	if silentTags[e.Name.Local] {
		return nil
	}
	st, err := f.applyStyleAttrs(parent, e)
	if err != nil {
		return err
	}
	switch e.Kind {
	case svgdom.KindGroup:
		for _, child := range e.Children {
			if err := f.walk(child, st); err != nil {
				return err
			}
		}
		return nil
	case svgdom.KindRect:
		return f.addRect(e, st)
	case svgdom.KindCircle, svgdom.KindEllipse:
		return f.addEllipse(e, st)
	case svgdom.KindLine:
		return f.addLine(e, st)
	case svgdom.KindPolyline, svgdom.KindPolygon:
		return f.addPoly(e, st, e.Kind == svgdom.KindPolygon)
	case svgdom.KindPath:
		return f.addPath(e, st)
	default:
		return f.unsupported(e.Name.Local)
	}
}

func (f *flattener) push(p svgpath.Path, st Style) {
	if len(p) == 0 || (!st.HasFill && !st.HasStroke) {
		return
	}
	f.list.Shapes = append(f.list.Shapes, Shape{Path: p, Style: st})
}

// floatAttr returns the value of a geometry attribute, or `def`
// when absent. Unit suffixes are tolerated.
func floatAttr(e *svgdom.Element, name string, def float64) (float64, error) {
	v, ok := e.Attr("", name)
	if !ok {
		return def, nil
	}
	return svgdom.ParseDimension(v)
}

func (f *flattener) addRect(e *svgdom.Element, st Style) error {
	var geom [4]float64
	for i, name := range [4]string{"x", "y", "width", "height"} {
		v, err := floatAttr(e, name, 0)
		if err != nil {
			return err
		}
		geom[i] = v
	}
	x, y, w, h := geom[0], geom[1], geom[2], geom[3]
	if w <= 0 || h <= 0 { // not drawn, but not an error
		return nil
	}
	rx, err := floatAttr(e, "rx", 0)
	if err != nil {
		return err
	}
	ry, err := floatAttr(e, "ry", rx)
	if err != nil {
		return err
	}
	if _, ok := e.Attr("", "rx"); !ok {
		rx = ry
	}
	var p svgpath.Path
	p.AddRoundRect(x, y, x+w, y+h, rx, ry)
	f.push(p, st)
	return nil
}

func (f *flattener) addEllipse(e *svgdom.Element, st Style) error {
	cx, err := floatAttr(e, "cx", 0)
	if err != nil {
		return err
	}
	cy, err := floatAttr(e, "cy", 0)
	if err != nil {
		return err
	}
	r, err := floatAttr(e, "r", 0)
	if err != nil {
		return err
	}
	rx, err := floatAttr(e, "rx", r)
	if err != nil {
		return err
	}
	ry, err := floatAttr(e, "ry", r)
	if err != nil {
		return err
	}
	if rx <= 0 || ry <= 0 { // not drawn, but not an error
		return nil
	}
	var p svgpath.Path
	p.AddEllipse(cx, cy, rx, ry)
	f.push(p, st)
	return nil
}

func (f *flattener) addLine(e *svgdom.Element, st Style) error {
	var geom [4]float64
	for i, name := range [4]string{"x1", "y1", "x2", "y2"} {
		v, err := floatAttr(e, name, 0)
		if err != nil {
			return err
		}
		geom[i] = v
	}
	var p svgpath.Path
	p.Start(toFixed(geom[0], geom[1]))
	p.Line(toFixed(geom[2], geom[3]))
	st.HasFill = false // lines are never filled
	f.push(p, st)
	return nil
}

func (f *flattener) addPoly(e *svgdom.Element, st Style, closed bool) error {
	v, _ := e.Attr("", "points")
	pts, err := svgdom.ParsePoints(v)
	if err != nil {
		return err
	}
	if len(pts)%2 != 0 {
		return errors.New("polygon has odd number of points")
	}
	if len(pts) < 4 {
		return nil
	}
	var p svgpath.Path
	p.Start(toFixed(pts[0], pts[1]))
	for i := 2; i < len(pts)-1; i += 2 {
		p.Line(toFixed(pts[i], pts[i+1]))
	}
	p.Stop(closed)
	f.push(p, st)
	return nil
}

func (f *flattener) addPath(e *svgdom.Element, st Style) error {
	d, ok := e.Attr("", "d")
	if !ok {
		return nil
	}
	p, err := svgpath.Compile(d)
	if err != nil {
		return err
	}
	f.push(p, st)
	return nil
}

// applyStyleAttrs derives the style of `e` from its parent style,
// reading both presentation attributes and the style attribute.
func (f *flattener) applyStyleAttrs(parent Style, e *svgdom.Element) (Style, error) {
	st := parent
	st.Transform = parent.Transform.Mult(e.Transform)
	var pairs []string
	for _, attr := range e.Attrs {
		if attr.Name.Space != "" {
			continue
		}
		if attr.Name.Local == "style" {
			pairs = append(pairs, strings.Split(attr.Value, ";")...)
		} else {
			pairs = append(pairs, attr.Name.Local+":"+attr.Value)
		}
	}
	for _, pair := range pairs {
		kv := strings.SplitN(pair, ":", 2)
		if len(kv) != 2 {
			continue
		}
		k := strings.ToLower(strings.TrimSpace(kv[0]))
		v := strings.TrimSpace(kv[1])
		if err := f.readStyleAttr(&st, k, v); err != nil {
			return st, err
		}
	}
	return st, nil
}

func (f *flattener) readStyleAttr(st *Style, k, v string) error {
	switch k {
	case "fill":
		c, ok, err := f.resolvePaint(v)
		if err != nil {
			return err
		}
		st.FillColor, st.HasFill = c, ok
	case "stroke":
		c, ok, err := f.resolvePaint(v)
		if err != nil {
			return err
		}
		st.StrokeColor, st.HasStroke = c, ok
	case "fill-rule":
		st.UseNonZeroWinding = v != "evenodd"
	case "stroke-width":
		width, err := svgdom.ParseDimension(v)
		if err != nil {
			return err
		}
		st.LineWidth = width
	case "stroke-linecap":
		switch v {
		case "butt":
			st.LineCap = ButtCap
		case "round":
			st.LineCap = RoundCap
		case "square":
			st.LineCap = SquareCap
		}
	case "stroke-linejoin":
		switch v {
		case "miter":
			st.LineJoin = MiterJoin
		case "round":
			st.LineJoin = RoundJoin
		case "bevel":
			st.LineJoin = BevelJoin
		}
	case "stroke-dashoffset":
		offset, err := svgdom.ParseDimension(v)
		if err != nil {
			return err
		}
		st.DashOffset = offset
	case "stroke-dasharray":
		if v == "none" {
			st.Dash = nil
			break
		}
		dashes, err := svgdom.ParsePoints(v)
		if err != nil {
			return err
		}
		st.Dash = dashes
	case "opacity", "stroke-opacity", "fill-opacity":
		op, err := svgdom.ParseDimension(v)
		if err != nil {
			return err
		}
		if k != "stroke-opacity" {
			st.FillOpacity *= op
		}
		if k != "fill-opacity" {
			st.StrokeOpacity *= op
		}
	}
	return nil
}

// resolvePaint parses a paint value, flattening url() gradient
// references to their first stop color.
func (f *flattener) resolvePaint(v string) (color.RGBA, bool, error) {
	if strings.HasPrefix(v, "url(") {
		id := strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(v, "url("), ")"))
		id = strings.TrimPrefix(id, "#")
		if c, ok := f.grads[id]; ok {
			return c, true, nil
		}
		// unknown reference: disable the paint rather than failing
		return color.RGBA{}, false, nil
	}
	c, ok, err := parseSVGColor(v)
	if err != nil && f.mode != svgdom.StrictErrorMode {
		if f.mode == svgdom.WarnErrorMode {
			log.Println("ignoring", err)
		}
		return color.RGBA{}, false, nil
	}
	return c, ok, err
}

// collectGradients maps every gradient id to its first stop color,
// following href inheritance between gradients.
func collectGradients(root *svgdom.Element) map[string]color.RGBA {
	colors := make(map[string]color.RGBA)
	hrefs := make(map[string]string)
	var visit func(e *svgdom.Element)
	visit = func(e *svgdom.Element) {
		if e.Name.Local == "linearGradient" || e.Name.Local == "radialGradient" {
			id := e.ID()
			if id == "" {
				return
			}
			if c, ok := firstStopColor(e); ok {
				colors[id] = c
			} else if href := gradientHref(e); href != "" {
				hrefs[id] = href
			}
			return
		}
		for _, child := range e.Children {
			visit(child)
		}
	}
	visit(root)
	// resolve inherited stops; chains are short in practice
	for id, target := range hrefs {
		for hops := 0; hops < 8; hops++ {
			if c, ok := colors[target]; ok {
				colors[id] = c
				break
			}
			next, ok := hrefs[target]
			if !ok {
				break
			}
			target = next
		}
	}
	return colors
}

func firstStopColor(grad *svgdom.Element) (color.RGBA, bool) {
	for _, child := range grad.Children {
		if child.Name.Local != "stop" {
			continue
		}
		v, ok := child.Attr("", "stop-color")
		if !ok {
			// stop-color may hide inside the style attribute
			if style, found := child.Attr("", "style"); found {
				for _, pair := range strings.Split(style, ";") {
					kv := strings.SplitN(pair, ":", 2)
					if len(kv) == 2 && strings.TrimSpace(kv[0]) == "stop-color" {
						v, ok = strings.TrimSpace(kv[1]), true
						break
					}
				}
			}
		}
		if !ok {
			continue
		}
		c, valid, err := parseSVGColor(v)
		if err != nil || !valid {
			continue
		}
		return c, true
	}
	return color.RGBA{}, false
}

func gradientHref(grad *svgdom.Element) string {
	for _, a := range grad.Attrs {
		if a.Name.Local == "href" {
			return strings.TrimPrefix(a.Value, "#")
		}
	}
	return ""
}
