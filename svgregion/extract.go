package svgregion

import (
	"encoding/xml"
	"strings"

	"github.com/benoitkugler/svgexport/svgdom"
	"github.com/benoitkugler/svgexport/svgpath"
)

// Extract derives a document restricted to `box`, excluding every
// layer labelled `layerName`. Subtrees whose conservative bounds
// do not reach the box are pruned; elements which cannot be
// measured (defs, text, unknown tags) are always kept.
// The source document is shared, never mutated: only ancestors
// whose child list changes are copied.
func Extract(doc *svgdom.Document, layerName string, box BoundingBox) *svgdom.Document {
	w, h := box.Width(), box.Height()
	root := shallowCopy(doc.Root)
	root.Attrs = viewAttrs(doc.Root.Attrs, box)
	root.Children = filterChildren(doc.Root, layerName, box, doc.Root.Transform)
	return &svgdom.Document{
		Root:    root,
		ViewBox: svgdom.Bounds{X: box.MinX, Y: box.MinY, W: w, H: h},
		Width:   svgdom.FormatFloat(w),
		Height:  svgdom.FormatFloat(h),
	}
}

func shallowCopy(e *svgdom.Element) *svgdom.Element {
	c := *e
	c.Parent = nil
	return &c
}

// viewAttrs rewrites the root attributes so that the derived
// document shows exactly the region `box`.
func viewAttrs(attrs []xml.Attr, box BoundingBox) []xml.Attr {
	out := make([]xml.Attr, 0, len(attrs)+3)
	for _, a := range attrs {
		if a.Name.Space == "" {
			switch a.Name.Local {
			case "viewBox", "width", "height":
				continue
			}
		}
		out = append(out, a)
	}
	viewBox := strings.Join([]string{
		svgdom.FormatFloat(box.MinX), svgdom.FormatFloat(box.MinY),
		svgdom.FormatFloat(box.Width()), svgdom.FormatFloat(box.Height()),
	}, " ")
	return append(out,
		xml.Attr{Name: xml.Name{Local: "width"}, Value: svgdom.FormatFloat(box.Width())},
		xml.Attr{Name: xml.Name{Local: "height"}, Value: svgdom.FormatFloat(box.Height())},
		xml.Attr{Name: xml.Name{Local: "viewBox"}, Value: viewBox},
	)
}

func filterChildren(e *svgdom.Element, layerName string, box BoundingBox, m svgdom.Matrix2D) []*svgdom.Element {
	kept := make([]*svgdom.Element, 0, len(e.Children))
	for _, child := range e.Children {
		if c := filterElement(child, layerName, box, m); c != nil {
			kept = append(kept, c)
		}
	}
	return kept
}

func filterElement(e *svgdom.Element, layerName string, box BoundingBox, parentTransform svgdom.Matrix2D) *svgdom.Element {
	if e.Kind == svgdom.KindGroup && e.Label() == layerName {
		return nil
	}
	m := parentTransform.Mult(e.Transform)
	switch e.Kind {
	case svgdom.KindGroup:
		children := filterChildren(e, layerName, box, m)
		if len(children) == 0 && len(e.Children) > 0 {
			return nil
		}
		if sameChildren(children, e.Children) {
			return e
		}
		g := shallowCopy(e)
		g.Children = children
		return g
	case svgdom.KindRect, svgdom.KindCircle, svgdom.KindEllipse, svgdom.KindLine,
		svgdom.KindPolyline, svgdom.KindPolygon, svgdom.KindPath:
		if b, ok := shapeBounds(e, m); ok && !b.overlaps(box) {
			return nil
		}
		return e
	default:
		// defs, text, metadata ... : no reliable extent, keep
		return e
	}
}

func sameChildren(kept, src []*svgdom.Element) bool {
	if len(kept) != len(src) {
		return false
	}
	for i, c := range kept {
		if c != src[i] {
			return false
		}
	}
	return true
}

// shapeBounds computes a conservative bounding box of the shape
// in document coordinates: curves are bounded by their control
// points, which always enclose the curve itself.
// ok is false when the geometry cannot be read, in which case the
// caller must keep the element.
func shapeBounds(e *svgdom.Element, m svgdom.Matrix2D) (BoundingBox, bool) {
	box := emptyBox()
	switch e.Kind {
	case svgdom.KindRect:
		geom, ok := floatAttrs(e, "x", "y", "width", "height")
		if !ok {
			return box, false
		}
		x, y, w, h := geom[0], geom[1], geom[2], geom[3]
		box.add(m.TransformPoint(x, y))
		box.add(m.TransformPoint(x+w, y))
		box.add(m.TransformPoint(x+w, y+h))
		box.add(m.TransformPoint(x, y+h))
	case svgdom.KindCircle, svgdom.KindEllipse:
		geom, ok := floatAttrs(e, "cx", "cy", "r", "rx", "ry")
		if !ok {
			return box, false
		}
		cx, cy, r := geom[0], geom[1], geom[2]
		rx, ry := geom[3], geom[4]
		if rx == 0 {
			rx = r
		}
		if ry == 0 {
			ry = r
		}
		box.add(m.TransformPoint(cx-rx, cy-ry))
		box.add(m.TransformPoint(cx+rx, cy-ry))
		box.add(m.TransformPoint(cx+rx, cy+ry))
		box.add(m.TransformPoint(cx-rx, cy+ry))
	case svgdom.KindLine:
		geom, ok := floatAttrs(e, "x1", "y1", "x2", "y2")
		if !ok {
			return box, false
		}
		box.add(m.TransformPoint(geom[0], geom[1]))
		box.add(m.TransformPoint(geom[2], geom[3]))
	case svgdom.KindPolyline, svgdom.KindPolygon:
		v, _ := e.Attr("", "points")
		pts, err := svgdom.ParsePoints(v)
		if err != nil {
			return box, false
		}
		for i := 0; i+1 < len(pts); i += 2 {
			box.add(m.TransformPoint(pts[i], pts[i+1]))
		}
	case svgdom.KindPath:
		d, ok := e.Attr("", "d")
		if !ok {
			return box, false
		}
		p, err := svgpath.Compile(d)
		if err != nil {
			return box, false
		}
		for _, pt := range p.ControlPoints() {
			box.add(m.TransformPoint(float64(pt.X)/64, float64(pt.Y)/64))
		}
	default:
		return box, false
	}
	if box.MinX > box.MaxX || box.MinY > box.MaxY { // no points at all
		return box, false
	}
	return box, true
}

// floatAttrs reads geometry attributes, defaulting to 0 when
// absent. ok is false on the first invalid value.
func floatAttrs(e *svgdom.Element, names ...string) ([]float64, bool) {
	out := make([]float64, len(names))
	for i, name := range names {
		v, found := e.Attr("", name)
		if !found {
			continue
		}
		f, err := svgdom.ParseDimension(v)
		if err != nil {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}
