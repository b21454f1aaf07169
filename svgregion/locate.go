// Finds the export layer of an Inkscape document and turns
// its rectangles into region markers, then derives one
// sub-document per marker.
package svgregion

import (
	"errors"
	"fmt"
	"log"

	"github.com/benoitkugler/svgexport/svgdom"
)

// ExportLayerName is the layer label looked up by default.
const ExportLayerName = "Export"

// Marker is one rectangle of the export layer, in local
// coordinates, before the transform chain is applied.
type Marker struct {
	Element *svgdom.Element // the rect element

	Index      int // position in document order, starting at 0
	X, Y, W, H float64
}

// FindExportLayer returns the first group labelled `name`, in
// document order. When several layers share the label, errMode
// decides between a silent pick, a logged warning and an error.
func FindExportLayer(doc *svgdom.Document, name string, errMode svgdom.ErrorMode) (*svgdom.Element, error) {
	var matches []*svgdom.Element
	var visit func(e *svgdom.Element)
	visit = func(e *svgdom.Element) {
		for _, child := range e.Children {
			if child.Kind == svgdom.KindGroup {
				if child.Label() == name {
					matches = append(matches, child)
				}
				visit(child)
			}
		}
	}
	visit(doc.Root)

	switch len(matches) {
	case 0:
		return nil, ExportLayerNotFoundError{Layer: name}
	case 1:
		return matches[0], nil
	}
	errStr := fmt.Sprintf("found %d layers named %q, using the first one", len(matches), name)
	switch errMode {
	case svgdom.StrictErrorMode:
		return nil, errors.New(errStr)
	case svgdom.WarnErrorMode:
		log.Println(errStr)
	}
	return matches[0], nil
}

// CollectMarkers walks the layer in document order, descending
// into nested groups, and returns one marker per rect element.
// Other element kinds are skipped.
func CollectMarkers(layer *svgdom.Element) ([]Marker, error) {
	var out []Marker
	var visit func(e *svgdom.Element) error
	visit = func(e *svgdom.Element) error {
		for _, child := range e.Children {
			switch child.Kind {
			case svgdom.KindRect:
				mk, err := readMarker(child, len(out))
				if err != nil {
					return err
				}
				out = append(out, mk)
			case svgdom.KindGroup:
				if err := visit(child); err != nil {
					return err
				}
			}
		}
		return nil
	}
	err := visit(layer)
	return out, err
}

func readMarker(rect *svgdom.Element, index int) (Marker, error) {
	mk := Marker{Element: rect, Index: index}
	for _, field := range [4]struct {
		name string
		dst  *float64
	}{
		{"x", &mk.X}, {"y", &mk.Y}, {"width", &mk.W}, {"height", &mk.H},
	} {
		v, ok := rect.Attr("", field.name)
		if !ok {
			continue
		}
		f, err := svgdom.ParseDimension(v)
		if err != nil {
			return mk, fmt.Errorf("marker %d: invalid %s attribute: %s", index, field.name, err)
		}
		*field.dst = f
	}
	return mk, nil
}
