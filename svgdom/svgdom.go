// Parses SVG documents into an addressable element tree,
// which keeps enough structure (attributes, namespaces, ordering)
// to be serialized back to valid SVG.
// Contrary to a draw-only model, the tree is suited for
// structural operations such as extracting sub-regions.
package svgdom

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
)

// common namespaces found in Inkscape documents
const (
	NamespaceSVG      = "http://www.w3.org/2000/svg"
	NamespaceInkscape = "http://www.inkscape.org/namespaces/inkscape"
)

// ErrorMode defines how recoverable anomalies
// (unknown elements, duplicated layers) are handled.
type ErrorMode uint8

const (
	// IgnoreErrorMode skips the anomaly silently
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode skips the anomaly but logs a message
	WarnErrorMode
	// StrictErrorMode aborts with an error
	StrictErrorMode
)

// ShapeKind classifies an element once, at parse time,
// so that later stages never have to probe attributes.
type ShapeKind uint8

const (
	KindOther ShapeKind = iota
	KindGroup
	KindRect
	KindCircle
	KindEllipse
	KindLine
	KindPolyline
	KindPolygon
	KindPath
	KindText
	KindDefs
)

var kinds = map[string]ShapeKind{
	"svg":      KindGroup,
	"g":        KindGroup,
	"a":        KindGroup,
	"rect":     KindRect,
	"circle":   KindCircle,
	"ellipse":  KindEllipse,
	"line":     KindLine,
	"polyline": KindPolyline,
	"polygon":  KindPolygon,
	"path":     KindPath,
	"text":     KindText,
	"defs":     KindDefs,
}

// Bounds defines a bounding box, such as a viewport.
type Bounds struct{ X, Y, W, H float64 }

// Element is one node of the parsed document.
// Children and attributes keep document order.
type Element struct {
	Parent   *Element // nil for the root
	Name     xml.Name
	Attrs    []xml.Attr
	Children []*Element
	Text     string // accumulated character data

	Kind      ShapeKind
	Transform Matrix2D // local transform, Identity when absent
}

// Document is the parsed SVG file. It is read-only after parsing:
// derived documents share subtrees instead of mutating them.
type Document struct {
	Root    *Element
	ViewBox Bounds

	Width, Height string // raw top level attributes
}

// Attr returns the value of the attribute with the given
// namespace and local name. An empty space matches
// un-prefixed attributes only.
func (e *Element) Attr(space, local string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name.Local == local && a.Name.Space == space {
			return a.Value, true
		}
	}
	return "", false
}

// Label returns the user facing name of the element:
// the inkscape:label attribute when present, the id otherwise.
func (e *Element) Label() string {
	if v, ok := e.Attr(NamespaceInkscape, "label"); ok {
		return v
	}
	v, _ := e.Attr("", "id")
	return v
}

// ID returns the id attribute, or the empty string.
func (e *Element) ID() string {
	v, _ := e.Attr("", "id")
	return v
}

// ReadDocumentStream parses the SVG document from `stream`.
// It fails with MalformedDocumentError if the content is not
// well formed XML, or if a transform attribute cannot be parsed.
func ReadDocumentStream(stream io.Reader) (*Document, error) {
	doc := &Document{}
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	var cursor *Element // current open element
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, malformed(err)
		}
		switch se := t.(type) {
		case xml.StartElement:
			el := &Element{
				Parent:    cursor,
				Name:      se.Name,
				Attrs:     append([]xml.Attr{}, se.Attr...),
				Kind:      kinds[se.Name.Local],
				Transform: Identity,
			}
			if v, ok := el.Attr("", "transform"); ok {
				el.Transform, err = ParseTransform(v)
				if err != nil {
					return nil, malformed(err)
				}
			}
			if cursor == nil {
				if doc.Root != nil {
					return nil, malformed(errExtraRoot)
				}
				doc.Root = el
				if err := doc.readRootAttrs(el); err != nil {
					return nil, malformed(err)
				}
			} else {
				cursor.Children = append(cursor.Children, el)
			}
			cursor = el
		case xml.EndElement:
			if cursor == nil {
				return nil, malformed(errUnbalanced)
			}
			cursor = cursor.Parent
		case xml.CharData:
			if cursor != nil {
				cursor.Text += string(se)
			}
		}
	}
	if doc.Root == nil {
		return nil, malformed(errNoContent)
	}
	if cursor != nil {
		return nil, malformed(errUnbalanced)
	}
	return doc, nil
}

// ReadDocument parses the SVG document from the named file.
// It fails with InputNotFoundError if the file cannot be opened.
func ReadDocument(path string) (*Document, error) {
	fin, err := os.Open(path)
	if err != nil {
		return nil, InputNotFoundError{Path: path, Err: err}
	}
	defer fin.Close()
	return ReadDocumentStream(fin)
}

// readRootAttrs extracts the view box from the top level svg element,
// falling back on width/height when no viewBox is given.
func (doc *Document) readRootAttrs(root *Element) error {
	var width, height float64
	for _, attr := range root.Attrs {
		var err error
		switch attr.Name.Local {
		case "viewBox":
			if attr.Name.Space != "" {
				continue
			}
			var pts []float64
			pts, err = ParsePoints(attr.Value)
			if err != nil {
				return err
			}
			if len(pts) != 4 {
				return errParamMismatch
			}
			doc.ViewBox = Bounds{pts[0], pts[1], pts[2], pts[3]}
		case "width":
			doc.Width = attr.Value
			width, err = ParseDimension(attr.Value)
		case "height":
			doc.Height = attr.Value
			height, err = ParseDimension(attr.Value)
		}
		if err != nil {
			return err
		}
	}
	if doc.ViewBox.W == 0 {
		doc.ViewBox.W = width
	}
	if doc.ViewBox.H == 0 {
		doc.ViewBox.H = height
	}
	return nil
}

// ParseDimension reads a float, tolerating a trailing
// unit suffix such as "px" or "mm". The empty string is 0,
// but a value with no digits at all is an error.
func ParseDimension(v string) (float64, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, nil
	}
	end := len(v)
	for end > 0 {
		c := v[end-1]
		if (c >= '0' && c <= '9') || c == '.' {
			break
		}
		end--
	}
	if end == 0 {
		return 0, fmt.Errorf("invalid dimension %q", v)
	}
	return parseBasicFloat(v[:end])
}
