package svgdom

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
)

// Serialization of a (possibly derived) document back to SVG.
// The namespace prefixes declared on the root element are re-used,
// so that Inkscape specific attributes survive a round-trip.

type prefixTable map[string]string // namespace url -> prefix

// prefixes collects the xmlns declarations of the root element.
func (doc *Document) prefixes() prefixTable {
	table := make(prefixTable)
	for _, a := range doc.Root.Attrs {
		switch {
		case a.Name.Space == "xmlns":
			table[a.Value] = a.Name.Local
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			table[a.Value] = "" // default namespace
		}
	}
	return table
}

func (t prefixTable) qualify(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	if name.Space == "xmlns" {
		return "xmlns:" + name.Local
	}
	if prefix, ok := t[name.Space]; ok && prefix != "" {
		return prefix + ":" + name.Local
	}
	return name.Local
}

// WriteTo serializes the document as SVG.
func (doc *Document) WriteTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(xml.Header); err != nil {
		return err
	}
	if err := writeElement(bw, doc.Root, doc.prefixes()); err != nil {
		return err
	}
	return bw.Flush()
}

// Bytes returns the SVG serialization of the document.
func (doc *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeElement(w *bufio.Writer, e *Element, prefixes prefixTable) error {
	tag := prefixes.qualify(e.Name)
	w.WriteByte('<')
	w.WriteString(tag)
	for _, a := range e.Attrs {
		w.WriteByte(' ')
		w.WriteString(prefixes.qualify(a.Name))
		w.WriteString(`="`)
		if err := xml.EscapeText(w, []byte(a.Value)); err != nil {
			return err
		}
		w.WriteByte('"')
	}
	if len(e.Children) == 0 && e.Text == "" {
		_, err := w.WriteString("/>")
		return err
	}
	w.WriteByte('>')
	if e.Text != "" {
		if err := xml.EscapeText(w, []byte(e.Text)); err != nil {
			return err
		}
	}
	for _, child := range e.Children {
		if err := writeElement(w, child, prefixes); err != nil {
			return err
		}
	}
	w.WriteString("</")
	w.WriteString(tag)
	_, err := w.WriteString(">")
	return err
}

// FormatFloat writes a coordinate the way it is expected
// in SVG attributes (no exponent notation).
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
