package svgregion

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/benoitkugler/svgexport/svgdom"
)

// twoMarkers has one export rectangle at the top level of the layer
// and one inside a nested group, plus a content layer.
const twoMarkers = `<svg xmlns="http://www.w3.org/2000/svg"
	xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape"
	width="200" height="100" viewBox="0 0 200 100">
  <defs><linearGradient id="grad"><stop stop-color="blue"/></linearGradient></defs>
  <g inkscape:label="Drawing">
    <rect x="10" y="10" width="30" height="30" fill="red"/>
    <circle cx="150" cy="50" r="20" fill="url(#grad)"/>
  </g>
  <g inkscape:label="Export" transform="translate(5,0)">
    <rect x="0" y="5" width="45" height="45"/>
    <g><rect x="120" y="20" width="60" height="60"/></g>
  </g>
</svg>`

func parseDoc(t *testing.T, content string) *svgdom.Document {
	t.Helper()
	doc, err := svgdom.ReadDocumentStream(strings.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.svg")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFindExportLayer(t *testing.T) {
	doc := parseDoc(t, twoMarkers)
	layer, err := FindExportLayer(doc, ExportLayerName, svgdom.IgnoreErrorMode)
	if err != nil {
		t.Fatal(err)
	}
	if layer.Label() != "Export" {
		t.Errorf("unexpected layer %q", layer.Label())
	}

	_, err = FindExportLayer(doc, "Missing", svgdom.IgnoreErrorMode)
	if _, ok := err.(ExportLayerNotFoundError); !ok {
		t.Errorf("expected ExportLayerNotFoundError, got %v", err)
	}
}

func TestFindExportLayerDuplicates(t *testing.T) {
	doc := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg"
		xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape" viewBox="0 0 10 10">
		<g inkscape:label="Export" id="first"><rect width="1" height="1"/></g>
		<g inkscape:label="Export" id="second"/>
	</svg>`)
	layer, err := FindExportLayer(doc, ExportLayerName, svgdom.IgnoreErrorMode)
	if err != nil {
		t.Fatal(err)
	}
	if layer.ID() != "first" {
		t.Errorf("expected the first layer, got %q", layer.ID())
	}
	if _, err := FindExportLayer(doc, ExportLayerName, svgdom.StrictErrorMode); err == nil {
		t.Error("strict mode must reject duplicated layers")
	}
}

func TestCollectMarkers(t *testing.T) {
	doc := parseDoc(t, twoMarkers)
	layer, err := FindExportLayer(doc, ExportLayerName, svgdom.IgnoreErrorMode)
	if err != nil {
		t.Fatal(err)
	}
	markers, err := CollectMarkers(layer)
	if err != nil {
		t.Fatal(err)
	}
	if len(markers) != 2 {
		t.Fatalf("expected 2 markers, got %d", len(markers))
	}
	if markers[0].Index != 0 || markers[1].Index != 1 {
		t.Error("marker indices must follow document order")
	}
	if markers[0].X != 0 || markers[0].Y != 5 || markers[0].W != 45 || markers[0].H != 45 {
		t.Errorf("unexpected geometry %+v", markers[0])
	}
}

func TestResolve(t *testing.T) {
	doc := parseDoc(t, twoMarkers)
	layer, _ := FindExportLayer(doc, ExportLayerName, svgdom.IgnoreErrorMode)
	markers, _ := CollectMarkers(layer)

	// the layer translation (5,0) applies to both markers
	box, err := markers[0].Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if box != (BoundingBox{5, 5, 50, 50}) {
		t.Errorf("unexpected bounds %+v", box)
	}
	box, err = markers[1].Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if box != (BoundingBox{125, 20, 185, 80}) {
		t.Errorf("unexpected bounds %+v", box)
	}
}

func TestResolveRotated(t *testing.T) {
	doc := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg"
		xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape" viewBox="0 0 100 100">
		<g inkscape:label="Export">
			<rect x="-5" y="-5" width="10" height="10" transform="translate(50,50) rotate(45)"/>
		</g>
	</svg>`)
	layer, _ := FindExportLayer(doc, ExportLayerName, svgdom.IgnoreErrorMode)
	markers, _ := CollectMarkers(layer)
	box, err := markers[0].Resolve()
	if err != nil {
		t.Fatal(err)
	}
	// a rotated square is reduced to the enclosing axis aligned box
	want := 10 * math.Sqrt2
	if math.Abs(box.Width()-want) > 1e-9 || math.Abs(box.Height()-want) > 1e-9 {
		t.Errorf("unexpected bounds %+v, expected a %g sided box", box, want)
	}
	if math.Abs(box.MinX+box.MaxX-100) > 1e-9 || math.Abs(box.MinY+box.MaxY-100) > 1e-9 {
		t.Errorf("box is not centered on (50,50): %+v", box)
	}
}

func TestResolveDegenerate(t *testing.T) {
	doc := parseDoc(t, `<svg xmlns="http://www.w3.org/2000/svg"
		xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape" viewBox="0 0 100 100">
		<g inkscape:label="Export">
			<rect x="10" y="10" width="0" height="20"/>
		</g>
	</svg>`)
	layer, _ := FindExportLayer(doc, ExportLayerName, svgdom.IgnoreErrorMode)
	markers, _ := CollectMarkers(layer)
	_, err := markers[0].Resolve()
	degen, ok := err.(DegenerateBoundsError)
	if !ok {
		t.Fatalf("expected DegenerateBoundsError, got %v", err)
	}
	if degen.Index != 0 {
		t.Errorf("unexpected index %d", degen.Index)
	}
}

func TestExtract(t *testing.T) {
	doc := parseDoc(t, twoMarkers)
	rootChildren := len(doc.Root.Children)

	derived := Extract(doc, ExportLayerName, BoundingBox{5, 5, 50, 50})
	if derived.ViewBox != (svgdom.Bounds{X: 5, Y: 5, W: 45, H: 45}) {
		t.Errorf("unexpected view box %v", derived.ViewBox)
	}
	// the source document is shared, never mutated
	if len(doc.Root.Children) != rootChildren {
		t.Error("source document was modified")
	}

	var sawDefs, sawDrawing bool
	for _, child := range derived.Root.Children {
		switch {
		case child.Kind == svgdom.KindDefs:
			sawDefs = true
		case child.Label() == "Export":
			t.Error("export layer must not survive extraction")
		case child.Label() == "Drawing":
			sawDrawing = true
			// the circle at (130..170) is outside the box and pruned
			if len(child.Children) != 1 || child.Children[0].Kind != svgdom.KindRect {
				t.Errorf("unexpected content %v", child.Children)
			}
		}
	}
	if !sawDefs || !sawDrawing {
		t.Error("defs and intersecting content must be kept")
	}

	// the second marker sees the circle but not the red rect
	derived = Extract(doc, ExportLayerName, BoundingBox{125, 20, 185, 80})
	for _, child := range derived.Root.Children {
		if child.Label() == "Drawing" {
			if len(child.Children) != 1 || child.Children[0].Kind != svgdom.KindCircle {
				t.Errorf("unexpected content %v", child.Children)
			}
		}
	}
}

func TestExtractRoundTrip(t *testing.T) {
	doc := parseDoc(t, twoMarkers)
	before, err := doc.Bytes()
	if err != nil {
		t.Fatal(err)
	}

	derived := Extract(doc, ExportLayerName, BoundingBox{5, 5, 50, 50})
	Extract(doc, ExportLayerName, BoundingBox{125, 20, 185, 80})

	after, err := doc.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Error("extracting regions modified the source document")
	}
	out, err := derived.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	doc2, err := svgdom.ReadDocumentStream(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if doc2.ViewBox != derived.ViewBox {
		t.Errorf("view box lost in serialization: %v != %v", doc2.ViewBox, derived.ViewBox)
	}
}

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"svg", "png", "pdf", "PDF"} {
		if _, err := ParseFormat(valid); err != nil {
			t.Errorf("ParseFormat(%q): %s", valid, err)
		}
	}
	_, err := ParseFormat("jpeg")
	if _, ok := err.(UnsupportedFormatError); !ok {
		t.Errorf("expected UnsupportedFormatError, got %v", err)
	}
}

func TestRunRejectsFormatBeforeReading(t *testing.T) {
	ex := Exporter{Format: "jpeg"}
	_, err := ex.Run(filepath.Join(t.TempDir(), "never-read.svg"))
	if _, ok := err.(UnsupportedFormatError); !ok {
		t.Errorf("expected UnsupportedFormatError, got %v", err)
	}
}

func TestRunSVG(t *testing.T) {
	input := writeInput(t, twoMarkers)
	ex := Exporter{Format: FormatSVG}
	written, err := ex.Run(input)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Dir(input)
	expected := []string{
		filepath.Join(dir, "doc_00.svg"),
		filepath.Join(dir, "doc_01.svg"),
	}
	if len(written) != len(expected) {
		t.Fatalf("expected %d files, got %v", len(expected), written)
	}
	for i, path := range written {
		if path != expected[i] {
			t.Errorf("unexpected name %q, expected %q", path, expected[i])
		}
		out, err := svgdom.ReadDocument(path)
		if err != nil {
			t.Fatalf("%s: %s", path, err)
		}
		if out.ViewBox.W <= 0 || out.ViewBox.H <= 0 {
			t.Errorf("%s: empty view box", path)
		}
	}
}

func TestRunPNGAndPDF(t *testing.T) {
	for _, test := range []struct {
		format Format
		magic  string
	}{
		{FormatPNG, "\x89PNG"},
		{FormatPDF, "%PDF"},
	} {
		input := writeInput(t, twoMarkers)
		ex := Exporter{Format: test.format}
		written, err := ex.Run(input)
		if err != nil {
			t.Fatal(err)
		}
		if len(written) != 2 {
			t.Fatalf("expected 2 files, got %v", written)
		}
		for _, path := range written {
			content, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(string(content), test.magic) {
				t.Errorf("%s does not start with %q", path, test.magic)
			}
		}
	}
}

func TestRunDefaultsToPDF(t *testing.T) {
	input := writeInput(t, twoMarkers)
	written, err := Exporter{}.Run(input)
	if err != nil {
		t.Fatal(err)
	}
	for _, path := range written {
		if filepath.Ext(path) != ".pdf" {
			t.Errorf("unexpected extension on %q", path)
		}
	}
}

func TestRunTwiceIdentical(t *testing.T) {
	for _, format := range []Format{FormatSVG, FormatPNG, FormatPDF} {
		input := writeInput(t, twoMarkers)
		ex := Exporter{Format: format}
		written, err := ex.Run(input)
		if err != nil {
			t.Fatal(err)
		}
		first := make([][]byte, len(written))
		for i, path := range written {
			if first[i], err = os.ReadFile(path); err != nil {
				t.Fatal(err)
			}
		}
		time.Sleep(1100 * time.Millisecond) // cross a timestamp second boundary
		if _, err := ex.Run(input); err != nil {
			t.Fatal(err)
		}
		for i, path := range written {
			second, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(first[i], second) {
				t.Errorf("%s output %s differs between two runs on the same input", format, path)
			}
		}
	}
}

func TestRunBackendFailureLeavesNoFile(t *testing.T) {
	input := writeInput(t, `<svg xmlns="http://www.w3.org/2000/svg"
		xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape" viewBox="0 0 100 100">
		<video src="movie.ogv"/>
		<g inkscape:label="Export">
			<rect x="0" y="0" width="50" height="50"/>
		</g>
	</svg>`)
	ex := Exporter{Format: FormatPDF, ErrorMode: svgdom.StrictErrorMode}
	written, err := ex.Run(input)
	if _, ok := err.(RenderBackendError); !ok {
		t.Fatalf("expected RenderBackendError, got %v", err)
	}
	if len(written) != 0 {
		t.Errorf("no path must be reported as written, got %v", written)
	}
	out := filepath.Join(filepath.Dir(input), "doc_00.pdf")
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("failed render left %s behind", out)
	}
}

func TestRunNoMarkers(t *testing.T) {
	input := writeInput(t, `<svg xmlns="http://www.w3.org/2000/svg"
		xmlns:inkscape="http://www.inkscape.org/namespaces/inkscape" viewBox="0 0 10 10">
		<g inkscape:label="Export">
			<circle cx="5" cy="5" r="2"/>
		</g>
	</svg>`)
	_, err := Exporter{Format: FormatSVG}.Run(input)
	if _, ok := err.(NoMarkersFoundError); !ok {
		t.Errorf("expected NoMarkersFoundError, got %v", err)
	}
}

func TestRunMissingLayer(t *testing.T) {
	input := writeInput(t, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"/>`)
	_, err := Exporter{Format: FormatSVG}.Run(input)
	if _, ok := err.(ExportLayerNotFoundError); !ok {
		t.Errorf("expected ExportLayerNotFoundError, got %v", err)
	}
}

func TestRunMissingInput(t *testing.T) {
	_, err := Exporter{Format: FormatSVG}.Run(filepath.Join(t.TempDir(), "ghost.svg"))
	if _, ok := err.(svgdom.InputNotFoundError); !ok {
		t.Errorf("expected InputNotFoundError, got %v", err)
	}
}
