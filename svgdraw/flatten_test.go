package svgdraw

import (
	"image/color"
	"strings"
	"testing"

	"github.com/benoitkugler/svgexport/svgdom"
)

func flattenString(t *testing.T, content string, mode svgdom.ErrorMode) DrawList {
	t.Helper()
	doc, err := svgdom.ReadDocumentStream(strings.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}
	list, err := Flatten(doc, mode)
	if err != nil {
		t.Fatal(err)
	}
	return list
}

func TestFlattenStyles(t *testing.T) {
	list := flattenString(t, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
		<rect x="0" y="0" width="10" height="10" fill="red"/>
		<rect x="0" y="0" width="10" height="10" style="fill:#00ff00;stroke:blue;stroke-width:3;stroke-linecap:round;stroke-linejoin:bevel"/>
		<rect x="0" y="0" width="10" height="10" fill="none"/>
		<circle cx="5" cy="5" r="5" fill-rule="evenodd"/>
		<line x1="0" y1="0" x2="10" y2="10" stroke="black"/>
	</svg>`, svgdom.IgnoreErrorMode)

	// the fill-less rect is dropped, every other shape is kept
	if len(list.Shapes) != 4 {
		t.Fatalf("expected 4 shapes, got %d", len(list.Shapes))
	}
	if list.ViewBox != (svgdom.Bounds{X: 0, Y: 0, W: 100, H: 100}) {
		t.Errorf("unexpected view box %v", list.ViewBox)
	}

	first := list.Shapes[0].Style
	if first.FillColor != (color.RGBA{0xff, 0, 0, 0xff}) || !first.HasFill || first.HasStroke {
		t.Errorf("unexpected style %+v", first)
	}

	second := list.Shapes[1].Style
	if second.FillColor != (color.RGBA{0, 0xff, 0, 0xff}) {
		t.Errorf("unexpected fill %v", second.FillColor)
	}
	if !second.HasStroke || second.StrokeColor != (color.RGBA{0, 0, 0xff, 0xff}) || second.LineWidth != 3 {
		t.Errorf("unexpected stroke %+v", second)
	}
	if second.LineCap != RoundCap || second.LineJoin != BevelJoin {
		t.Errorf("cap and join not parsed: %+v", second)
	}
	if first.LineCap != ButtCap || first.LineJoin != MiterJoin {
		t.Errorf("unexpected default cap and join: %+v", first)
	}

	if list.Shapes[2].Style.UseNonZeroWinding {
		t.Error("fill-rule evenodd not honored")
	}

	line := list.Shapes[3].Style
	if line.HasFill {
		t.Error("lines must not be filled")
	}
}

func TestFlattenInheritance(t *testing.T) {
	list := flattenString(t, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
		<g fill="blue" opacity="0.5" transform="translate(10,0)">
			<g transform="scale(2)">
				<rect x="0" y="0" width="5" height="5"/>
			</g>
		</g>
	</svg>`, svgdom.IgnoreErrorMode)
	if len(list.Shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(list.Shapes))
	}
	st := list.Shapes[0].Style
	if st.FillColor != (color.RGBA{0, 0, 0xff, 0xff}) {
		t.Errorf("fill not inherited: %v", st.FillColor)
	}
	if st.FillOpacity != 0.5 {
		t.Errorf("opacity not inherited: %v", st.FillOpacity)
	}
	expected := svgdom.Identity.Translate(10, 0).Scale(2, 2)
	if st.Transform != expected {
		t.Errorf("transforms not accumulated: %v", st.Transform)
	}
}

func TestFlattenGradients(t *testing.T) {
	list := flattenString(t, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 100 100">
		<defs>
			<linearGradient id="base"><stop stop-color="#ff0000" offset="0"/></linearGradient>
			<linearGradient id="derived" xlink:href="#base"/>
		</defs>
		<rect x="0" y="0" width="10" height="10" fill="url(#derived)"/>
		<rect x="0" y="0" width="10" height="10" fill="url(#missing)"/>
	</svg>`, svgdom.IgnoreErrorMode)
	// the unknown reference disables the fill and drops the shape
	if len(list.Shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(list.Shapes))
	}
	if c := list.Shapes[0].Style.FillColor; c != (color.RGBA{0xff, 0, 0, 0xff}) {
		t.Errorf("gradient not flattened to its first stop: %v", c)
	}
}

func TestFlattenUnsupported(t *testing.T) {
	const content = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10">
		<video src="nope"/>
	</svg>`
	doc, err := svgdom.ReadDocumentStream(strings.NewReader(content))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Flatten(doc, svgdom.IgnoreErrorMode); err != nil {
		t.Errorf("ignore mode must not fail: %s", err)
	}
	if _, err := Flatten(doc, svgdom.StrictErrorMode); err == nil {
		t.Error("strict mode must fail on unknown elements")
	}
}

func TestParseSVGColor(t *testing.T) {
	for _, test := range []struct {
		input    string
		expected color.RGBA
		ok       bool
	}{
		{"red", color.RGBA{0xff, 0, 0, 0xff}, true},
		{"#0f0", color.RGBA{0, 0xff, 0, 0xff}, true},
		{"#0000ff", color.RGBA{0, 0, 0xff, 0xff}, true},
		{"rgb(1, 2, 3)", color.RGBA{1, 2, 3, 0xff}, true},
		{"rgb(100%, 0%, 0%)", color.RGBA{0xff, 0, 0, 0xff}, true},
		{"none", color.RGBA{}, false},
	} {
		c, ok, err := parseSVGColor(test.input)
		if err != nil {
			t.Fatal(err)
		}
		if ok != test.ok || c != test.expected {
			t.Errorf("parseSVGColor(%q) = %v %v, expected %v %v", test.input, c, ok, test.expected, test.ok)
		}
	}
	if _, _, err := parseSVGColor("no-such-color"); err == nil {
		t.Error("expected an error on an unknown color name")
	}
}
