package svgregion

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/svgexport/svgdom"
	"github.com/benoitkugler/svgexport/svgpdf"
	"github.com/benoitkugler/svgexport/svgraster"
)

// Format selects the encoding of the output files.
type Format string

const (
	FormatSVG Format = "svg" // vector pass-through
	FormatPNG Format = "png" // raster, one pixel per user unit
	FormatPDF Format = "pdf" // vector, one point per user unit
)

// DefaultFormat is used when the caller gives no explicit choice.
const DefaultFormat = FormatPDF

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatSVG, FormatPNG, FormatPDF:
		return f, nil
	}
	return "", UnsupportedFormatError{Format: s}
}

// ExportJob is one marker resolved and named, ready to be written.
type ExportJob struct {
	Index   int
	Bounds  BoundingBox
	Format  Format
	OutPath string
}

// Exporter drives a full export run over one input file.
// The zero value uses the default format and layer name.
type Exporter struct {
	Format    Format // defaults to DefaultFormat
	LayerName string // defaults to ExportLayerName
	ErrorMode svgdom.ErrorMode
}

func (ex Exporter) format() Format {
	if ex.Format == "" {
		return DefaultFormat
	}
	return ex.Format
}

func (ex Exporter) layer() string {
	if ex.LayerName == "" {
		return ExportLayerName
	}
	return ex.LayerName
}

// outPath names the output of marker `index`: the input base name,
// a two digit index and the format extension, in the input directory.
func outPath(input string, index int, format Format) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	name := fmt.Sprintf("%s_%02d.%s", base, index, format)
	return filepath.Join(filepath.Dir(input), name)
}

// Plan resolves every marker of the document and names the outputs,
// without writing anything. Jobs keep the marker document order.
func (ex Exporter) Plan(doc *svgdom.Document, input string) ([]ExportJob, error) {
	format, err := ParseFormat(string(ex.format()))
	if err != nil {
		return nil, err
	}
	layer, err := FindExportLayer(doc, ex.layer(), ex.ErrorMode)
	if err != nil {
		return nil, err
	}
	markers, err := CollectMarkers(layer)
	if err != nil {
		return nil, err
	}
	if len(markers) == 0 {
		return nil, NoMarkersFoundError{Layer: ex.layer()}
	}
	jobs := make([]ExportJob, len(markers))
	for i, mk := range markers {
		box, err := mk.Resolve()
		if err != nil {
			return nil, err
		}
		jobs[i] = ExportJob{
			Index:   mk.Index,
			Bounds:  box,
			Format:  format,
			OutPath: outPath(input, mk.Index, format),
		}
	}
	return jobs, nil
}

// Run exports every marker of the input file, and returns the
// paths written, in marker order. All markers are resolved before
// the first output is written, so that a degenerate marker fails
// the run without leaving partial files behind.
func (ex Exporter) Run(input string) ([]string, error) {
	if _, err := ParseFormat(string(ex.format())); err != nil {
		return nil, err // fail before touching the file system
	}
	doc, err := svgdom.ReadDocument(input)
	if err != nil {
		return nil, err
	}
	jobs, err := ex.Plan(doc, input)
	if err != nil {
		return nil, err
	}
	written := make([]string, 0, len(jobs))
	for _, job := range jobs {
		derived := Extract(doc, ex.layer(), job.Bounds)
		if err := ex.writeJob(derived, job); err != nil {
			return written, err
		}
		written = append(written, job.OutPath)
	}
	return written, nil
}

// writeJob renders in memory first: a backend failure must not
// leave a truncated file behind.
func (ex Exporter) writeJob(derived *svgdom.Document, job ExportJob) error {
	fail := func(err error) error {
		return RenderBackendError{Index: job.Index, Format: job.Format, Path: job.OutPath, Err: err}
	}
	var (
		buf bytes.Buffer
		err error
	)
	switch job.Format {
	case FormatSVG:
		err = derived.WriteTo(&buf)
	case FormatPNG:
		width := int(math.Ceil(job.Bounds.Width()))
		height := int(math.Ceil(job.Bounds.Height()))
		var img *image.RGBA
		img, err = svgraster.RenderToImage(derived, width, height, ex.ErrorMode)
		if err == nil {
			err = png.Encode(&buf, img)
		}
	case FormatPDF:
		err = svgpdf.RenderToPDF(derived, &buf, ex.ErrorMode)
	}
	if err != nil {
		return fail(err)
	}
	if err := os.WriteFile(job.OutPath, buf.Bytes(), 0644); err != nil {
		return fail(err)
	}
	return nil
}
