package svgregion

import "fmt"

// ExportLayerNotFoundError means the document has no layer
// with the expected name.
type ExportLayerNotFoundError struct {
	Layer string
}

func (e ExportLayerNotFoundError) Error() string {
	return fmt.Sprintf("no layer named %q found in the document", e.Layer)
}

// NoMarkersFoundError means the export layer exists but
// contains no usable rectangle.
type NoMarkersFoundError struct {
	Layer string
}

func (e NoMarkersFoundError) Error() string {
	return fmt.Sprintf("layer %q contains no rectangle markers", e.Layer)
}

// DegenerateBoundsError means a marker resolved to an empty
// region in document coordinates.
type DegenerateBoundsError struct {
	Index         int
	Width, Height float64
}

func (e DegenerateBoundsError) Error() string {
	return fmt.Sprintf("marker %d resolves to a degenerate region (%g x %g)", e.Index, e.Width, e.Height)
}

// UnsupportedFormatError reports an output format outside the
// recognized set.
type UnsupportedFormatError struct {
	Format string
}

func (e UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported output format %q (expected svg, png or pdf)", e.Format)
}

// RenderBackendError wraps a failure of the output backend
// (rendering or writing) for one marker.
type RenderBackendError struct {
	Index  int
	Format Format
	Path   string
	Err    error
}

func (e RenderBackendError) Error() string {
	return fmt.Sprintf("marker %d: writing %s output %s: %s", e.Index, e.Format, e.Path, e.Err)
}

func (e RenderBackendError) Unwrap() error { return e.Err }
