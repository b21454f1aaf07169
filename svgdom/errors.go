package svgdom

import (
	"encoding/xml"
	"errors"
	"fmt"
)

var (
	errParamMismatch = errors.New("param mismatch")
	errExtraRoot     = errors.New("multiple root elements")
	errUnbalanced    = errors.New("unbalanced element tags")
	errNoContent     = errors.New("no svg content found")
)

// InputNotFoundError is returned when the input file
// does not exist or cannot be read.
type InputNotFoundError struct {
	Path string
	Err  error
}

func (e InputNotFoundError) Error() string {
	return fmt.Sprintf("input file %s not readable: %s", e.Path, e.Err)
}

func (e InputNotFoundError) Unwrap() error { return e.Err }

// MalformedDocumentError is returned when the input cannot be
// parsed as an SVG document. Line is 0 when unknown.
type MalformedDocumentError struct {
	Line int
	Err  error
}

func (e MalformedDocumentError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed svg document (line %d): %s", e.Line, e.Err)
	}
	return fmt.Sprintf("malformed svg document: %s", e.Err)
}

func (e MalformedDocumentError) Unwrap() error { return e.Err }

func malformed(err error) error {
	var syn *xml.SyntaxError
	if errors.As(err, &syn) {
		return MalformedDocumentError{Line: syn.Line, Err: err}
	}
	return MalformedDocumentError{Err: err}
}
