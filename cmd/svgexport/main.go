// Command svgexport cuts an SVG document into regions.
//
// The input must contain an Inkscape layer labelled "Export", whose
// rectangles mark the regions to produce. One file per rectangle is
// written next to the input, named <input>_NN.<extension>, where NN
// is the rectangle position in document order.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/benoitkugler/svgexport/svgdom"
	"github.com/benoitkugler/svgexport/svgregion"
)

func main() {
	filetype := flag.String("filetype", string(svgregion.DefaultFormat),
		"output format: svg, png or pdf")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: svgexport [options] input.svg\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	format, err := svgregion.ParseFormat(*filetype)
	if err != nil {
		fmt.Fprintln(os.Stderr, "svgexport:", err)
		os.Exit(2)
	}

	exporter := svgregion.Exporter{Format: format, ErrorMode: svgdom.WarnErrorMode}
	written, err := exporter.Run(flag.Arg(0))
	for _, path := range written {
		fmt.Println(path)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "svgexport:", err)
		os.Exit(1)
	}
}
