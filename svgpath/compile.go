package svgpath

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Compilation of the `d` attribute of path elements into a Path.
// Supported commands: M, L, H, V, C, S, Q, T, A and Z, in both
// absolute and relative form.

var (
	errNoMoveTo    = errors.New("path data must begin with a moveto command")
	errCmdMismatch = errors.New("wrong number of arguments for path command")
)

type compiler struct {
	path           Path
	placeX, placeY float64 // current point
	startX, startY float64 // start of the current subpath
	cntlX, cntlY   float64 // last control point, reflected by S and T
	lastCmd        byte    // uppercase form of the last command
	started        bool
}

// Compile parses SVG path data into a Path.
func Compile(d string) (Path, error) {
	var (
		c    compiler
		cmd  byte
		nums []float64
	)
	flush := func() error {
		if cmd == 0 {
			if len(nums) > 0 {
				return errNoMoveTo
			}
			return nil
		}
		return c.run(cmd, nums)
	}
	for i := 0; i < len(d); {
		ch := d[i]
		switch {
		case ch == ' ' || ch == ',' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z'):
			if err := flush(); err != nil {
				return nil, err
			}
			cmd = ch
			nums = nums[:0]
			i++
		default:
			v, next, err := scanNumber(d, i)
			if err != nil {
				return nil, err
			}
			nums = append(nums, v)
			i = next
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return c.path, nil
}

// scanNumber reads the number starting at s[i]. A sign not preceded
// by an exponent marker starts a new number, as allowed by the SVG
// path grammar.
func scanNumber(s string, i int) (float64, int, error) {
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	seenDot, seenExp := false, false
scan:
	for i < len(s) {
		switch ch := s[i]; {
		case ch >= '0' && ch <= '9':
			i++
		case ch == '.' && !seenDot && !seenExp:
			seenDot = true
			i++
		case (ch == 'e' || ch == 'E') && !seenExp:
			seenExp = true
			i++
			if i < len(s) && (s[i] == '+' || s[i] == '-') {
				i++
			}
		default:
			break scan
		}
	}
	v, err := strconv.ParseFloat(s[start:i], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid number in path data: %q", s[start:i])
	}
	return v, i, nil
}

func (c *compiler) run(cmd byte, nums []float64) error {
	rel := cmd >= 'a'
	k := cmd &^ 0x20 // uppercase
	var count int
	switch k {
	case 'M', 'L', 'T':
		count = 2
	case 'H', 'V':
		count = 1
	case 'C':
		count = 6
	case 'S', 'Q':
		count = 4
	case 'A':
		count = 7
	case 'Z':
		if len(nums) != 0 {
			return errCmdMismatch
		}
		if !c.started {
			return errNoMoveTo
		}
		c.path.Stop(true)
		c.placeX, c.placeY = c.startX, c.startY
		c.lastCmd = 'Z'
		return nil
	default:
		return fmt.Errorf("unsupported path command %q", string(cmd))
	}
	if len(nums) == 0 || len(nums)%count != 0 {
		return errCmdMismatch
	}
	if !c.started && k != 'M' {
		return errNoMoveTo
	}
	for i := 0; i < len(nums); i += count {
		if err := c.segment(k, rel, i == 0, nums[i:i+count]); err != nil {
			return err
		}
	}
	return nil
}

// segment executes one command instance. For M, the repeated
// instances after the first one become implicit lineto commands.
func (c *compiler) segment(k byte, rel, first bool, args []float64) error {
	abs := func(x, y float64) (float64, float64) {
		if rel {
			return x + c.placeX, y + c.placeY
		}
		return x, y
	}
	switch k {
	case 'M':
		x, y := abs(args[0], args[1])
		if first {
			c.path.Start(toFixedP(x, y))
			c.startX, c.startY = x, y
			c.started = true
		} else {
			c.path.Line(toFixedP(x, y))
		}
		c.placeX, c.placeY = x, y
	case 'L':
		x, y := abs(args[0], args[1])
		c.path.Line(toFixedP(x, y))
		c.placeX, c.placeY = x, y
	case 'H':
		x := args[0]
		if rel {
			x += c.placeX
		}
		c.path.Line(toFixedP(x, c.placeY))
		c.placeX = x
	case 'V':
		y := args[0]
		if rel {
			y += c.placeY
		}
		c.path.Line(toFixedP(c.placeX, y))
		c.placeY = y
	case 'C':
		c1x, c1y := abs(args[0], args[1])
		c2x, c2y := abs(args[2], args[3])
		x, y := abs(args[4], args[5])
		c.path.CubeBezier(toFixedP(c1x, c1y), toFixedP(c2x, c2y), toFixedP(x, y))
		c.cntlX, c.cntlY = c2x, c2y
		c.placeX, c.placeY = x, y
	case 'S':
		c1x, c1y := c.reflected('C')
		c2x, c2y := abs(args[0], args[1])
		x, y := abs(args[2], args[3])
		c.path.CubeBezier(toFixedP(c1x, c1y), toFixedP(c2x, c2y), toFixedP(x, y))
		c.cntlX, c.cntlY = c2x, c2y
		c.placeX, c.placeY = x, y
		k = 'C' // S reflects like C
	case 'Q':
		c1x, c1y := abs(args[0], args[1])
		x, y := abs(args[2], args[3])
		c.path.QuadBezier(toFixedP(c1x, c1y), toFixedP(x, y))
		c.cntlX, c.cntlY = c1x, c1y
		c.placeX, c.placeY = x, y
	case 'T':
		c1x, c1y := c.reflected('Q')
		x, y := abs(args[0], args[1])
		c.path.QuadBezier(toFixedP(c1x, c1y), toFixedP(x, y))
		c.cntlX, c.cntlY = c1x, c1y
		c.placeX, c.placeY = x, y
		k = 'Q' // T reflects like Q
	case 'A':
		pts := append([]float64{}, args...)
		if rel {
			pts[5] += c.placeX
			pts[6] += c.placeY
		}
		if pts[0] == 0 || pts[1] == 0 {
			// zero radius arcs degenerate to lines
			c.path.Line(toFixedP(pts[5], pts[6]))
			c.placeX, c.placeY = pts[5], pts[6]
			break
		}
		pts[0], pts[1] = math.Abs(pts[0]), math.Abs(pts[1])
		cx, cy := findEllipseCenter(&pts[0], &pts[1], pts[2]*math.Pi/180,
			c.placeX, c.placeY, pts[5], pts[6], pts[4] == 0, pts[3] == 0)
		c.placeX, c.placeY = c.path.addArc(pts, cx, cy, c.placeX, c.placeY)
	}
	c.lastCmd = k
	return nil
}

// reflected returns the first control point of an S or T command:
// the previous control point mirrored around the current point when
// the previous command was of the same curve family, the current
// point otherwise.
func (c *compiler) reflected(family byte) (float64, float64) {
	if c.lastCmd == family {
		return 2*c.placeX - c.cntlX, 2*c.placeY - c.cntlY
	}
	return c.placeX, c.placeY
}
