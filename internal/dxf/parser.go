package dxf

import (
	"bufio"
	"strconv"
	"strings"
)

// ParsedContour is one closed polyline recovered from a DXF document's
// entity stream, tagged with its source layer.
type ParsedContour struct {
	Layer  string
	Points []Point
}

// ParsedCircle is one circle recovered from a DXF document, tagged with
// its source layer and diameter.
type ParsedCircle struct {
	Layer      string
	Center     Point
	DiameterMM float64
}

// ParsedDoc is the subset of a DXF document C5 needs to regenerate
// toolpaths: CONTOUR polylines to cut and DRILLING circles to bore.
type ParsedDoc struct {
	Contours []ParsedContour
	Circles  []ParsedCircle
}

// Parse reads the tag stream produced by Write back into entity lists.
// This mirrors the "Load DXF, select entities on CONTOUR" step of spec.md
// §4.5, grounded on the teacher's internal/importer/dxf.go type-switch
// over entity.LwPolyline/entity.Circle — reimplemented here as a direct
// group-code scan (rather than through github.com/yofu/dxf) because the
// artifact round-trips through object-store bytes, not a file path, and
// the library's write-side API has no confirmed in-memory entry point;
// see DESIGN.md.
func Parse(data []byte) (ParsedDoc, error) {
	tags, err := scanTags(data)
	if err != nil {
		return ParsedDoc{}, err
	}

	var doc ParsedDoc
	i := 0
	for i < len(tags) {
		t := tags[i]
		if t.code != 0 {
			i++
			continue
		}
		switch t.value {
		case "LWPOLYLINE":
			c, next := parseLwPolyline(tags, i+1)
			doc.Contours = append(doc.Contours, c)
			i = next
		case "CIRCLE":
			c, next := parseCircle(tags, i+1)
			doc.Circles = append(doc.Circles, c)
			i = next
		default:
			i++
		}
	}
	return doc, nil
}

type tag struct {
	code  int
	value string
}

func scanTags(data []byte) ([]tag, error) {
	sc := bufio.NewScanner(strings.NewReader(string(data)))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	var tags []tag
	for i := 0; i+1 < len(lines); i += 2 {
		code, err := strconv.Atoi(lines[i])
		if err != nil {
			continue
		}
		tags = append(tags, tag{code: code, value: lines[i+1]})
	}
	return tags, nil
}

// parseLwPolyline consumes tags belonging to one LWPOLYLINE entity
// starting at index i (just past the "0 LWPOLYLINE" pair) until the next
// entity-start (code 0) tag, collecting layer (8) and vertex (10/20) pairs.
func parseLwPolyline(tags []tag, i int) (ParsedContour, int) {
	var c ParsedContour
	var pendingX *float64
	for i < len(tags) {
		t := tags[i]
		if t.code == 0 {
			break
		}
		switch t.code {
		case 8:
			c.Layer = t.value
		case 10:
			x, _ := strconv.ParseFloat(t.value, 64)
			pendingX = &x
		case 20:
			y, _ := strconv.ParseFloat(t.value, 64)
			if pendingX != nil {
				c.Points = append(c.Points, Point{X: *pendingX, Y: y})
				pendingX = nil
			}
		}
		i++
	}
	return c, i
}

func parseCircle(tags []tag, i int) (ParsedCircle, int) {
	var c ParsedCircle
	var radius float64
	for i < len(tags) {
		t := tags[i]
		if t.code == 0 {
			break
		}
		switch t.code {
		case 8:
			c.Layer = t.value
		case 10:
			c.Center.X, _ = strconv.ParseFloat(t.value, 64)
		case 20:
			c.Center.Y, _ = strconv.ParseFloat(t.value, 64)
		case 40:
			radius, _ = strconv.ParseFloat(t.value, 64)
		}
		i++
	}
	c.DiameterMM = radius * 2
	return c, i
}
