// Package dxf decodes the ASCII variant of the DXF exchange format into a
// drawing.Model.
//
// Only the LAYER table and the ENTITIES section are read. Geometry entities
// (LINE, LWPOLYLINE, POINT, CIRCLE, ARC, TEXT, 3DFACE) are decoded by
// github.com/yofu/dxf; MTEXT and DIMENSION, which that package does not
// model, are read from their group codes directly. Other entity types are
// counted in [Result.Skipped] and otherwise ignored. Binary DXF is rejected
// with [ErrBinary].
package dxf

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	yofu "github.com/yofu/dxf"
	ydrawing "github.com/yofu/dxf/drawing"
	yentity "github.com/yofu/dxf/entity"
	"github.com/yofu/dxf/table"

	"github.com/matzehuels/cadlayout/pkg/drawing"
	"github.com/matzehuels/cadlayout/pkg/geom"
)

var (
	// ErrNotDXF is returned when the input has no SECTION marker.
	ErrNotDXF = errors.New("dxf: not a DXF document")

	// ErrBinary is returned for binary DXF input.
	ErrBinary = errors.New("dxf: binary DXF is not supported")
)

const binarySentinel = "AutoCAD Binary DXF"

// Result is a decoded document.
type Result struct {
	Model *drawing.Model
	// Skipped counts unsupported entity types by name.
	Skipped map[string]int
}

// Sniff reports whether data looks like an ASCII DXF document.
func Sniff(data []byte) bool {
	head := data
	if len(head) > 4096 {
		head = head[:4096]
	}
	return bytes.Contains(head, []byte("SECTION"))
}

// record is one group-0 object: its type and the pairs that follow, in the
// [code, value] layout the yofu parsers take.
type record struct {
	typ  string
	data [][2]string
	line int
}

// Decode parses data.
func Decode(name string, data []byte) (*Result, error) {
	if bytes.HasPrefix(data, []byte(binarySentinel)) {
		return nil, ErrBinary
	}
	if !Sniff(data) {
		return nil, ErrNotDXF
	}
	pairs, err := readPairs(data)
	if err != nil {
		return nil, err
	}

	d := &decoder{
		doc: yofu.NewDrawing(),
		res: &Result{Model: drawing.NewModel(name), Skipped: map[string]int{}},
	}
	if err := d.run(pairs); err != nil {
		return nil, err
	}
	return d.res, nil
}

type pair struct {
	data [2]string
	line int
}

func (p pair) code() string { return p.data[0] }

func readPairs(data []byte) ([]pair, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dxf: %w", err)
	}
	// A trailing blank line after EOF is common.
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	out := make([]pair, 0, len(lines)/2)
	for i := 0; i < len(lines); i += 2 {
		codeText := strings.TrimSpace(lines[i])
		code, err := strconv.Atoi(codeText)
		if err != nil {
			return nil, fmt.Errorf("dxf: line %d: invalid group code %q", i+1, codeText)
		}
		if i+1 >= len(lines) {
			return nil, fmt.Errorf("dxf: line %d: group code %d without value", i+1, code)
		}
		out = append(out, pair{data: [2]string{strconv.Itoa(code), lines[i+1]}, line: i + 2})
	}
	return out, nil
}

type decoder struct {
	doc *ydrawing.Drawing
	res *Result
}

func (d *decoder) run(pairs []pair) error {
	section := ""
	for i := 0; i < len(pairs); {
		p := pairs[i]
		if p.code() != "0" {
			i++
			continue
		}
		switch typ := strings.TrimSpace(p.data[1]); typ {
		case "SECTION":
			if i+1 < len(pairs) && pairs[i+1].code() == "2" {
				section = strings.TrimSpace(pairs[i+1].data[1])
				i += 2
				continue
			}
			i++
		case "ENDSEC":
			section = ""
			i++
		case "EOF":
			return nil
		default:
			rec := record{typ: typ, line: p.line, data: [][2]string{p.data}}
			for i++; i < len(pairs) && pairs[i].code() != "0"; i++ {
				rec.data = append(rec.data, pairs[i].data)
			}
			if err := d.record(section, rec); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *decoder) record(section string, rec record) error {
	switch section {
	case "TABLES":
		if rec.typ == "LAYER" {
			return d.layer(rec)
		}
	case "ENTITIES":
		e, err := d.entity(rec)
		if err != nil {
			return fmt.Errorf("dxf: line %d: %s: %w", rec.line, rec.typ, err)
		}
		if e == nil {
			d.res.Skipped[rec.typ]++
			return nil
		}
		d.res.Model.Add(e)
	}
	return nil
}

// layer registers a LAYER table entry with the yofu drawing so entities
// resolve it, and records it on the model. Line types are not rendered, so
// their references are dropped before the yofu lookup can reject them.
func (d *decoder) layer(rec record) error {
	data := make([][2]string, 0, len(rec.data))
	for _, dt := range rec.data[1:] {
		switch dt[0] {
		case "6":
			continue
		case "62":
			// A negative index marks a layer that is off.
			dt[1] = strings.TrimPrefix(strings.TrimSpace(dt[1]), "-")
		}
		data = append(data, dt)
	}
	st, err := yofu.ParseLayer(d.doc, data)
	if err != nil {
		return fmt.Errorf("dxf: line %d: layer: %w", rec.line, err)
	}
	l, ok := st.(*table.Layer)
	if !ok || l.Name() == "" {
		return nil
	}
	d.doc.Layers[l.Name()] = l
	d.res.Model.Layers = append(d.res.Model.Layers, drawing.Layer{
		Name:  l.Name(),
		Color: ACIColor(int(l.Color)),
	})
	return nil
}

func (d *decoder) entity(rec record) (drawing.Entity, error) {
	h, err := header(rec.data)
	if err != nil {
		return nil, err
	}
	switch rec.typ {
	case "MTEXT":
		return mtext(h, rec.data)
	case "DIMENSION":
		return dimension(h, rec.data)
	}
	if _, err := yofu.ParseEntityFunc(rec.typ); err != nil {
		return nil, nil
	}
	ye, err := yofu.ParseEntity(d.doc, rec.data)
	if err != nil {
		return nil, err
	}
	if h.Layer == "" && ye.Layer() != nil {
		h.Layer = ye.Layer().Name()
	}

	switch v := ye.(type) {
	case *yentity.Line:
		return &drawing.Line{Header: h, Start: vec(v.Start), End: vec(v.End)}, nil
	case *yentity.Point:
		return &drawing.Point{Header: h, Position: vec(v.Coord)}, nil
	case *yentity.Arc:
		a := drawing.NewArc(vec(v.Center), v.Radius, v.Angle[0], v.Angle[1])
		a.Header = h
		return a, nil
	case *yentity.Circle:
		c := drawing.NewCircle(vec(v.Center), v.Radius)
		c.Header = h
		return c, nil
	case *yentity.LwPolyline:
		n, err := numbers(rec.data)
		if err != nil {
			return nil, err
		}
		verts := make([]geom.Vec3, 0, len(v.Vertices))
		for _, p := range v.Vertices {
			q := vec(p)
			q.Z = n[38]
			verts = append(verts, q)
		}
		closed := v.Closed || int(n[70])&1 != 0
		return &drawing.Polyline{Header: h, Vertices: verts, Closed: closed}, nil
	case *yentity.Text:
		return &drawing.Text{
			Header:   h,
			Position: vec(v.Coord1),
			Height:   v.Height,
			Rotation: v.Rotation,
			Value:    v.Value,
		}, nil
	case *yentity.ThreeDFace:
		verts := make([]geom.Vec3, 0, len(v.Points))
		for _, p := range v.Points {
			verts = append(verts, vec(p))
		}
		return &drawing.Polyline{Header: h, Vertices: verts, Closed: true}, nil
	}
	return nil, nil
}

// header reads the common handle, layer and color codes. The layer name is
// kept even when the LAYER table does not declare it.
func header(data [][2]string) (drawing.Header, error) {
	var h drawing.Header
	for _, dt := range data {
		v := strings.TrimSpace(dt[1])
		switch dt[0] {
		case "5":
			h.Handle = v
		case "8":
			h.Layer = v
		case "62":
			n, err := strconv.Atoi(v)
			if err != nil {
				return h, fmt.Errorf("invalid color %q", v)
			}
			h.Color = ACIColor(n)
		}
	}
	return h, nil
}

// numbers collects the numeric group codes of one record. Repeated codes
// keep the last value.
func numbers(data [][2]string) (map[int]float64, error) {
	out := map[int]float64{}
	var errs error
	for _, dt := range data {
		code, _ := strconv.Atoi(dt[0])
		if !(code >= 10 && code <= 59) && !(code >= 70 && code <= 79) && !(code >= 140 && code <= 147) {
			continue
		}
		v := strings.TrimSpace(dt[1])
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("invalid number %q for code %d", v, code))
			continue
		}
		out[code] = n
	}
	return out, errs
}

func point(n map[int]float64, base int) geom.Vec3 {
	return geom.Vec3{X: n[base], Y: n[base+10], Z: n[base+20]}
}

func mtext(h drawing.Header, data [][2]string) (drawing.Entity, error) {
	n, err := numbers(data)
	if err != nil {
		return nil, err
	}
	// Long strings are split over code 3 chunks ending with a code 1 chunk.
	var text strings.Builder
	for _, dt := range data {
		if dt[0] == "3" || dt[0] == "1" {
			text.WriteString(dt[1])
		}
	}
	return &drawing.Text{
		Header:    h,
		Position:  point(n, 10),
		Height:    n[40],
		Rotation:  n[50],
		Value:     text.String(),
		Multiline: true,
	}, nil
}

func dimension(h drawing.Header, data [][2]string) (drawing.Entity, error) {
	n, err := numbers(data)
	if err != nil {
		return nil, err
	}
	return &drawing.Dimension{
		Header:      h,
		Start:       point(n, 13),
		End:         point(n, 14),
		TextPoint:   point(n, 11),
		Measurement: n[42],
	}, nil
}

func vec(c []float64) geom.Vec3 {
	var v geom.Vec3
	if len(c) > 0 {
		v.X = c[0]
	}
	if len(c) > 1 {
		v.Y = c[1]
	}
	if len(c) > 2 {
		v.Z = c[2]
	}
	return v
}

// aciNames maps the first AutoCAD Color Index entries to color names.
var aciNames = map[int]string{
	1: "red", 2: "yellow", 3: "lime", 4: "cyan", 5: "blue", 6: "magenta", 7: "black",
	8: "dimgray", 9: "lightgray",
}

// ACIColor returns a color name for an AutoCAD Color Index. Negative
// indexes (layer off) use the absolute value; unknown indexes are black.
func ACIColor(index int) string {
	if name, ok := aciNames[int(math.Abs(float64(index)))]; ok {
		return name
	}
	return "black"
}
