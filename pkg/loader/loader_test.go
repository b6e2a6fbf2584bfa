package loader

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/cadlayout/pkg/drawing"
	cerrors "github.com/matzehuels/cadlayout/pkg/errors"
	"github.com/matzehuels/cadlayout/pkg/geom"
)

// fakeEngine returns a copy of model, or err, or panics.
type fakeEngine struct {
	drawing.Base
	model  *drawing.Model
	err    error
	panics bool
	calls  int
}

func (f *fakeEngine) Parse(ctx context.Context, data []byte) (*drawing.Model, error) {
	f.calls++
	if f.panics {
		panic("corrupt entity table")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.model.Copy(), nil
}

func plate() *drawing.Model {
	m := drawing.NewModel("plate")
	m.Add(&drawing.Polyline{
		Header:   drawing.Header{Layer: "Outline"},
		Vertices: []geom.Vec3{geom.V3(100, 50, 0), geom.V3(140, 50, 0), geom.V3(140, 70, 0), geom.V3(100, 70, 0)},
		Closed:   true,
	})
	m.Add(drawing.NewCircle(geom.V3(120, 60, 0), 5))
	m.Add(&drawing.Text{Position: geom.V3(0, 0, 0), Height: 3, Value: "far away note", Multiline: true})
	m.Add(&drawing.Line{Header: drawing.Header{Layer: "AM_7"}, Start: geom.V3(-500, -500, 0), End: geom.V3(0, 0, 0)})
	return m
}

var src = BytesSource("plate.dxf", []byte("ignored by the fake"))

func TestLoadRelocatesToOrigin(t *testing.T) {
	l := New(&fakeEngine{model: plate()})
	b, err := l.Load(context.Background(), src, 0)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if b == nil {
		t.Fatal("Load returned no block")
	}
	if b.Bounds.Min != (geom.Vec3{}) {
		t.Errorf("block min = %+v, want origin", b.Bounds.Min)
	}
	if d := b.Bounds.Delta(); d.X != 40 || d.Y != 20 {
		t.Errorf("block size = %+v, want 40x20", d)
	}
	if b.Model.Len() != 2 {
		t.Errorf("block entities = %d, want 2 (MTEXT and AM_7 excluded)", b.Model.Len())
	}
}

func TestLoadRotated(t *testing.T) {
	l := New(&fakeEngine{model: plate()})
	b, err := l.Load(context.Background(), src, 90)
	if err != nil || b == nil {
		t.Fatalf("Load: %v, %v", b, err)
	}
	if !b.Bounds.Min.ApproxEqual(geom.Vec3{}, 1e-9) {
		t.Errorf("rotated block min = %+v, want origin", b.Bounds.Min)
	}
	d := b.Bounds.Delta()
	if math.Abs(d.X-20) > 1e-9 || math.Abs(d.Y-40) > 1e-9 {
		t.Errorf("rotated size = %+v, want 20x40", d)
	}
}

func TestLoadErrors(t *testing.T) {
	parseErr := errors.New("unexpected end of section")
	l := New(&fakeEngine{err: parseErr})

	_, err := l.Load(context.Background(), src, 0)
	if !cerrors.Is(err, cerrors.ErrCodeParseFailed) || !errors.Is(err, parseErr) {
		t.Errorf("Load error = %v, want PARSE_FAILED wrapping the engine error", err)
	}

	_, err = l.Load(context.Background(), FileSource(filepath.Join(t.TempDir(), "missing.dxf")), 0)
	if !cerrors.Is(err, cerrors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadBlockIsLenient(t *testing.T) {
	ctx := context.Background()
	if b := New(&fakeEngine{err: errors.New("boom")}).LoadBlock(ctx, src, 0); b != nil {
		t.Error("LoadBlock should return nil on parse error")
	}
	if b := New(&fakeEngine{panics: true}).LoadBlock(ctx, src, 0); b != nil {
		t.Error("LoadBlock should return nil when the engine panics")
	}
	if b := New(&fakeEngine{model: plate()}).LoadBlock(ctx, src, 0); b == nil {
		t.Error("LoadBlock should return a block for a valid drawing")
	}
}

func TestLoadNothingUsable(t *testing.T) {
	m := drawing.NewModel("annotations")
	m.Add(&drawing.Dimension{Start: geom.V3(0, 0, 0), End: geom.V3(1, 0, 0)})
	b, err := New(&fakeEngine{model: m}).Load(context.Background(), src, 0)
	if err != nil || b != nil {
		t.Errorf("Load = %v, %v; want nil, nil", b, err)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plate.dxf")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	eng := &fakeEngine{model: plate()}
	b, err := New(eng).Load(context.Background(), FileSource(path), 0)
	if err != nil || b == nil {
		t.Fatalf("Load = %v, %v", b, err)
	}
	if eng.calls != 1 {
		t.Errorf("engine calls = %d", eng.calls)
	}
}

type countingAck struct {
	calls int
	err   error
}

func (a *countingAck) Acknowledge(context.Context) error {
	a.calls++
	return a.err
}

func TestAcknowledger(t *testing.T) {
	ack := &countingAck{err: errors.New("no dialog")}
	l := New(&fakeEngine{model: plate()}, WithAcknowledger(ack))
	if _, err := l.Load(context.Background(), src, 0); err != nil {
		t.Fatalf("acknowledge errors must be ignored: %v", err)
	}
	if ack.calls != 1 {
		t.Errorf("acknowledge calls = %d, want 1", ack.calls)
	}
}

func TestBlockInstanceIsIndependent(t *testing.T) {
	b, _ := New(&fakeEngine{model: plate()}).Load(context.Background(), src, 0)
	inst := b.Instance()
	inst.Transform(geom.Scaling(geom.V3(10, 10, 1)))
	if got := b.Model.Bounds(); got != b.Bounds {
		t.Errorf("transforming an instance changed the block: %+v", got)
	}
}

func TestParseSourceKind(t *testing.T) {
	if k, err := ParseSourceKind("bytes"); err != nil || k != SourceBytes {
		t.Errorf("ParseSourceKind(bytes) = %v, %v", k, err)
	}
	if _, err := ParseSourceKind("url"); !cerrors.Is(err, cerrors.ErrCodeInvalidOption) {
		t.Errorf("ParseSourceKind(url) error = %v", err)
	}
}
