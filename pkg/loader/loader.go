// Package loader turns a drawing source into an insertable block.
//
// A [Block] is a filtered copy of the parsed drawing, moved so that its
// minimum corner sits at the origin and optionally rotated. Two entry points
// differ only in how they fail:
//
//   - [Loader.Load] propagates every error. Use it when the user asked for
//     the file and should see why it could not be read.
//   - [Loader.LoadBlock] logs the failure and returns nil. The layout
//     orchestrator uses it so that a malformed drawing leaves its slots empty
//     instead of failing the whole scene.
package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cadlayout/pkg/drawing"
	cerrors "github.com/matzehuels/cadlayout/pkg/errors"
	"github.com/matzehuels/cadlayout/pkg/geom"
)

// SourceKind selects how a Source provides its bytes.
type SourceKind string

const (
	SourceFile  SourceKind = "file"
	SourceBytes SourceKind = "bytes"
)

// ParseSourceKind accepts "file" and "bytes".
func ParseSourceKind(s string) (SourceKind, error) {
	switch SourceKind(s) {
	case SourceFile, SourceBytes:
		return SourceKind(s), nil
	}
	return "", cerrors.New(cerrors.ErrCodeInvalidOption, "source kind must be 'file' or 'bytes', got %q", s)
}

// Source identifies a drawing.
type Source struct {
	Kind SourceKind
	// Path is the file to read for SourceFile, and the display name for
	// SourceBytes.
	Path string
	Data []byte
}

// FileSource reads the drawing at path.
func FileSource(path string) Source { return Source{Kind: SourceFile, Path: path} }

// BytesSource uses data directly. name is used in logs and for export paths.
func BytesSource(name string, data []byte) Source {
	return Source{Kind: SourceBytes, Path: name, Data: data}
}

// IsZero reports whether no source is configured.
func (s Source) IsZero() bool {
	return s.Path == "" && len(s.Data) == 0
}

// Name returns a label for logs.
func (s Source) Name() string {
	if s.Path != "" {
		return filepath.Base(s.Path)
	}
	return "<bytes>"
}

// Bytes returns the drawing content.
func (s Source) Bytes() ([]byte, error) {
	switch s.Kind {
	case SourceBytes:
		return s.Data, nil
	case SourceFile, "":
		data, err := os.ReadFile(s.Path)
		if os.IsNotExist(err) {
			return nil, cerrors.Wrap(cerrors.ErrCodeFileNotFound, err, "drawing %s not found", s.Path)
		}
		if err != nil {
			return nil, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "read %s", s.Path)
		}
		return data, nil
	}
	return nil, cerrors.New(cerrors.ErrCodeInvalidOption, "unknown source kind %q", s.Kind)
}

// Block is an origin-relocated drawing ready for insertion.
type Block struct {
	Model  *drawing.Model
	Bounds geom.Bounds
}

// Instance returns a fresh copy of the block's entities for one placement.
func (b *Block) Instance() *drawing.Model {
	return b.Model.Copy()
}

// Acknowledger is called after every successful parse. It exists for
// toolkits that raise a blocking notice (such as a trial banner) which must
// be dismissed before work continues. Its errors are ignored.
type Acknowledger interface {
	Acknowledge(ctx context.Context) error
}

// Loader parses sources with an engine and prepares blocks.
type Loader struct {
	engine drawing.Engine
	filter drawing.Filter
	ack    Acknowledger
	logger *log.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithFilter replaces the default entity/layer exclusion filter.
func WithFilter(f drawing.Filter) Option {
	return func(l *Loader) { l.filter = f }
}

// WithAcknowledger installs an acknowledge hook.
func WithAcknowledger(a Acknowledger) Option {
	return func(l *Loader) { l.ack = a }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// New returns a loader using engine.
func New(engine drawing.Engine, opts ...Option) *Loader {
	l := &Loader{
		engine: engine,
		filter: drawing.DefaultFilter(),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Parse reads and decodes src. Errors carry cerrors codes.
func (l *Loader) Parse(ctx context.Context, src Source) (*drawing.Model, error) {
	data, err := src.Bytes()
	if err != nil {
		return nil, err
	}
	m, err := l.engine.Parse(ctx, data)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeParseFailed, err, "parse %s", src.Name())
	}
	if m.Name == "" {
		m.Name = src.Name()
	}
	if l.ack != nil {
		if err := l.ack.Acknowledge(ctx); err != nil {
			l.logger.Debug("acknowledge hook failed", "err", err)
		}
	}
	return m, nil
}

// Load parses src and prepares a block rotated by rotation degrees
// (clockwise positive). It returns nil and no error when the filtered
// drawing has no entities.
func (l *Loader) Load(ctx context.Context, src Source, rotation float64) (*Block, error) {
	m, err := l.Parse(ctx, src)
	if err != nil {
		return nil, err
	}
	return l.prepare(m, rotation), nil
}

// LoadBlock is Load without failures: any error, including a panic inside
// the engine, is logged and reported as no block.
func (l *Loader) LoadBlock(ctx context.Context, src Source, rotation float64) (b *Block) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Warn("drawing engine panicked, skipping insertion", "source", src.Name(), "panic", fmt.Sprint(r))
			b = nil
		}
	}()

	b, err := l.Load(ctx, src, rotation)
	if err != nil {
		l.logger.Warn("could not load drawing, skipping insertion", "source", src.Name(), "err", err)
		return nil
	}
	return b
}

func (l *Loader) prepare(m *drawing.Model, rotation float64) *Block {
	filtered := m.Clone(l.filter)
	if filtered.Len() == 0 {
		l.logger.Debug("no insertable entities after filtering", "source", m.Name, "parsed", m.Len())
		return nil
	}

	bounds := l.engine.Bounds(filtered)
	t := geom.TranslateToOrigin(bounds)
	if rotation != 0 {
		t = geom.RotateZ(rotation).Mul(t)
	}
	l.engine.Transform(filtered, t)
	bounds = l.engine.Bounds(filtered)

	if rotation != 0 {
		// Rotation about the origin can push the block into negative
		// coordinates; relocate once more so every block starts at the
		// origin.
		l.engine.Transform(filtered, geom.TranslateToOrigin(bounds))
		bounds = l.engine.Bounds(filtered)
	}

	l.logger.Debug("prepared block",
		"source", m.Name,
		"entities", filtered.Len(),
		"excluded", m.Len()-filtered.Len(),
		"size", fmt.Sprintf("%.3gx%.3g", bounds.Delta().X, bounds.Delta().Y))
	return &Block{Model: filtered, Bounds: bounds}
}
